// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

//go:build linux && !android

package restrict

import (
	"context"

	"github.com/landlock-lsm/go-landlock/landlock"

	"go.astrophena.name/radecbot/internal/logger"
)

// Do restricts all goroutines of this program to [landlock.Rule]s.
// Filesystem access and outgoing TCP connections not covered by rules are
// denied where the kernel supports it.
func Do(ctx context.Context, rules ...landlock.Rule) {
	if err := landlock.V4.BestEffort().Restrict(rules...); err != nil {
		logger.Get(ctx).Warn("sandboxing failed", "err", err)
	}
}
