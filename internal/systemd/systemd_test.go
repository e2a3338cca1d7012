// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package systemd_test

import (
	"fmt"
	"net"
	"path/filepath"
	"testing"

	"go.astrophena.name/radecbot/internal/systemd"
	"go.astrophena.name/radecbot/internal/testutil"
)

type testLogger struct {
	messages []string
}

func (tl *testLogger) logf(format string, args ...any) {
	tl.messages = append(tl.messages, fmt.Sprintf(format, args...))
}

func env(socket string) func(string) string {
	return func(name string) string {
		if name == "NOTIFY_SOCKET" {
			return socket
		}
		return ""
	}
}

func TestNotify(t *testing.T) {
	tl := &testLogger{}
	socketPath := filepath.Join(t.TempDir(), "notify.sock")

	l, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: socketPath, Net: "unixgram"})
	if err != nil {
		t.Fatalf("Failed to listen on unixgram socket: %v", err)
	}
	defer l.Close()

	systemd.Notify(env(socketPath), tl.logf, systemd.Ready, systemd.Status("posted 2\nposts"))

	buf := make([]byte, 512)
	n, _, err := l.ReadFromUnix(buf)
	if err != nil {
		t.Fatalf("Failed to read from unixgram socket: %v", err)
	}
	testutil.AssertEqual(t, string(buf[:n]), "READY=1\nSTATUS=posted 2 posts")
	testutil.AssertEqual(t, len(tl.messages), 0)
}

func TestNotifyNotUnderSystemd(t *testing.T) {
	tl := &testLogger{}
	systemd.Notify(env(""), tl.logf, systemd.Stopping)
	testutil.AssertEqual(t, len(tl.messages), 0)
}

func TestNotifyFailure(t *testing.T) {
	tl := &testLogger{}
	systemd.Notify(env(filepath.Join(t.TempDir(), "missing.sock")), tl.logf, systemd.Stopping)
	testutil.AssertEqual(t, len(tl.messages), 1)
}
