// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package systemd reports the progress of a run to systemd, so that
// "systemctl status" shows what a timer-started bot is doing.
package systemd

import (
	"net"
	"strings"

	"go.astrophena.name/radecbot/internal/logger"
)

// State defines a sd-notify protocol state.
// See https://www.freedesktop.org/software/systemd/man/sd_notify.html.
type State string

const (
	// Ready tells the service manager that service startup is finished.
	Ready State = "READY=1"
	// Stopping tells the service manager that the service is shutting down.
	Stopping State = "STOPPING=1"
)

// Status returns a state carrying a free-form status line.
func Status(s string) State {
	return State("STATUS=" + strings.ReplaceAll(s, "\n", " "))
}

// Notify sends states to the socket named by the NOTIFY_SOCKET variable of
// getenv, in one datagram. It does nothing when not running under systemd.
// Errors are logged to logf.
func Notify(getenv func(string) string, logf logger.Logf, states ...State) {
	addr := &net.UnixAddr{
		Net:  "unixgram",
		Name: getenv("NOTIFY_SOCKET"),
	}
	if addr.Name == "" || len(states) == 0 {
		return
	}
	// Abstract namespace sockets are given with a leading @.
	if strings.HasPrefix(addr.Name, "@") {
		addr.Name = "\x00" + addr.Name[1:]
	}

	conn, err := net.DialUnix(addr.Net, nil, addr)
	if err != nil {
		logf("systemd: failed when notifying: %v", err)
		return
	}
	defer conn.Close()

	msg := make([]string, len(states))
	for i, s := range states {
		msg[i] = string(s)
	}
	if _, err = conn.Write([]byte(strings.Join(msg, "\n"))); err != nil {
		logf("systemd: failed when notifying: %v", err)
	}
}
