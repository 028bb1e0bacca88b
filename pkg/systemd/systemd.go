// Package systemd reports scheduler state to the service manager (sd_notify).
//
// Every call is a no-op when the process is not started by systemd
// (NOTIFY_SOCKET unset).
package systemd

import (
	"strings"

	"github.com/coreos/go-systemd/v22/daemon"

	logx "cadenced/pkg/logx"
)

type Notifier struct {
	log  logx.Logger
	send func(state string) (bool, error)
}

func NewNotifier(log logx.Logger) *Notifier {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Notifier{
		log:  log,
		send: func(state string) (bool, error) { return daemon.SdNotify(false, state) },
	}
}

// Ready signals startup completion along with an initial status line.
func (n *Notifier) Ready(status string) {
	n.notify(daemon.SdNotifyReady, status)
}

func (n *Notifier) Status(status string) {
	n.notify("", status)
}

func (n *Notifier) Stopping() {
	n.notify(daemon.SdNotifyStopping, "")
}

func (n *Notifier) notify(state, status string) {
	if n == nil || n.send == nil {
		return
	}
	lines := make([]string, 0, 2)
	if state != "" {
		lines = append(lines, state)
	}
	if status = strings.TrimSpace(status); status != "" {
		lines = append(lines, "STATUS="+strings.ReplaceAll(status, "\n", " "))
	}
	if len(lines) == 0 {
		return
	}
	sent, err := n.send(strings.Join(lines, "\n"))
	if err != nil {
		n.log.Debug("sd_notify failed", logx.Err(err))
		return
	}
	if sent {
		n.log.Trace("sd_notify sent", logx.Any("state", lines))
	}
}
