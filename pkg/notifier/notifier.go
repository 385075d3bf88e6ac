// Package notifier sends desktop notifications when a watched project starts
// or stops resolving
package notifier

import (
	"fmt"
	"sync"

	"github.com/cratekit/cratekit/pkg/logger"
	"github.com/gen2brain/beeep"
)

// SendFunc delivers one notification
type SendFunc func(title, message string) error

// ResolutionNotifier reports transitions between resolving and failing.
// Repeated successes or repeated failures are not reported again.
type ResolutionNotifier struct {
	enabled bool
	send    SendFunc
	logger  logger.Logger

	mu     sync.Mutex
	failed bool
	seen   bool
}

// New creates a notifier backed by the system notification service
func New(enabled bool, log logger.Logger) *ResolutionNotifier {
	return NewWithSender(enabled, func(title, message string) error {
		return beeep.Notify(title, message, "")
	}, log)
}

// NewWithSender creates a notifier with a custom delivery function
func NewWithSender(enabled bool, send SendFunc, log logger.Logger) *ResolutionNotifier {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &ResolutionNotifier{enabled: enabled, send: send, logger: log}
}

// NotifyResolved records a successful resolution of pkg
func (n *ResolutionNotifier) NotifyResolved(pkg string, artifacts int) {
	n.mu.Lock()
	recovered := n.seen && n.failed
	n.failed = false
	n.seen = true
	n.mu.Unlock()

	if recovered {
		n.deliver("✓ "+pkg+" resolves again", fmt.Sprintf("%d artifacts", artifacts))
	}
}

// NotifyFailure records a failed resolution
func (n *ResolutionNotifier) NotifyFailure(err error) {
	n.mu.Lock()
	first := !n.failed
	n.failed = true
	n.seen = true
	n.mu.Unlock()

	if first {
		n.deliver("✗ Resolution failed", err.Error())
	}
}

func (n *ResolutionNotifier) deliver(title, message string) {
	if !n.enabled {
		return
	}
	if err := n.send(title, message); err != nil {
		n.logger.Debug("Failed to send notification", logger.WithField("error", err))
	}
}
