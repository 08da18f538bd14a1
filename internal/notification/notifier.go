// Package notification delivers order emails as best-effort side effects.
// Dispatch never blocks and delivery failures are logged, never propagated:
// a slow or broken mail path must not delay or fail an order.
package notification

import (
	"context"

	"dokan-be/internal/logger"

	"go.uber.org/zap"
)

const queueSize = 256

type Notifier struct {
	sender Sender
	ch     chan Email
}

func NewNotifier(sender Sender) *Notifier {
	return &Notifier{
		sender: sender,
		ch:     make(chan Email, queueSize),
	}
}

// Start runs the delivery worker until ctx is cancelled.
func (n *Notifier) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case e := <-n.ch:
				if err := n.sender.Send(e); err != nil {
					logger.L().Warn("notification delivery failed",
						zap.String("to", e.To),
						zap.String("subject", e.Subject),
						zap.Error(err),
					)
				}
			}
		}
	}()
}

// Dispatch queues an email without blocking. When the queue is saturated
// the message is dropped with a log entry; callers never wait.
func (n *Notifier) Dispatch(e Email) {
	select {
	case n.ch <- e:
	default:
		logger.L().Warn("notification queue full, dropping email",
			zap.String("to", e.To),
			zap.String("subject", e.Subject),
		)
	}
}
