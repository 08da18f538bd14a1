package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []Email
	err  error
}

func (s *recordingSender) Send(e Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, e)
	return s.err
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func TestNotifier_DeliversDispatchedEmail(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	n.Start(ctx)

	n.Dispatch(Email{To: "buyer@example.com", Subject: "Order ORD-1 confirmed"})

	assert.Eventually(t, func() bool { return sender.count() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestNotifier_SendFailureIsSwallowed(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	n := NewNotifier(sender)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	n.Start(ctx)

	// Dispatch must not panic or propagate the failure.
	n.Dispatch(Email{To: "buyer@example.com"})
	n.Dispatch(Email{To: "ops@example.com"})

	assert.Eventually(t, func() bool { return sender.count() == 2 },
		time.Second, 10*time.Millisecond)
}

func TestNotifier_DispatchNeverBlocks(t *testing.T) {
	// No worker running: fill the queue past capacity and make sure the
	// caller still returns promptly.
	n := NewNotifier(&recordingSender{})

	done := make(chan struct{})
	go func() {
		for i := 0; i < queueSize*2; i++ {
			n.Dispatch(Email{To: "buyer@example.com"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Dispatch blocked on a saturated queue")
	}
}

func TestOrderConfirmationTemplate(t *testing.T) {
	e := OrderConfirmation("buyer@example.com", "Rahim", "ORD-20250101-1200-0042", "1070")
	assert.Equal(t, "buyer@example.com", e.To)
	assert.Contains(t, e.Subject, "ORD-20250101-1200-0042")
	assert.Contains(t, e.Body, "Rahim")
	assert.Contains(t, e.Body, "1070")
}
