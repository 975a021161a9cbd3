package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/foodiehub-backend/internal/config"
	"github.com/your-org/foodiehub-backend/internal/pkg/email"
)

type recordingSender struct {
	mu      sync.Mutex
	sent    []string
	err     error
	release chan struct{}
}

func (s *recordingSender) Send(ctx context.Context, msg *email.Email) error {
	if s.release != nil {
		<-s.release
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg.Subject)
	return s.err
}

func (s *recordingSender) subjects() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

func testConfig(workers, queue int) config.NotificationConfig {
	return config.NotificationConfig{Workers: workers, QueueSize: queue, SendTimeout: time.Second}
}

func TestDispatchDeliversOnClose(t *testing.T) {
	logger, _ := test.NewNullLogger()
	sender := &recordingSender{}
	d := NewDispatcher(sender, testConfig(2, 10), logger)
	d.Start()

	d.Dispatch(&email.Email{Subject: "Order Confirmation #1"})
	d.Dispatch(&email.Email{Subject: "Order Confirmation #2"})

	require.NoError(t, d.Close(context.Background()))
	assert.ElementsMatch(t, []string{"Order Confirmation #1", "Order Confirmation #2"}, sender.subjects())
}

func TestSendFailureIsLoggedNotPropagated(t *testing.T) {
	logger, hook := test.NewNullLogger()
	sender := &recordingSender{err: errors.New("smtp down")}
	d := NewDispatcher(sender, testConfig(1, 10), logger)
	d.Start()

	d.Dispatch(&email.Email{Subject: "Payment Failed - Order #3"})
	require.NoError(t, d.Close(context.Background()))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "Failed to send email", entry.Message)
}

func TestDispatchNeverBlocksWhenFull(t *testing.T) {
	logger, hook := test.NewNullLogger()
	sender := &recordingSender{release: make(chan struct{})}
	d := NewDispatcher(sender, testConfig(1, 1), logger)
	d.Start()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			d.Dispatch(&email.Email{Subject: "burst"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Dispatch blocked on a full queue")
	}

	close(sender.release)
	require.NoError(t, d.Close(context.Background()))

	dropped := 0
	for _, e := range hook.AllEntries() {
		if e.Message == "Notification queue full, email dropped" {
			dropped++
		}
	}
	assert.Equal(t, 5, len(sender.subjects())+dropped)
	assert.GreaterOrEqual(t, dropped, 3)
}

func TestDispatchAfterCloseIsDropped(t *testing.T) {
	logger, hook := test.NewNullLogger()
	sender := &recordingSender{}
	d := NewDispatcher(sender, testConfig(1, 1), logger)
	d.Start()
	require.NoError(t, d.Close(context.Background()))

	d.Dispatch(&email.Email{Subject: "late"})

	assert.Empty(t, sender.subjects())
	assert.Equal(t, "Dispatcher closed, email dropped", hook.LastEntry().Message)
}

func TestCloseHonoursContext(t *testing.T) {
	logger, _ := test.NewNullLogger()
	sender := &recordingSender{release: make(chan struct{})}
	defer close(sender.release)
	d := NewDispatcher(sender, testConfig(1, 1), logger)
	d.Start()
	d.Dispatch(&email.Email{Subject: "stuck"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)
}
