// Package notification sends emails in the background so that request
// handling never waits on, or fails because of, an email provider.
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/foodiehub-backend/internal/config"
	"github.com/your-org/foodiehub-backend/internal/pkg/email"
)

// Dispatcher queues emails and delivers them from a fixed pool of workers
type Dispatcher struct {
	sender      email.Sender
	queue       chan *email.Email
	workers     int
	sendTimeout time.Duration
	logger      logrus.FieldLogger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Call Start before Dispatch.
func NewDispatcher(sender email.Sender, cfg config.NotificationConfig, logger logrus.FieldLogger) *Dispatcher {
	return &Dispatcher{
		sender:      sender,
		queue:       make(chan *email.Email, cfg.QueueSize),
		workers:     cfg.Workers,
		sendTimeout: cfg.SendTimeout,
		logger:      logger,
	}
}

// Start launches the workers
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
}

// Dispatch enqueues msg. It never blocks: when the queue is full or the
// dispatcher is closed the email is dropped and logged.
func (d *Dispatcher) Dispatch(msg *email.Email) {
	if msg == nil {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.entry(msg).Warn("Dispatcher closed, email dropped")
		return
	}

	select {
	case d.queue <- msg:
	default:
		d.entry(msg).Error("Notification queue full, email dropped")
	}
}

// Close stops accepting emails and waits for queued ones to be sent, or for
// ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for msg := range d.queue {
		d.send(msg)
	}
}

func (d *Dispatcher) send(msg *email.Email) {
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			d.entry(msg).WithField("panic", r).Error("Email sender panicked")
		}
	}()

	if err := d.sender.Send(ctx, msg); err != nil {
		d.entry(msg).WithError(err).Error("Failed to send email")
		return
	}
	d.entry(msg).Debug("Email sent")
}

func (d *Dispatcher) entry(msg *email.Email) *logrus.Entry {
	return d.logger.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
		"type":    msg.Type,
	})
}
