// Package notification dispatches notifications over one or more channels.
//
// Define a Notification:
//
//	type OrderPlaced struct{ OrderID string }
//	func (n OrderPlaced) Via() []string { return []string{notification.ChannelMail} }
//	func (n OrderPlaced) ToMail() notification.MailData {
//	    return notification.MailData{Subject: "Order Successful", Message: "..."}
//	}
//
// Send it without blocking the caller:
//
//	dispatcher.SendAsync(ctx, "buyer@example.com", OrderPlaced{OrderID: id})
package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/plantnet/plantnet/pkg/logger"
	"github.com/plantnet/plantnet/pkg/mail"
	"github.com/plantnet/plantnet/pkg/metrics"
	"github.com/plantnet/plantnet/pkg/workerpool"
)

const (
	ChannelMail = "mail"
	ChannelLog  = "log"
)

// ErrNoRecipient is reported when a notification has nowhere to go.
var ErrNoRecipient = errors.New("notification: empty recipient")

// MailData is the mail channel payload. Message is plain text and is sent
// as a single HTML paragraph.
type MailData struct {
	To      string // overrides the notifiable address if set
	Subject string
	Message string
}

// Notification is the interface every notification must satisfy.
type Notification interface {
	// Via returns the channel names: "mail", "log".
	Via() []string
}

// Mailable can be implemented to support the mail channel.
type Mailable interface {
	ToMail() MailData
}

// MailSender is satisfied by *mail.Mailer.
type MailSender interface {
	Deliver(to, subject, htmlBody string) error
}

// Dispatcher routes notifications to their channels. Async sends run on a
// bounded worker pool; when the pool is saturated the notification is
// dropped and counted rather than blocking the request.
type Dispatcher struct {
	mailer MailSender
	pool   *workerpool.Pool
}

func NewDispatcher(mailer MailSender, pool *workerpool.Pool) *Dispatcher {
	return &Dispatcher{mailer: mailer, pool: pool}
}

// Send dispatches n through every channel in Via() and returns the
// per-channel failures.
func (d *Dispatcher) Send(ctx context.Context, address string, n Notification) []error {
	log := logger.WithCtx(ctx)
	var errs []error
	for _, channel := range n.Via() {
		err := d.dispatch(ctx, address, channel, n)
		switch {
		case err == nil:
			metrics.Notifications.WithLabelValues("sent").Inc()
		case errors.Is(err, ErrNoRecipient):
			metrics.Notifications.WithLabelValues("skipped").Inc()
			log.Warn("notification skipped", "channel", channel, "kind", fmt.Sprintf("%T", n))
			errs = append(errs, err)
		default:
			metrics.Notifications.WithLabelValues("failed").Inc()
			log.Error("notification failed", "channel", channel, "to", address, "error", err)
			errs = append(errs, err)
		}
	}
	return errs
}

// SendAsync queues n and returns immediately. Failures only reach the log.
func (d *Dispatcher) SendAsync(ctx context.Context, address string, n Notification) {
	// The request context is cancelled once the response is written.
	bg := context.WithoutCancel(ctx)
	err := d.pool.Submit(func() { d.Send(bg, address, n) })
	if err != nil {
		metrics.Notifications.WithLabelValues("dropped").Inc()
		logger.WithCtx(ctx).Error("notification dropped", "to", address, "error", err)
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, address, channel string, n Notification) error {
	switch channel {
	case ChannelMail:
		m, ok := n.(Mailable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Mailable", n)
		}
		data := m.ToMail()
		to := data.To
		if to == "" {
			to = address
		}
		if to == "" {
			return ErrNoRecipient
		}
		return d.mailer.Deliver(to, data.Subject, mail.Paragraph(data.Message))

	case ChannelLog:
		logger.WithCtx(ctx).Info("notification", "to", address, "kind", fmt.Sprintf("%T", n))
		return nil

	default:
		return fmt.Errorf("notification: unknown channel %q", channel)
	}
}
