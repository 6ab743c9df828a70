package testkit

import (
	"context"
	"sync"

	"github.com/plantnet/plantnet/pkg/notification"
)

// Mail is one recorded notification.
type Mail struct {
	Address string
	Subject string
}

// Mailbox records notifications instead of sending them. It satisfies the
// notifier the services depend on.
type Mailbox struct {
	mu   sync.Mutex
	sent []Mail
}

func (m *Mailbox) SendAsync(_ context.Context, address string, n notification.Notification) {
	var subject string
	if mn, ok := n.(notification.Mailable); ok {
		subject = mn.ToMail().Subject
	}
	m.mu.Lock()
	m.sent = append(m.sent, Mail{Address: address, Subject: subject})
	m.mu.Unlock()
}

// Take returns everything recorded since the last call and empties the box.
func (m *Mailbox) Take() []Mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.sent
	m.sent = nil
	return out
}
