// Package mail sends outbound notification email. Delivery is best-effort:
// the notifier fires messages from a goroutine and never lets a mail failure
// block or fail the request that triggered it.
package mail

import (
	"github.com/learnlive/server/pkg/logger"
)

// Message is one plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers email messages.
type Sender interface {
	Send(msg Message) error
}

// ConsoleSender logs messages instead of sending them. Used in development
// and whenever no API key is configured.
type ConsoleSender struct{}

func (ConsoleSender) Send(msg Message) error {
	logger.Infof("mail (console): to=%s subject=%q", msg.To, msg.Subject)
	return nil
}
