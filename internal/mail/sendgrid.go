package mail

import (
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendgridSender delivers mail through the Sendgrid v3 API.
type SendgridSender struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

func NewSendgridSender(apiKey, fromName, fromEmail string) *SendgridSender {
	return &SendgridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   sgmail.NewEmail(fromName, fromEmail),
	}
}

func (s *SendgridSender) Send(msg Message) error {
	to := sgmail.NewEmail("", msg.To)
	m := sgmail.NewSingleEmail(s.from, msg.Subject, to, msg.Body, "")
	res, err := s.client.Send(m)
	if err != nil {
		return fmt.Errorf("mail: sendgrid send: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("mail: sendgrid returned status %d", res.StatusCode)
	}
	return nil
}
