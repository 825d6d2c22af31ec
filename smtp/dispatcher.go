// Package smtp dispatches campaign email through a plain SMTP relay. It
// exists for setups without a transactional provider; the batch contract is
// emulated with one connection per batch and one send per recipient.
package smtp

import (
	"context"

	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"

	"github.com/dreamriver/herald"
)

// Dispatcher implements herald.CampaignDispatcher over SMTP.
type Dispatcher struct {
	host     string
	port     int
	username string
	password string
}

func NewDispatcher(host string, port int, username, password string) *Dispatcher {
	return &Dispatcher{
		host:     host,
		port:     port,
		username: username,
		password: password,
	}
}

// SendBatch dials once and walks the messages. A dial failure is the
// call-level failure: nothing was sent, the caller may retry. Per-recipient
// send errors are recorded in the outcomes and do not stop the walk.
func (d *Dispatcher) SendBatch(ctx context.Context, messages []*herald.Message) (*herald.CampaignResult, error) {
	dialer := gomail.NewDialer(d.host, d.port, d.username, d.password)
	sender, err := dialer.Dial()
	if err != nil {
		return nil, errors.Errorf("failed to dial SMTP server %s:%d: %v", d.host, d.port, err)
	}
	defer func() {
		_ = sender.Close()
	}()

	result := &herald.CampaignResult{
		Attempted: len(messages),
		Outcomes:  make([]herald.SendOutcome, 0, len(messages)),
	}

	for _, msg := range messages {
		if err := ctx.Err(); err != nil {
			result.Outcomes = append(result.Outcomes, herald.SendOutcome{Email: msg.To, Err: err.Error()})
			result.Failed++
			continue
		}

		if err := gomail.Send(sender, toMessage(msg)); err != nil {
			result.Outcomes = append(result.Outcomes, herald.SendOutcome{Email: msg.To, Err: err.Error()})
			result.Failed++
			continue
		}

		result.Outcomes = append(result.Outcomes, herald.SendOutcome{Email: msg.To})
		result.Sent++
	}

	return result, nil
}

// SendSingle sends exactly one message over a fresh connection.
func (d *Dispatcher) SendSingle(_ context.Context, msg *herald.Message) error {
	dialer := gomail.NewDialer(d.host, d.port, d.username, d.password)
	if err := dialer.DialAndSend(toMessage(msg)); err != nil {
		return errors.Errorf("failed to send mail to %s: %v", msg.To, err)
	}
	return nil
}

func toMessage(msg *herald.Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.TextBody)
	m.AddAlternative("text/html", msg.HTMLBody)
	return m
}

var _ herald.CampaignDispatcher = (*Dispatcher)(nil)
