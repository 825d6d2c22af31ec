// Package resend dispatches campaign email through the Resend API.
package resend

import (
	"context"

	"github.com/pkg/errors"
	"github.com/resend/resend-go/v3"

	"github.com/dreamriver/herald"
)

// maxBatchSize is Resend's documented per-call batch limit.
const maxBatchSize = 100

// Dispatcher implements herald.CampaignDispatcher on the Resend batch API.
type Dispatcher struct {
	client    *resend.Client
	batchSize int
}

// NewDispatcher returns a dispatcher. A batchSize outside (0, 100] falls
// back to the provider limit.
func NewDispatcher(apiKey string, batchSize int) *Dispatcher {
	if batchSize <= 0 || batchSize > maxBatchSize {
		batchSize = maxBatchSize
	}
	return &Dispatcher{
		client:    resend.NewClient(apiKey),
		batchSize: batchSize,
	}
}

// SendBatch submits the messages in provider-sized chunks and returns one
// outcome per input message, in input order. An error before anything was
// accepted fails the whole call and leaves it retryable; an error on a
// later chunk is recorded per message instead, since earlier chunks are
// already on their way.
func (d *Dispatcher) SendBatch(ctx context.Context, messages []*herald.Message) (*herald.CampaignResult, error) {
	result := &herald.CampaignResult{
		Attempted: len(messages),
		Outcomes:  make([]herald.SendOutcome, 0, len(messages)),
	}

	for start := 0; start < len(messages); start += d.batchSize {
		end := start + d.batchSize
		if end > len(messages) {
			end = len(messages)
		}
		chunk := messages[start:end]

		requests := make([]*resend.SendEmailRequest, len(chunk))
		for i, msg := range chunk {
			requests[i] = toRequest(msg)
		}

		resp, err := d.client.Batch.SendWithContext(ctx, requests)
		if err != nil {
			if start == 0 {
				return nil, errors.Errorf("batch send failed: %v", err)
			}
			for _, msg := range chunk {
				result.Outcomes = append(result.Outcomes, herald.SendOutcome{Email: msg.To, Err: err.Error()})
				result.Failed++
			}
			continue
		}

		for i, msg := range chunk {
			outcome := herald.SendOutcome{Email: msg.To}
			if resp != nil && i < len(resp.Data) {
				outcome.MessageID = resp.Data[i].Id
			}
			result.Outcomes = append(result.Outcomes, outcome)
			result.Sent++
		}
	}

	return result, nil
}

// SendSingle sends exactly one message and fails loudly.
func (d *Dispatcher) SendSingle(ctx context.Context, msg *herald.Message) error {
	if _, err := d.client.Emails.SendWithContext(ctx, toRequest(msg)); err != nil {
		return errors.Errorf("failed to send mail to %s: %v", msg.To, err)
	}
	return nil
}

func toRequest(msg *herald.Message) *resend.SendEmailRequest {
	return &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTMLBody,
		Text:    msg.TextBody,
	}
}

var _ herald.CampaignDispatcher = (*Dispatcher)(nil)
