package herald

import "context"

// EmailRenderer converts a post's raw content into email-safe HTML and a
// plain text fallback. Implementations must not fail: when structured
// conversion is impossible the whole content is returned as one escaped
// paragraph instead.
type EmailRenderer interface {
	RenderEmail(content string) (html, text string)
}

// CampaignDispatcher is the interface that wraps methods related to the
// transactional email provider
type CampaignDispatcher interface {
	// SendBatch submits all messages in one provider call and returns an
	// outcome for every input message, in input order. Per-recipient
	// failures are normal and recorded in the result; an error return means
	// the call itself did not complete and nothing was accepted.
	SendBatch(ctx context.Context, messages []*Message) (*CampaignResult, error)
	// SendSingle sends exactly one message and fails loudly.
	SendSingle(ctx context.Context, msg *Message) error
}

// Message is a single composed campaign email.
type Message struct {
	From     string
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// SendOutcome is the per-message result of a batch dispatch.
type SendOutcome struct {
	Email     string
	MessageID string
	Err       string
}

// Failed reports whether this message was rejected by the provider.
func (o SendOutcome) Failed() bool {
	return o.Err != ""
}

// SendError is the client-facing shape of one failed recipient.
type SendError struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// CampaignResult aggregates the outcomes of one batch dispatch. It is
// ephemeral: it is reported back to the trigger and never persisted.
type CampaignResult struct {
	Attempted int
	Sent      int
	Failed    int
	Outcomes  []SendOutcome
}

// Errors collects the failure details, or nil when every message went out.
func (r *CampaignResult) Errors() []SendError {
	var errs []SendError
	for _, o := range r.Outcomes {
		if o.Failed() {
			errs = append(errs, SendError{Email: o.Email, Error: o.Err})
		}
	}
	return errs
}
