package campaign

import (
	"context"
	"fmt"

	"github.com/matcornic/hermes/v2"
	"github.com/pkg/errors"

	"github.com/dreamriver/herald"
)

// WelcomeMailer sends the greeting email a new subscriber receives. It goes
// through the same dispatcher as campaigns, one message at a time.
type WelcomeMailer struct {
	Product    string
	BaseURL    string
	From       string
	Dispatcher herald.CampaignDispatcher
}

// Send sends the welcome email. Failures are the caller's to swallow:
// subscribing must never fail because a greeting could not be delivered.
func (m *WelcomeMailer) Send(ctx context.Context, to, name string) error {
	h := hermes.Hermes{
		Product: hermes.Product{
			Name: m.Product,
			Link: m.BaseURL,
		},
	}

	email := hermes.Email{
		Body: hermes.Body{
			Name: name,
			Intros: []string{
				fmt.Sprintf("Welcome to %s.", m.Product),
				"New posts will land straight in your inbox.",
			},
			Outros: []string{
				"If you did not subscribe, you can safely ignore this email.",
			},
		},
	}

	htmlBody, err := h.GenerateHTML(email)
	if err != nil {
		return errors.Errorf("failed to generate HTML email: %v", err)
	}

	textBody, err := h.GeneratePlainText(email)
	if err != nil {
		return errors.Errorf("failed to generate plain text email: %v", err)
	}

	return m.Dispatcher.SendSingle(ctx, &herald.Message{
		From:     m.From,
		To:       to,
		Subject:  fmt.Sprintf("Welcome to %s", m.Product),
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
}
