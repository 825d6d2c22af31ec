package campaign

import (
	"fmt"
	"html/template"
	"net/url"
	"time"

	"github.com/dreamriver/herald"
	"github.com/dreamriver/herald/markdown"
	"github.com/dreamriver/herald/pkg/hash"
)

// Composer fans rendered post content out into one message per subscriber.
type Composer struct {
	BaseURL string
	Product string
	From    string
	// Secret signs the unsubscribe link so the unsubscribe endpoint can
	// verify it was issued by us for exactly that recipient.
	Secret string
}

// Compose builds the per-recipient messages. The rendered content is shared
// read-only across all of them; anything recipient-specific, above all the
// unsubscribe link, comes from that recipient alone.
func (c *Composer) Compose(post *herald.Post, contentHTML string, subscribers []herald.Subscriber) ([]*herald.Message, error) {
	messages := make([]*herald.Message, 0, len(subscribers))
	for _, sub := range subscribers {
		unsubscribeURL, err := c.unsubscribeLink(sub.Email)
		if err != nil {
			return nil, err
		}

		htmlBody, err := renderShell(shellData{
			Title:          post.Title,
			Date:           formatDate(post.Date),
			Content:        template.HTML(contentHTML),
			ViewOnlineURL:  c.BaseURL + "/posts/" + url.PathEscape(post.Slug),
			UnsubscribeURL: unsubscribeURL,
			Product:        c.Product,
		})
		if err != nil {
			return nil, err
		}

		messages = append(messages, &herald.Message{
			From:     c.From,
			To:       sub.Email,
			Subject:  "New Blog Post: " + post.Title,
			HTMLBody: htmlBody,
			TextBody: markdown.PlainText(htmlBody),
		})
	}

	return messages, nil
}

func (c *Composer) unsubscribeLink(email string) (string, error) {
	mac, err := hash.ComputeHmac256(email, c.Secret)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/unsubscribe?email=%s&hash=%s",
		c.BaseURL, url.QueryEscape(email), url.QueryEscape(mac)), nil
}

// formatDate renders an ISO date the way the post header shows it; an
// unparseable date is passed through untouched.
func formatDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("January 2, 2006")
}
