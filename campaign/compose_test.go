package campaign

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamriver/herald"
	"github.com/dreamriver/herald/pkg/hash"
)

func testComposer() *Composer {
	return &Composer{
		BaseURL: "https://blog.example.com",
		Product: "Example Blog",
		From:    "Example Blog <hello@example.com>",
		Secret:  "da02e221bc331c9875c5e1299fa8d765",
	}
}

func TestComposePerRecipientUnsubscribeLinks(t *testing.T) {
	c := testComposer()
	post := &herald.Post{Slug: "go-generics", Title: "Go Generics", Date: "2024-03-01"}

	messages, err := c.Compose(post, "<p>hello</p>", []herald.Subscriber{
		{ID: 1, Email: "foo@gmail.com"},
		{ID: 2, Email: "bar+tag@gmail.com"},
	})
	require.NoError(t, err)
	require.Len(t, messages, 2)

	for i, email := range []string{"foo@gmail.com", "bar+tag@gmail.com"} {
		mac, err := hash.ComputeHmac256(email, c.Secret)
		require.NoError(t, err)
		assert.Contains(t, messages[i].HTMLBody, fmt.Sprintf("%s/unsubscribe?email=%s", c.BaseURL, url.QueryEscape(email)))
		assert.Contains(t, messages[i].HTMLBody, url.QueryEscape(mac))
	}

	// No recipient sees another recipient's link.
	assert.NotContains(t, messages[0].HTMLBody, "bar%2Btag%40gmail.com")
	assert.NotContains(t, messages[1].HTMLBody, "foo%40gmail.com")
}

func TestComposeSubjectAndViewOnline(t *testing.T) {
	c := testComposer()
	post := &herald.Post{Slug: "go generics in practice", Title: "Go Generics", Date: "2024-03-01"}

	messages, err := c.Compose(post, "<p>hello</p>", []herald.Subscriber{{ID: 1, Email: "foo@gmail.com"}})
	require.NoError(t, err)
	require.Len(t, messages, 1)

	msg := messages[0]
	assert.Equal(t, "New Blog Post: Go Generics", msg.Subject)
	assert.Equal(t, c.From, msg.From)
	assert.Equal(t, "foo@gmail.com", msg.To)
	assert.Contains(t, msg.HTMLBody, "https://blog.example.com/posts/go%20generics%20in%20practice")
	assert.Contains(t, msg.HTMLBody, "March 1, 2024")
	assert.Contains(t, msg.HTMLBody, "Example Blog")
}

func TestComposeTextBodyDerivedFromHTML(t *testing.T) {
	c := testComposer()
	post := &herald.Post{Slug: "go-generics", Title: "Go Generics", Date: "2024-03-01"}

	messages, err := c.Compose(post, `<p style="margin: 0 0 16px;">Generics &amp; constraints</p>`, []herald.Subscriber{{ID: 1, Email: "foo@gmail.com"}})
	require.NoError(t, err)
	require.Len(t, messages, 1)

	text := messages[0].TextBody
	assert.Contains(t, text, "Generics & constraints")
	assert.NotContains(t, text, "<p")
	assert.NotContains(t, text, "style=")
}

func TestComposeUnparseableDatePassesThrough(t *testing.T) {
	c := testComposer()
	post := &herald.Post{Slug: "s", Title: "T", Date: "sometime in march"}

	messages, err := c.Compose(post, "<p>x</p>", []herald.Subscriber{{ID: 1, Email: "foo@gmail.com"}})
	require.NoError(t, err)
	assert.Contains(t, messages[0].HTMLBody, "sometime in march")
}
