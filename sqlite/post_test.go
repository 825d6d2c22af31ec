package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamriver/herald"
)

func TestPostUpsert(t *testing.T) {
	ps := NewPostService(newTestDB(t))

	post := &herald.Post{
		Slug:    "go-generics",
		Title:   "Go Generics",
		Date:    "2024-03-01",
		Tags:    []string{"go", "generics"},
		Content: "# Hello",
	}
	updated, err := ps.Upsert(post)
	require.NoError(t, err)
	assert.False(t, updated)

	created, err := ps.FindBySlug("go-generics")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, []string{"go", "generics"}, created.Tags)

	post2 := &herald.Post{
		Slug:    "go-generics",
		Title:   "Go Generics, Revised",
		Date:    "2024-03-02",
		Content: "# Hello again",
	}
	updated, err = ps.Upsert(post2)
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, created.ID, post2.ID)

	found, err := ps.FindBySlug("go-generics")
	require.NoError(t, err)
	assert.Equal(t, "Go Generics, Revised", found.Title)
	assert.True(t, found.CreatedAt.Equal(created.CreatedAt))
}

func TestPostFindBySlugNotFound(t *testing.T) {
	ps := NewPostService(newTestDB(t))

	_, err := ps.FindBySlug("missing")
	assert.Equal(t, herald.ErrNotFound, herald.ErrorCode(err))
}

func TestPostMarkCampaignSentIdempotent(t *testing.T) {
	ps := NewPostService(newTestDB(t))

	_, err := ps.Upsert(&herald.Post{Slug: "go-generics", Title: "Go Generics"})
	require.NoError(t, err)

	first, err := ps.MarkCampaignSent("go-generics")
	require.NoError(t, err)
	assert.False(t, first.IsZero())

	// The conditional UPDATE matches no row the second time, so the claim
	// returns the original timestamp instead of restamping.
	second, err := ps.MarkCampaignSent("go-generics")
	require.NoError(t, err)
	assert.True(t, second.Equal(first))

	found, err := ps.FindBySlug("go-generics")
	require.NoError(t, err)
	require.NotNil(t, found.EmailCampaignSentAt)
	assert.True(t, found.EmailCampaignSentAt.Equal(first))
}

func TestPostUpsertPreservesCampaignSentAt(t *testing.T) {
	ps := NewPostService(newTestDB(t))

	_, err := ps.Upsert(&herald.Post{Slug: "go-generics", Title: "Go Generics"})
	require.NoError(t, err)

	sentAt, err := ps.MarkCampaignSent("go-generics")
	require.NoError(t, err)

	post := &herald.Post{Slug: "go-generics", Title: "Go Generics, Edited"}
	updated, err := ps.Upsert(post)
	require.NoError(t, err)
	assert.True(t, updated)
	require.NotNil(t, post.EmailCampaignSentAt)
	assert.True(t, post.EmailCampaignSentAt.Equal(sentAt))
}

func TestPostMarkCampaignSentNotFound(t *testing.T) {
	ps := NewPostService(newTestDB(t))

	_, err := ps.MarkCampaignSent("missing")
	assert.Equal(t, herald.ErrNotFound, herald.ErrorCode(err))
}
