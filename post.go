package herald

import "time"

// PostService is the interface that wraps methods related to blog posts
type PostService interface {
	// Upsert creates the post or, when a post with the same slug exists,
	// overwrites its mutable fields. EmailCampaignSentAt is never touched.
	// Reports whether an existing post was updated.
	Upsert(p *Post) (updated bool, err error)
	FindBySlug(slug string) (*Post, error)
	// MarkCampaignSent stamps EmailCampaignSentAt, but only when it is still
	// unset; the write is atomic at the store level so concurrent callers
	// cannot both claim the campaign. Returns the effective sent time.
	MarkCampaignSent(slug string) (time.Time, error)
}

// Post represents a published blog post
type Post struct {
	ID        int    `storm:"id,increment"`
	Slug      string `storm:"unique"`
	Title     string
	Date      string
	Summary   string
	Tags      []string
	ProjectID string
	Content   string

	// EmailCampaignSentAt is write-once: set by MarkCampaignSent and never
	// cleared afterwards.
	EmailCampaignSentAt *time.Time
	CreatedAt           time.Time
}
