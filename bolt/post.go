package bolt

import (
	stderrors "errors"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/go-errors/errors"

	"github.com/dreamriver/herald"
)

type postService struct {
	db *DB
}

func NewPostService(db *DB) herald.PostService {
	return &postService{
		db: db,
	}
}

// Upsert creates the post or overwrites the mutable fields of an existing
// one, matched by slug. EmailCampaignSentAt is preserved on update.
func (ps *postService) Upsert(p *herald.Post) (bool, error) {
	var existing herald.Post
	err := ps.db.stormDB.One("Slug", p.Slug, &existing)
	if err != nil {
		if !stderrors.Is(err, storm.ErrNotFound) {
			return false, errors.Errorf("failed to find by slug: %v", err)
		}

		p.ID = 0
		p.EmailCampaignSentAt = nil
		p.CreatedAt = time.Now()
		if err := ps.db.stormDB.Save(p); err != nil {
			return false, errors.Errorf("failed to save: %v", err)
		}

		return false, nil
	}

	existing.Title = p.Title
	existing.Date = p.Date
	existing.Summary = p.Summary
	existing.Tags = p.Tags
	existing.ProjectID = p.ProjectID
	existing.Content = p.Content
	if err := ps.db.stormDB.Save(&existing); err != nil {
		return false, errors.Errorf("failed to update: %v", err)
	}

	*p = existing

	return true, nil
}

// FindBySlug finds a post by slug
func (ps *postService) FindBySlug(slug string) (*herald.Post, error) {
	var p herald.Post
	if err := ps.db.stormDB.One("Slug", slug, &p); err != nil {
		if stderrors.Is(err, storm.ErrNotFound) {
			return nil, &herald.Error{Code: herald.ErrNotFound, Op: "bolt.FindBySlug", Message: "post not found"}
		}
		return nil, errors.Errorf("failed to find by slug: %v", err)
	}

	return &p, nil
}

// MarkCampaignSent stamps the post inside a write transaction so only one
// caller can claim an unsent campaign. An already stamped post keeps its
// original timestamp.
func (ps *postService) MarkCampaignSent(slug string) (time.Time, error) {
	tx, err := ps.db.stormDB.Begin(true)
	if err != nil {
		return time.Time{}, errors.Errorf("failed to begin transaction: %v", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var p herald.Post
	if err := tx.One("Slug", slug, &p); err != nil {
		if stderrors.Is(err, storm.ErrNotFound) {
			return time.Time{}, &herald.Error{Code: herald.ErrNotFound, Op: "bolt.MarkCampaignSent", Message: "post not found"}
		}
		return time.Time{}, errors.Errorf("failed to find by slug: %v", err)
	}

	if p.EmailCampaignSentAt != nil {
		return *p.EmailCampaignSentAt, nil
	}

	now := time.Now()
	p.EmailCampaignSentAt = &now
	if err := tx.Save(&p); err != nil {
		return time.Time{}, errors.Errorf("failed to update: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return time.Time{}, errors.Errorf("failed to commit: %v", err)
	}

	return now, nil
}
