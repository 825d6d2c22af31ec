package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

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

const postColumns = "id, slug, title, date, summary, tags, project_id, content, email_campaign_sent_at, created_at"

func scanPost(row interface{ Scan(...interface{}) error }) (*herald.Post, error) {
	var (
		p    herald.Post
		tags []byte
	)
	if err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Date, &p.Summary, &tags, &p.ProjectID, &p.Content, &p.EmailCampaignSentAt, &p.CreatedAt); err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &p.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
	}
	return &p, nil
}

// Upsert creates the post or overwrites the mutable fields of an existing
// one, matched by slug. email_campaign_sent_at is preserved on update.
func (ps *postService) Upsert(p *herald.Post) (bool, error) {
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return false, fmt.Errorf("failed to encode tags: %w", err)
	}

	res, err := ps.db.sqlDB.Exec(
		"UPDATE posts SET title = ?, date = ?, summary = ?, tags = ?, project_id = ?, content = ? WHERE slug = ?",
		p.Title, p.Date, p.Summary, string(tags), p.ProjectID, p.Content, p.Slug)
	if err != nil {
		return false, fmt.Errorf("failed to update: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n > 0 {
		existing, err := ps.FindBySlug(p.Slug)
		if err != nil {
			return false, err
		}
		*p = *existing
		return true, nil
	}

	_, err = ps.db.sqlDB.Exec(
		"INSERT INTO posts (slug, title, date, summary, tags, project_id, content, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		p.Slug, p.Title, p.Date, p.Summary, string(tags), p.ProjectID, p.Content, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to insert: %w", err)
	}

	return false, nil
}

// FindBySlug finds a post by slug
func (ps *postService) FindBySlug(slug string) (*herald.Post, error) {
	row := ps.db.sqlDB.QueryRow("SELECT "+postColumns+" FROM posts WHERE slug = ?", slug)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &herald.Error{Code: herald.ErrNotFound, Op: "sqlite.FindBySlug", Message: "post not found"}
		}
		return nil, fmt.Errorf("failed to find by slug %s: %w", slug, err)
	}
	return p, nil
}

// MarkCampaignSent stamps the post with a conditional UPDATE so only one
// caller can claim an unsent campaign; an already stamped post keeps its
// original timestamp.
func (ps *postService) MarkCampaignSent(slug string) (time.Time, error) {
	now := time.Now()
	res, err := ps.db.sqlDB.Exec(
		"UPDATE posts SET email_campaign_sent_at = ? WHERE slug = ? AND email_campaign_sent_at IS NULL",
		now, slug)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to update: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n > 0 {
		return now, nil
	}

	p, err := ps.FindBySlug(slug)
	if err != nil {
		return time.Time{}, err
	}
	if p.EmailCampaignSentAt == nil {
		return time.Time{}, fmt.Errorf("post %s claimed by nobody and still unsent", slug)
	}
	return *p.EmailCampaignSentAt, nil
}
