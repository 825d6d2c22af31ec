package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dreamriver/herald"
)

type subscriberService struct {
	db *DB
}

func NewSubscriberService(db *DB) herald.SubscriberService {
	return &subscriberService{
		db: db,
	}
}

const subscriberColumns = "id, email, name, status, source, subscribed_at, created_at"

func scanSubscriber(row interface{ Scan(...interface{}) error }) (*herald.Subscriber, error) {
	var s herald.Subscriber
	if err := row.Scan(&s.ID, &s.Email, &s.Name, &s.Status, &s.Source, &s.SubscribedAt, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Add subscribes an email address, reactivating an unsubscribed record
// instead of inserting a duplicate.
func (ss *subscriberService) Add(email, name, source string) (herald.SubscribeOutcome, error) {
	normalized := herald.NormalizeEmail(email)

	existing, err := ss.findByEmail(normalized)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	if existing == nil {
		_, err := ss.db.sqlDB.Exec(
			"INSERT INTO subscribers (email, name, status, source, subscribed_at, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			normalized, name, herald.StatusActive, source, now, now)
		if err != nil {
			return 0, fmt.Errorf("failed to insert: %w", err)
		}
		return herald.Subscribed, nil
	}

	if existing.Status == herald.StatusActive {
		return herald.AlreadySubscribed, nil
	}

	if name == "" {
		name = existing.Name
	}
	if source == "" {
		source = existing.Source
	}
	_, err = ss.db.sqlDB.Exec(
		"UPDATE subscribers SET status = ?, name = ?, source = ?, subscribed_at = ? WHERE id = ?",
		herald.StatusActive, name, source, now, existing.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to reactivate: %w", err)
	}

	return herald.Reactivated, nil
}

// Unsubscribe marks the subscriber as unsubscribed; the record is retained.
func (ss *subscriberService) Unsubscribe(email string) error {
	res, err := ss.db.sqlDB.Exec(
		"UPDATE subscribers SET status = ? WHERE email = ?",
		herald.StatusUnsubscribed, herald.NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return &herald.Error{Code: herald.ErrNotFound, Op: "sqlite.Unsubscribe", Message: "subscriber not found"}
	}

	return nil
}

// FindByEmail finds a subscriber by normalized email
func (ss *subscriberService) FindByEmail(email string) (*herald.Subscriber, error) {
	s, err := ss.findByEmail(herald.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, &herald.Error{Code: herald.ErrNotFound, Op: "sqlite.FindByEmail", Message: "subscriber not found"}
	}
	return s, nil
}

func (ss *subscriberService) findByEmail(email string) (*herald.Subscriber, error) {
	row := ss.db.sqlDB.QueryRow(
		"SELECT "+subscriberColumns+" FROM subscribers WHERE email = ? ORDER BY created_at, id LIMIT 1", email)
	s, err := scanSubscriber(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find by email %s: %w", email, err)
	}
	return s, nil
}

// ListActive returns all active subscribers ordered by creation.
func (ss *subscriberService) ListActive() ([]herald.Subscriber, error) {
	rows, err := ss.db.sqlDB.Query(
		"SELECT "+subscriberColumns+" FROM subscribers WHERE status = ? ORDER BY id", herald.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to find by status: %w", err)
	}
	defer rows.Close()

	var subscribers []herald.Subscriber
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		subscribers = append(subscribers, *s)
	}

	return subscribers, rows.Err()
}

// RemoveDuplicates deletes every record that shares a normalized email with
// an earlier-created one. Earliest wins.
func (ss *subscriberService) RemoveDuplicates() (*herald.DedupResult, error) {
	rows, err := ss.db.sqlDB.Query("SELECT " + subscriberColumns + " FROM subscribers ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to load subscribers: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var doomed []int
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		key := herald.NormalizeEmail(s.Email)
		if seen[key] {
			doomed = append(doomed, s.ID)
			continue
		}
		seen[key] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range doomed {
		if _, err := ss.db.sqlDB.Exec("DELETE FROM subscribers WHERE id = ?", id); err != nil {
			return nil, fmt.Errorf("failed to delete duplicate %d: %w", id, err)
		}
	}

	return &herald.DedupResult{
		Groups:  len(seen),
		Kept:    len(seen),
		Deleted: len(doomed),
	}, nil
}
