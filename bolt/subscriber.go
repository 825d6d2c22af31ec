package bolt

import (
	stderrors "errors"
	"sort"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/go-errors/errors"

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

// Add subscribes an email address. An existing unsubscribed record is
// reactivated instead of duplicated; an already active one is left alone.
func (ss *subscriberService) Add(email, name, source string) (herald.SubscribeOutcome, error) {
	normalized := herald.NormalizeEmail(email)

	var s herald.Subscriber
	err := ss.db.stormDB.One("Email", normalized, &s)
	if err != nil {
		if !stderrors.Is(err, storm.ErrNotFound) {
			return 0, errors.Errorf("failed to find by email: %v", err)
		}

		now := time.Now()
		sub := &herald.Subscriber{
			Email:        normalized,
			Name:         name,
			Status:       herald.StatusActive,
			Source:       source,
			SubscribedAt: now,
			CreatedAt:    now,
		}
		if err := ss.db.stormDB.Save(sub); err != nil {
			return 0, errors.Errorf("failed to save: %v", err)
		}

		return herald.Subscribed, nil
	}

	if s.Status == herald.StatusActive {
		return herald.AlreadySubscribed, nil
	}

	s.Status = herald.StatusActive
	s.SubscribedAt = time.Now()
	if name != "" {
		s.Name = name
	}
	if source != "" {
		s.Source = source
	}
	if err := ss.db.stormDB.Save(&s); err != nil {
		return 0, errors.Errorf("failed to save: %v", err)
	}

	return herald.Reactivated, nil
}

// Unsubscribe marks the subscriber as unsubscribed; the record is retained.
func (ss *subscriberService) Unsubscribe(email string) error {
	s, err := ss.FindByEmail(email)
	if err != nil {
		return err
	}

	s.Status = herald.StatusUnsubscribed
	if err := ss.db.stormDB.Save(s); err != nil {
		return errors.Errorf("failed to save: %v", err)
	}

	return nil
}

// FindByEmail finds a subscriber by normalized email
func (ss *subscriberService) FindByEmail(email string) (*herald.Subscriber, error) {
	var s herald.Subscriber
	if err := ss.db.stormDB.One("Email", herald.NormalizeEmail(email), &s); err != nil {
		if stderrors.Is(err, storm.ErrNotFound) {
			return nil, &herald.Error{Code: herald.ErrNotFound, Op: "bolt.FindByEmail", Message: "subscriber not found"}
		}
		return nil, errors.Errorf("failed to find by email: %v", err)
	}

	return &s, nil
}

// ListActive returns all active subscribers, ordered by creation for
// deterministic output.
func (ss *subscriberService) ListActive() ([]herald.Subscriber, error) {
	var subscribers []herald.Subscriber
	if err := ss.db.stormDB.Find("Status", herald.StatusActive, &subscribers); err != nil {
		if stderrors.Is(err, storm.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Errorf("failed to find by status: %v", err)
	}

	sort.Slice(subscribers, func(i, j int) bool {
		return subscribers[i].ID < subscribers[j].ID
	})

	return subscribers, nil
}

// RemoveDuplicates groups all records by normalized email and, for every
// group with more than one record, keeps the earliest-created one and
// deletes the rest. Earliest wins, not most-recently-active.
func (ss *subscriberService) RemoveDuplicates() (*herald.DedupResult, error) {
	var all []herald.Subscriber
	if err := ss.db.stormDB.All(&all); err != nil {
		return nil, errors.Errorf("failed to load subscribers: %v", err)
	}

	groups := make(map[string][]herald.Subscriber)
	for _, s := range all {
		key := herald.NormalizeEmail(s.Email)
		groups[key] = append(groups[key], s)
	}

	result := &herald.DedupResult{Groups: len(groups)}
	for _, group := range groups {
		sort.Slice(group, func(i, j int) bool {
			if group[i].CreatedAt.Equal(group[j].CreatedAt) {
				return group[i].ID < group[j].ID
			}
			return group[i].CreatedAt.Before(group[j].CreatedAt)
		})

		result.Kept++
		for _, dup := range group[1:] {
			dup := dup
			if err := ss.db.stormDB.DeleteStruct(&dup); err != nil {
				return nil, errors.Errorf("failed to delete duplicate %d: %v", dup.ID, err)
			}
			result.Deleted++
		}
	}

	return result, nil
}
