package herald

import (
	"strings"
	"time"
)

// SubscriberService is the interface that wraps methods related to newsletter subscribers
type SubscriberService interface {
	Add(email, name, source string) (SubscribeOutcome, error)
	Unsubscribe(email string) error
	FindByEmail(email string) (*Subscriber, error)
	ListActive() ([]Subscriber, error)
	RemoveDuplicates() (*DedupResult, error)
}

// Subscriber represents a newsletter subscriber
type Subscriber struct {
	ID           int    `storm:"id,increment"`
	Email        string `storm:"index"`
	Name         string
	Status       string `storm:"index"`
	Source       string
	SubscribedAt time.Time
	CreatedAt    time.Time
}

// Subscriber status
const (
	StatusActive       = "active"
	StatusUnsubscribed = "unsubscribed"
)

// SubscribeOutcome tells callers what Add actually did.
type SubscribeOutcome int

const (
	// Subscribed means a new subscriber record was created.
	Subscribed SubscribeOutcome = iota
	// Reactivated means an unsubscribed record was switched back to active.
	Reactivated
	// AlreadySubscribed means the record was already active; not an error.
	AlreadySubscribed
)

func (o SubscribeOutcome) String() string {
	switch o {
	case Subscribed:
		return "subscribed"
	case Reactivated:
		return "reactivated"
	case AlreadySubscribed:
		return "already_subscribed"
	default:
		return "unknown"
	}
}

// DedupResult reports what the duplicate cleanup did.
type DedupResult struct {
	Groups  int
	Kept    int
	Deleted int
}

// NormalizeEmail trims and lowercases an email address. All store lookups
// and comparisons go through this so that identity is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type SubscriptionRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Honeypot string `json:"honeypot,omitempty"`
}

type SubscriptionResponse struct {
	Message string `json:"message"`
}
