package mock

import (
	"github.com/stretchr/testify/mock"

	"github.com/dreamriver/herald"
)

// SubscriberService is a mock implementation of herald.SubscriberService
type SubscriberService struct {
	mock.Mock
}

func (m *SubscriberService) Add(email, name, source string) (herald.SubscribeOutcome, error) {
	args := m.Called(email, name, source)
	return args.Get(0).(herald.SubscribeOutcome), args.Error(1)
}

func (m *SubscriberService) Unsubscribe(email string) error {
	args := m.Called(email)
	return args.Error(0)
}

func (m *SubscriberService) FindByEmail(email string) (*herald.Subscriber, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*herald.Subscriber), args.Error(1)
}

func (m *SubscriberService) ListActive() ([]herald.Subscriber, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]herald.Subscriber), args.Error(1)
}

func (m *SubscriberService) RemoveDuplicates() (*herald.DedupResult, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*herald.DedupResult), args.Error(1)
}
