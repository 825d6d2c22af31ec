package mock

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dreamriver/herald"
)

// PostService is a mock implementation of herald.PostService
type PostService struct {
	mock.Mock
}

func (m *PostService) Upsert(p *herald.Post) (bool, error) {
	args := m.Called(p)
	return args.Bool(0), args.Error(1)
}

func (m *PostService) FindBySlug(slug string) (*herald.Post, error) {
	args := m.Called(slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*herald.Post), args.Error(1)
}

func (m *PostService) MarkCampaignSent(slug string) (time.Time, error) {
	args := m.Called(slug)
	return args.Get(0).(time.Time), args.Error(1)
}
