package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dreamriver/herald"
)

// CampaignDispatcher is a mock implementation of herald.CampaignDispatcher
type CampaignDispatcher struct {
	mock.Mock
}

func (m *CampaignDispatcher) SendBatch(ctx context.Context, messages []*herald.Message) (*herald.CampaignResult, error) {
	args := m.Called(ctx, messages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*herald.CampaignResult), args.Error(1)
}

func (m *CampaignDispatcher) SendSingle(ctx context.Context, msg *herald.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// EmailRenderer is a mock implementation of herald.EmailRenderer
type EmailRenderer struct {
	mock.Mock
}

func (m *EmailRenderer) RenderEmail(content string) (string, string) {
	args := m.Called(content)
	return args.String(0), args.String(1)
}
