// Package campaign implements the publish-and-notify workflow: once a post
// goes out, every active subscriber gets exactly one campaign email, and
// the post is marked as sent exactly once.
package campaign

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	uuid "github.com/satori/go.uuid"
	"golang.org/x/sync/singleflight"

	"github.com/dreamriver/herald"
)

// Pipeline coordinates the store lookups, the idempotency check, the
// renderer, the composer, the batch dispatch and the final mark-sent write.
type Pipeline struct {
	Posts       herald.PostService
	Subscribers herald.SubscriberService
	Renderer    herald.EmailRenderer
	Dispatcher  herald.CampaignDispatcher
	Composer    *Composer
	// Timeout bounds the dispatch call; expiry counts as a dispatch
	// failure, never an indefinite hang.
	Timeout time.Duration
	Logger  zerolog.Logger

	group singleflight.Group
}

// Result reports one pipeline run back to the trigger.
type Result struct {
	CampaignID  string             `json:"campaignId,omitempty"`
	AlreadySent bool               `json:"alreadySent,omitempty"`
	SentAt      *time.Time         `json:"sentAt,omitempty"`
	SentCount   int                `json:"sentCount"`
	ErrorCount  int                `json:"errorCount"`
	Errors      []herald.SendError `json:"errors,omitempty"`
}

// Send runs the campaign for one post. Overlapping invocations for the same
// slug collapse into a single run sharing one result; the conditional write
// in MarkCampaignSent is the backstop for triggers arriving from separate
// processes.
func (p *Pipeline) Send(ctx context.Context, slug string) (*Result, error) {
	v, err, _ := p.group.Do(slug, func() (interface{}, error) {
		return p.send(ctx, slug)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

func (p *Pipeline) send(ctx context.Context, slug string) (*Result, error) {
	post, err := p.Posts.FindBySlug(slug)
	if err != nil {
		return nil, err
	}

	if post.EmailCampaignSentAt != nil {
		return &Result{AlreadySent: true, SentAt: post.EmailCampaignSentAt}, nil
	}

	subscribers, err := p.Subscribers.ListActive()
	if err != nil {
		return nil, err
	}

	campaignID := uuid.NewV4().String()
	logger := p.Logger.With().Str("campaign_id", campaignID).Str("slug", slug).Logger()

	if len(subscribers) == 0 {
		// The post stays unsent so the campaign can be retried once
		// subscribers exist.
		logger.Info().Msg("no active subscribers, nothing to send")
		return &Result{CampaignID: campaignID}, nil
	}

	contentHTML, _ := p.Renderer.RenderEmail(post.Content)

	messages, err := p.Composer.Compose(post, contentHTML, subscribers)
	if err != nil {
		return nil, err
	}

	logger.Info().Int("recipients", len(messages)).Msg("dispatching campaign")

	dispatchCtx := ctx
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		dispatchCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	result, err := p.Dispatcher.SendBatch(dispatchCtx, messages)
	if err != nil {
		// Nothing was accepted by the provider; the post stays unsent and
		// the trigger may retry.
		return nil, &herald.Error{Code: herald.ErrDispatchFailed, Op: "campaign.Send", Err: err}
	}

	sentAt, err := p.Posts.MarkCampaignSent(slug)
	if err != nil {
		// The campaign is already out; surfacing an error here would invite
		// a retry and a double send. Record the failure and report success.
		logger.Error().Err(err).Msg("campaign dispatched but marking the post failed")
		sentAt = time.Now()
	}

	logger.Info().Int("sent", result.Sent).Int("failed", result.Failed).Msg("campaign dispatched")

	return &Result{
		CampaignID: campaignID,
		SentAt:     &sentAt,
		SentCount:  result.Sent,
		ErrorCount: result.Failed,
		Errors:     result.Errors(),
	}, nil
}
