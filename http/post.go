package http

import (
	"crypto/hmac"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/hlog"

	"github.com/dreamriver/herald"
)

type upsertPostRequest struct {
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	Date         string   `json:"date"`
	Summary      string   `json:"summary"`
	Tags         []string `json:"tags"`
	ProjectID    string   `json:"projectId"`
	Content      string   `json:"content"`
	SendCampaign *bool    `json:"sendCampaign"`
	Secret       string   `json:"secret"`
}

type upsertPostResponse struct {
	Slug     string      `json:"slug"`
	Updated  bool        `json:"updated"`
	Campaign interface{} `json:"campaign,omitempty"`
}

func (s *Server) upsertPostHandler(w http.ResponseWriter, r *http.Request) error {
	var req *upsertPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req == nil {
		return NewError(err, http.StatusBadRequest, "Invalid request body.")
	}

	if !s.authorized(r, req.Secret) {
		return NewError(nil, http.StatusUnauthorized, "Invalid or missing webhook secret.")
	}

	if req.Slug == "" || req.Title == "" {
		return NewError(nil, http.StatusBadRequest, "Both slug and title are required.")
	}

	post := &herald.Post{
		Slug:      req.Slug,
		Title:     req.Title,
		Date:      req.Date,
		Summary:   req.Summary,
		Tags:      req.Tags,
		ProjectID: req.ProjectID,
		Content:   req.Content,
	}
	updated, err := s.PostService.Upsert(post)
	if err != nil {
		return err
	}

	resp := &upsertPostResponse{
		Slug:    post.Slug,
		Updated: updated,
	}

	// Publishing defaults to notifying subscribers; the webhook opts out
	// explicitly with sendCampaign: false.
	if req.SendCampaign == nil || *req.SendCampaign {
		result, err := s.CampaignSender.Send(r.Context(), post.Slug)
		if err != nil {
			// The post is already stored; a campaign failure must not turn
			// the upsert into an error.
			hlog.FromRequest(r).Error().Err(err).Str("slug", post.Slug).Msg("Campaign send failed after upsert")
			sentry.CaptureException(err)
			resp.Campaign = map[string]string{"error": herald.ErrorMessage(err)}
		} else {
			resp.Campaign = result
		}
	}

	writeJSONResponse(w, http.StatusOK, resp)

	return nil
}

func (s *Server) authorized(r *http.Request, bodySecret string) bool {
	if s.WebhookSecret == "" {
		return false
	}

	secret := []byte(s.WebhookSecret)
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok && hmac.Equal([]byte(token), secret) {
		return true
	}

	return hmac.Equal([]byte(bodySecret), secret)
}
