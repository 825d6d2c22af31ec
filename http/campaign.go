package http

import (
	"encoding/json"
	"net/http"

	"github.com/dreamriver/herald"
)

type sendCampaignRequest struct {
	Slug   string `json:"slug"`
	Secret string `json:"secret"`
}

func (s *Server) sendCampaignHandler(w http.ResponseWriter, r *http.Request) error {
	var req *sendCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req == nil {
		return NewError(err, http.StatusBadRequest, "Invalid request body.")
	}

	if !s.authorized(r, req.Secret) {
		return NewError(nil, http.StatusUnauthorized, "Invalid or missing webhook secret.")
	}

	if req.Slug == "" {
		return NewError(nil, http.StatusBadRequest, "slug is required.")
	}

	result, err := s.CampaignSender.Send(r.Context(), req.Slug)
	if err != nil {
		switch herald.ErrorCode(err) {
		case herald.ErrNotFound:
			return NewError(err, http.StatusNotFound, "No post found with slug: "+req.Slug)
		case herald.ErrDispatchFailed:
			return NewError(err, http.StatusInternalServerError, "Failed to dispatch campaign emails.")
		default:
			return err
		}
	}

	writeJSONResponse(w, http.StatusOK, result)

	return nil
}
