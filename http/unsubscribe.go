package http

import (
	"encoding/json"
	"net/http"

	"github.com/dreamriver/herald"
	"github.com/dreamriver/herald/pkg/hash"
)

const (
	unsubscribedMessage       = "You have been unsubscribed."
	invalidUnsubscribeMessage = "Either email or hash is invalid."
)

func (s *Server) unsubscribeHandler(w http.ResponseWriter, r *http.Request) error {
	var response struct {
		Message string `json:"message"`
	}

	var email string
	switch r.Method {
	case http.MethodGet:
		query := r.URL.Query()
		email = query.Get("email")
		hashValue := query.Get("hash")

		if !hash.Verify(email, s.HMACSecret, hashValue) {
			response.Message = invalidUnsubscribeMessage
			writeJSONResponse(w, http.StatusBadRequest, response)
			return nil
		}
	default:
		var req struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return NewError(err, http.StatusBadRequest, "Invalid request body.")
		}
		email = req.Email
	}

	if err := s.SubscriberService.Unsubscribe(email); err != nil {
		// An address that was never subscribed gets the same answer as one
		// that was, so the endpoint leaks nothing about the list.
		if herald.ErrorCode(err) != herald.ErrNotFound {
			return err
		}
	}

	response.Message = unsubscribedMessage
	writeJSONResponse(w, http.StatusOK, response)

	return nil
}
