package http

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/hlog"

	"github.com/dreamriver/herald"
)

const (
	subscribedMessage   = "Thanks for subscribing! You'll receive an email whenever a new post is published."
	invalidEmailMessage = "Please enter a valid email address."
	nameTooLongMessage  = "Name must be 100 characters or fewer."

	maxNameLength  = 100
	maxEmailLength = 254

	subscriptionSource = "website"
)

var emailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func (s *Server) subscriptionsHandler(w http.ResponseWriter, r *http.Request) error {
	var (
		req  *herald.SubscriptionRequest
		resp = new(herald.SubscriptionResponse)
	)
	// A body of literal null decodes without error and leaves req nil.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req == nil {
		return NewError(err, http.StatusBadRequest, "Invalid request body.")
	}

	logger := hlog.FromRequest(r)

	// Bots fill every field. Pretend it worked and move on.
	if req.Honeypot != "" {
		logger.Info().Msg("Honeypot field filled, dropping request")
		resp.Message = subscribedMessage
		writeJSONResponse(w, http.StatusOK, resp)
		return nil
	}

	email := herald.NormalizeEmail(req.Email)
	if email == "" || len(email) > maxEmailLength || !emailRegexp.MatchString(email) {
		return NewError(nil, http.StatusBadRequest, invalidEmailMessage)
	}
	if len(req.Name) > maxNameLength {
		return NewError(nil, http.StatusBadRequest, nameTooLongMessage)
	}

	outcome, err := s.SubscriberService.Add(email, req.Name, subscriptionSource)
	if err != nil {
		return err
	}
	logger.Info().Str("outcome", outcome.String()).Msg("Processed subscription")

	if outcome != herald.AlreadySubscribed && s.WelcomeMailer != nil {
		if err := s.WelcomeMailer.Send(r.Context(), email, req.Name); err != nil {
			logger.Error().Err(err).Msg("Failed to send welcome email")
			sentry.CaptureException(err)
		}
	}

	// The message does not vary by outcome, so the endpoint cannot be used
	// to probe which addresses are on the list.
	resp.Message = subscribedMessage
	writeJSONResponse(w, http.StatusOK, resp)

	return nil
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, response interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	//nolint:errcheck
	json.NewEncoder(w).Encode(response)
}
