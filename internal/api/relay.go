package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hashicorp-forge/switchboard/internal/server"
	"github.com/hashicorp-forge/switchboard/pkg/relay"
)

// SendMessageHandler sends a text message through the relay.
func SendMessageHandler(srv server.Server) http.Handler {
	return commandHandler(srv, relay.SendMessage{})
}

// DirectCallHandler places a call. Calls hang up automatically unless
// "auto_hang" is false.
func DirectCallHandler(srv server.Server) http.Handler {
	return commandHandler(srv, relay.PlaceCall{AutoHangup: true})
}

// MergeCallHandler bridges two phones into one call.
func MergeCallHandler(srv server.Server) http.Handler {
	return commandHandler(srv, relay.MergeCall{})
}

// UpdateCallHandler changes the state of a call, which in practice means
// hanging it up. The response echoes the caller's sid.
func UpdateCallHandler(srv server.Server) http.Handler {
	return commandHandler(srv, relay.UpdateCall{})
}

// SMSForwardHandler starts forwarding incoming SMS to another number.
func SMSForwardHandler(srv server.Server) http.Handler {
	return commandHandler(srv, relay.ForwardSMS{})
}

// SMSForwardStopHandler stops SMS forwarding.
func SMSForwardStopHandler(srv server.Server) http.Handler {
	return commandHandler(srv, relay.StopForwardSMS{})
}

// CheckInboxHandler asks the relay to check the inbox of a number.
func CheckInboxHandler(srv server.Server) http.Handler {
	return commandHandler(srv, relay.CheckInbox{})
}

// commandHandler decodes the credentials and a command of the same type as
// defaults from one flat JSON object, runs it and writes the result. Fields
// missing from the body keep their value from defaults.
func commandHandler[C relay.Command](srv server.Server, defaults C) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logArgs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"operation", defaults.Operation(),
		}

		body, err := readBody(r)
		if err != nil {
			srv.Logger.Warn("error reading request",
				append([]any{"error", err}, logArgs...)...)
			respondError(w, http.StatusBadRequest, errMsgInvalidBody)
			return
		}

		var creds relay.Credentials
		cmd := defaults
		if err := json.Unmarshal(body, &creds); err != nil {
			srv.Logger.Warn("error decoding credentials",
				append([]any{"error", err}, logArgs...)...)
			respondError(w, http.StatusBadRequest, errMsgInvalidBody)
			return
		}
		if err := json.Unmarshal(body, &cmd); err != nil {
			srv.Logger.Warn("error decoding command",
				append([]any{"error", err}, logArgs...)...)
			respondError(w, http.StatusBadRequest, errMsgInvalidBody)
			return
		}

		res, err := srv.Dispatcher.Execute(r.Context(), creds, cmd)
		if err != nil {
			respondRelayError(srv, w, r, err, logArgs)
			return
		}

		if err := respondJSON(w, http.StatusOK, res); err != nil {
			srv.Logger.Error("error encoding response",
				append([]any{"error", err, "sid", res.SID}, logArgs...)...)
		}
	})
}

// respondRelayError maps dispatcher errors to status codes. Unauthorized
// requests get 403, not the 500 earlier relay deployments returned.
func respondRelayError(
	srv server.Server,
	w http.ResponseWriter,
	r *http.Request,
	err error,
	logArgs []any,
) {
	logArgs = append([]any{"error", err}, logArgs...)

	switch {
	case relay.IsValidation(err):
		srv.Logger.Warn("missing required fields", logArgs...)
		respondError(w, http.StatusBadRequest, errMsgMissingFields)

	case errors.Is(err, relay.ErrUnauthorized):
		respondError(w, http.StatusForbidden, errMsgUnauthorized)

	case relay.IsTimeout(err):
		respondError(w, http.StatusInternalServerError, errMsgTimeout)

	case errors.Is(err, context.Canceled) && r.Context().Err() != nil:
		// Client went away; nobody is left to read a response.
		srv.Logger.Debug("request cancelled while waiting for relay", logArgs...)

	default:
		srv.Logger.Error("error running command", logArgs...)
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// HealthHandler reports that the process is up. It does not touch the store.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
