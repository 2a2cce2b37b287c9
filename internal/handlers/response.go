package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shopwise/checkout/internal/apperr"
	"github.com/sirupsen/logrus"
)

// envelope is a JSON response body. Every body carries "success".
type envelope map[string]interface{}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *logrus.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.WithError(err).Error("failed to encode JSON response")
	}
}

// WriteSuccess writes body with success set to true.
func WriteSuccess(w http.ResponseWriter, status int, body envelope, logger *logrus.Logger) {
	if body == nil {
		body = envelope{}
	}
	body["success"] = true
	WriteJSON(w, status, body, logger)
}

// WriteError writes err as {success: false, message, statusCode}. Internal
// causes are logged, never sent.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *logrus.Logger) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)

	entry := logger.WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"kind":   kind,
	})
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}

	WriteJSON(w, status, envelope{
		"success":    false,
		"message":    apperr.PublicMessage(err),
		"statusCode": status,
	}, logger)
}
