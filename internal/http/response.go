package httpapi

import (
	"encoding/json"
	"net/http"

	"kaizen-backend-go/internal/services"

	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Detail string            `json:"detail"`
	Errors map[string]string `json:"errors,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, detail string) {
	WriteJSON(w, status, ErrorResponse{Detail: detail})
}

// writeServiceError renders err through services.AsServiceError. Server
// failures are logged with the request route; abandoned requests only at
// debug level.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	serr := services.AsServiceError(err)
	entry := logrus.WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	})
	switch {
	case serr.Kind == services.KindClientClosed:
		entry.Debug("client closed request")
	case serr.Status >= http.StatusInternalServerError:
		entry.Error("request failed")
	}
	if serr.Kind == services.KindUnauthenticated {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	WriteJSON(w, serr.Status, ErrorResponse{Detail: serr.Message, Errors: serr.Fields})
}
