package httpapi

import (
	"net/http"
	"time"

	"kaizen-backend-go/internal/db"
	"kaizen-backend-go/internal/models"
	"kaizen-backend-go/internal/services"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const metricsWriteWait = 10 * time.Second

func (s *Server) SystemMetrics(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, services.CaptureMetrics(s.poolHandle(), s.Config.MetricsDiskPath))
}

// SystemMetricsStream pushes a sample every interval for as long as the
// socket stays open. Browsers cannot set headers on a websocket handshake,
// so the token may also arrive as ?token=.
func (s *Server) SystemMetricsStream(w http.ResponseWriter, r *http.Request) {
	token, ok := services.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		writeServiceError(w, r, services.ErrUnauthenticated("not authenticated"))
		return
	}
	var user *models.User
	err := s.Store.Session(r.Context(), func(q db.Queryer) error {
		var err error
		user, err = services.ResolvePrincipal(r.Context(), q, s.Tokens, token)
		if err != nil {
			return err
		}
		return services.RequireAdmin(user)
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return s.originAllowed(r.Header.Get("Origin")) },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.Config.MetricsInterval())
	defer ticker.Stop()
	for {
		_ = conn.SetWriteDeadline(time.Now().Add(metricsWriteWait))
		if err := conn.WriteJSON(services.CaptureMetrics(s.poolHandle(), s.Config.MetricsDiskPath)); err != nil {
			logrus.WithError(err).WithField("user", user.Username).Debug("metrics stream closed")
			return
		}
		select {
		case <-ticker.C:
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) originAllowed(origin string) bool {
	if origin == "" {
		return true
	}
	for _, allowed := range s.Config.CorsOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
