package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type trialRequest struct {
	ChannelID string `json:"channelId"`
}

// NewRouter wires the HTTP surface. ws may be nil when another chat driver is in use.
func NewRouter(service QuizService, ws *WSHandler, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if ws != nil {
		r.Get("/ws", ws.ServeWS)
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/ranking", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, service.Ranking())
		})
		api.Post("/trial", func(w http.ResponseWriter, r *http.Request) {
			var req trialRequest
			if r.ContentLength != 0 {
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid body"})
					return
				}
			}
			session, err := service.StartTrial(r.Context(), req.ChannelID)
			if err != nil {
				logger.Error("start trial quiz", "channel", req.ChannelID, "error", err)
				writeJSON(w, http.StatusBadGateway, errorPayload{Message: err.Error()})
				return
			}
			writeJSON(w, http.StatusCreated, map[string]string{"sessionId": session.ID()})
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
