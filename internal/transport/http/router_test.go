package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"daily-quiz-bot/internal/domain"
)

func TestRankingEndpoint(t *testing.T) {
	hub := NewHub("general")
	coordinator := newTestCoordinator(t, hub)
	router := NewRouter(coordinator, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ranking", nil))
	var empty domain.Ranking
	if err := json.Unmarshal(rec.Body.Bytes(), &empty); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !empty.NoParticipants {
		t.Fatalf("expected no participants, got %+v", empty)
	}

	ctx := context.Background()
	if err := coordinator.RunDailyTransition(ctx, time.Date(2026, 10, 14, 15, 15, 0, 0, time.UTC)); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if _, err := coordinator.SubmitAnswer(ctx, coordinator.Current().ID(), "A", 2); err != nil {
		t.Fatalf("submit: %v", err)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ranking", nil))
	var ranking domain.Ranking
	if err := json.Unmarshal(rec.Body.Bytes(), &ranking); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ranking.Entries) != 1 || ranking.Entries[0].ParticipantID != "A" || ranking.Entries[0].Accuracy != 100 {
		t.Fatalf("unexpected ranking %+v", ranking)
	}
}

func TestTrialEndpoint(t *testing.T) {
	hub := NewHub("general")
	router := NewRouter(newTestCoordinator(t, hub), nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/trial", nil))
	if rec.Code != http.StatusCreated || !strings.Contains(rec.Body.String(), "sessionId") {
		t.Fatalf("expected 201 with session id, got %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/trial", strings.NewReader(`{"channelId":"random"}`)))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 for unknown channel, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	router := NewRouter(newTestCoordinator(t, NewHub("general")), nil, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected healthz response %d %q", rec.Code, rec.Body.String())
	}
}
