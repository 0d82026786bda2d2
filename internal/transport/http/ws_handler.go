package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"daily-quiz-bot/internal/app"
	"daily-quiz-bot/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// QuizService is the subset of the coordinator the transports need.
type QuizService interface {
	SubmitAnswer(ctx context.Context, sessionID, participantID string, choice int) (domain.AnswerResult, error)
	StartTrial(ctx context.Context, channelID string) (*app.Session, error)
	Ranking() domain.Ranking
}

type WSHandler struct {
	service  QuizService
	hub      *Hub
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service QuizService, hub *Hub, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		service: service,
		hub:     hub,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	SessionID string `json:"sessionId"`
	Choice    int    `json:"choice"`
}

type answerResult struct {
	SessionID string `json:"sessionId"`
	Outcome   string `json:"outcome"`
	Text      string `json:"text"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and joins the client to a channel.
// Inbound "answer" messages are answered privately on the same connection;
// "trial" posts an unscored quiz to the channel.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	channelID := r.URL.Query().Get("channel")
	participantID := r.URL.Query().Get("userId")
	if channelID == "" || participantID == "" {
		http.Error(w, "missing channel or userId", http.StatusBadRequest)
		return
	}
	if err := h.hub.ResolveChannel(r.Context(), channelID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	c := &client{participantID: participantID, send: make(chan outboundMessage[any], clientBuffer)}
	if err := h.hub.join(channelID, c); err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.hub.leave(channelID, c)

	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case msg := <-c.send:
				if err := conn.WriteJSON(msg); err != nil {
					h.logger.Warn("ws write error", "participant", participantID, "error", err)
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	reply := func(msg outboundMessage[any]) {
		select {
		case c.send <- msg:
		case <-writerDone:
		}
	}
	reply(outboundMessage[any]{Type: "joined", Payload: map[string]string{"channelId": channelID, "userId": participantID}})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				reply(errorMessage("invalid answer payload"))
				continue
			}
			res, err := h.service.SubmitAnswer(r.Context(), payload.SessionID, participantID, payload.Choice)
			if err != nil {
				reply(errorMessage(answerErrorText(err)))
				continue
			}
			reply(outboundMessage[any]{Type: "answerResult", Payload: answerResult{
				SessionID: res.SessionID,
				Outcome:   res.Outcome.String(),
				Text:      app.AnswerReplyText(res),
			}})
		case "trial":
			if _, err := h.service.StartTrial(r.Context(), channelID); err != nil {
				h.logger.Error("start trial quiz", "channel", channelID, "error", err)
				reply(errorMessage("could not start a trial quiz"))
			}
		default:
			reply(errorMessage("unsupported message type"))
		}
	}

	close(closeSignals)
	<-writerDone
}

func errorMessage(text string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: text}}
}

func answerErrorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidChoice):
		return "choice must be between 1 and 4"
	case errors.Is(err, domain.ErrSessionClosed):
		return "this quiz is closed"
	case errors.Is(err, domain.ErrSessionNotFound):
		return "this quiz is no longer available"
	default:
		return "could not record your answer"
	}
}
