package http

import (
	"context"
	"sync"

	"daily-quiz-bot/internal/domain"
	"github.com/pkg/errors"
)

// ErrUnknownChannel is returned for channels the hub was not configured with.
var ErrUnknownChannel = errors.New("unknown channel")

const clientBuffer = 16

// Hub is a websocket-backed chat surface: each configured channel fans posted
// messages out to the clients connected to it.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[*client]struct{}
}

type client struct {
	participantID string
	send          chan outboundMessage[any]
}

func NewHub(channelIDs ...string) *Hub {
	h := &Hub{channels: make(map[string]map[*client]struct{}, len(channelIDs))}
	for _, id := range channelIDs {
		h.channels[id] = make(map[*client]struct{})
	}
	return h
}

func (h *Hub) ResolveChannel(_ context.Context, channelID string) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.channels[channelID]; !ok {
		return errors.Wrapf(ErrUnknownChannel, "%q", channelID)
	}
	return nil
}

// PostMessage broadcasts to every client in channelID. Slow clients lose their
// oldest queued message rather than blocking the broadcast.
func (h *Hub) PostMessage(ctx context.Context, channelID string, msg domain.Message) error {
	if err := h.ResolveChannel(ctx, channelID); err != nil {
		return err
	}
	out := outboundMessage[any]{Type: "message", Payload: newChannelMessage(channelID, msg)}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.channels[channelID] {
		select {
		case c.send <- out:
		default:
			select {
			case <-c.send:
			default:
			}
			select {
			case c.send <- out:
			default:
			}
		}
	}
	return nil
}

func (h *Hub) Mention(participantID string) string {
	return "@" + participantID
}

// Members returns the number of clients connected to channelID.
func (h *Hub) Members(channelID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channelID])
}

func (h *Hub) join(channelID string, c *client) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.channels[channelID]
	if !ok {
		return errors.Wrapf(ErrUnknownChannel, "%q", channelID)
	}
	members[c] = struct{}{}
	return nil
}

func (h *Hub) leave(channelID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.channels[channelID], c)
}

type channelMessage struct {
	ChannelID string         `json:"channelId"`
	Text      string         `json:"text"`
	Answers   *answerSurface `json:"answers,omitempty"`
}

type answerSurface struct {
	SessionID string `json:"sessionId"`
	Choices   []int  `json:"choices"`
}

func newChannelMessage(channelID string, msg domain.Message) channelMessage {
	out := channelMessage{ChannelID: channelID, Text: msg.Text}
	if msg.Answers != nil {
		choices := make([]int, msg.Answers.Choices)
		for i := range choices {
			choices[i] = i + 1
		}
		out.Answers = &answerSurface{SessionID: msg.Answers.SessionID, Choices: choices}
	}
	return out
}
