package discord

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"daily-quiz-bot/internal/app"
	"daily-quiz-bot/internal/domain"
	"daily-quiz-bot/internal/infra/memory"
	"github.com/bwmarrin/discordgo"
)

type fakeAPI struct {
	mu        sync.Mutex
	channels  map[string]bool
	sent      []*discordgo.MessageSend
	responses []*discordgo.InteractionResponse
}

func (f *fakeAPI) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if !f.channels[channelID] {
		return nil, errors.New("HTTP 404 Not Found")
	}
	return &discordgo.Channel{ID: channelID}, nil
}

func (f *fakeAPI) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, data)
	return &discordgo.Message{ChannelID: channelID, Content: data.Content}, nil
}

func (f *fakeAPI) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func TestButtonPressRepliesEphemerally(t *testing.T) {
	api := &fakeAPI{channels: map[string]bool{"913": true}}
	adapter := NewAdapter(api, nil)
	coordinator := newCoordinator(t, adapter)
	adapter.Bind(coordinator, "!test")

	if err := coordinator.RunDailyTransition(context.Background(), time.Date(2026, 10, 14, 15, 15, 0, 0, time.UTC)); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if len(api.sent) != 1 {
		t.Fatalf("expected prompt sent, got %d", len(api.sent))
	}
	row := api.sent[0].Components[0].(discordgo.ActionsRow)
	if len(row.Components) != 4 {
		t.Fatalf("expected four buttons, got %d", len(row.Components))
	}
	correct := row.Components[2].(discordgo.Button)
	if correct.Label != "3" {
		t.Fatalf("unexpected button label %q", correct.Label)
	}

	press(adapter, correct.CustomID, "u1")
	press(adapter, correct.CustomID, "u1")

	if len(api.responses) != 2 {
		t.Fatalf("expected two replies, got %d", len(api.responses))
	}
	first := api.responses[0].Data
	if first.Flags != discordgo.MessageFlagsEphemeral || !strings.Contains(first.Content, "Correct") {
		t.Fatalf("unexpected first reply %+v", first)
	}
	if !strings.Contains(api.responses[1].Data.Content, "already answered") {
		t.Fatalf("expected already answered reply, got %q", api.responses[1].Data.Content)
	}
	if got := coordinator.Ranking(); len(got.Entries) != 1 || got.Entries[0].Correct != 1 {
		t.Fatalf("expected one scored answer, got %+v", got)
	}
}

func TestTrialCommandPostsUnscoredQuiz(t *testing.T) {
	api := &fakeAPI{channels: map[string]bool{"913": true, "lab": true}}
	adapter := NewAdapter(api, nil)
	coordinator := newCoordinator(t, adapter)
	adapter.Bind(coordinator, "!test")

	adapter.OnMessage(nil, &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: "lab", Content: "!test", Author: &discordgo.User{ID: "u1"},
	}})
	adapter.OnMessage(nil, &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: "lab", Content: "!test", Author: &discordgo.User{ID: "bot", Bot: true},
	}})
	adapter.OnMessage(nil, &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: "lab", Content: "hello", Author: &discordgo.User{ID: "u1"},
	}})

	if len(api.sent) != 1 || !strings.Contains(api.sent[0].Content, "Test Quiz") {
		t.Fatalf("expected exactly one trial prompt, got %+v", api.sent)
	}
}

func TestResolveChannel(t *testing.T) {
	adapter := NewAdapter(&fakeAPI{channels: map[string]bool{"913": true}}, nil)
	if err := adapter.ResolveChannel(context.Background(), "913"); err != nil {
		t.Fatalf("expected channel resolved: %v", err)
	}
	if err := adapter.ResolveChannel(context.Background(), "000"); err == nil {
		t.Fatalf("expected unresolved channel")
	}
	if got := adapter.Mention("42"); got != "<@42>" {
		t.Fatalf("unexpected mention %q", got)
	}
}

func TestParseCustomID(t *testing.T) {
	id := customID("abc-123", 4)
	sessionID, choice, ok := parseCustomID(id)
	if !ok || sessionID != "abc-123" || choice != 4 {
		t.Fatalf("round trip failed: %q -> %q %d %v", id, sessionID, choice, ok)
	}
	for _, bad := range []string{"", "quiz", "quiz::1", "other:abc:1", "quiz:abc:x", "quiz:a:b:1"} {
		if _, _, ok := parseCustomID(bad); ok {
			t.Fatalf("expected %q rejected", bad)
		}
	}
}

func press(adapter *Adapter, customID, userID string) {
	adapter.OnInteraction(nil, &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:   discordgo.InteractionMessageComponent,
		Data:   discordgo.MessageComponentInteractionData{CustomID: customID},
		Member: &discordgo.Member{User: &discordgo.User{ID: userID}},
	}})
}

func newCoordinator(t *testing.T, chat app.Messenger) *app.Coordinator {
	t.Helper()
	bank, err := memory.NewQuestionBank([]domain.QuestionRecord{{
		Text:          "Which planet is known as the red planet?",
		Choices:       [domain.ChoiceCount]string{"Venus", "Jupiter", "Mars", "Saturn"},
		CorrectChoice: 3,
		Explanation:   "Iron oxide gives Mars its colour.",
	}})
	if err != nil {
		t.Fatalf("bank: %v", err)
	}
	coordinator, err := app.NewCoordinator(bank, app.NewScoreLedger(nil, time.Second, nil), memory.NewSessionStore(), chat, app.Options{ChannelID: "913"})
	if err != nil {
		t.Fatalf("coordinator: %v", err)
	}
	return coordinator
}
