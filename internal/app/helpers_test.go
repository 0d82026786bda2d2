package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"daily-quiz-bot/internal/app"
	"daily-quiz-bot/internal/domain"
	"daily-quiz-bot/internal/infra/memory"
	"github.com/pkg/errors"
)

type posted struct {
	channelID string
	msg       domain.Message
}

type fakeChat struct {
	mu         sync.Mutex
	unresolved map[string]bool
	failPost   bool
	posts      []posted
}

func (c *fakeChat) ResolveChannel(_ context.Context, channelID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unresolved[channelID] {
		return errors.New("no such channel")
	}
	return nil
}

func (c *fakeChat) PostMessage(_ context.Context, channelID string, msg domain.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failPost {
		return errors.New("gateway unavailable")
	}
	c.posts = append(c.posts, posted{channelID: channelID, msg: msg})
	return nil
}

func (c *fakeChat) Mention(id string) string { return "<@" + id + ">" }

func (c *fakeChat) setUnresolved(channelID string, v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unresolved == nil {
		c.unresolved = map[string]bool{}
	}
	c.unresolved[channelID] = v
}

func (c *fakeChat) messages() []posted {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]posted, len(c.posts))
	copy(out, c.posts)
	return out
}

// gatedChat holds posts to one channel until release is closed.
type gatedChat struct {
	*fakeChat
	gated   string
	entered chan struct{}
	release chan struct{}
}

func (g *gatedChat) PostMessage(ctx context.Context, channelID string, msg domain.Message) error {
	if channelID == g.gated {
		select {
		case g.entered <- struct{}{}:
		default:
		}
		<-g.release
	}
	return g.fakeChat.PostMessage(ctx, channelID, msg)
}

type failingStore struct{}

func (failingStore) Load(context.Context) (map[string]domain.ScoreEntry, error) {
	return nil, errors.New("disk unreadable")
}

func (failingStore) Save(context.Context, map[string]domain.ScoreEntry) error {
	return errors.New("disk full")
}

type fixture struct {
	coordinator *app.Coordinator
	ledger      *app.ScoreLedger
	store       *memory.ScoreStore
	sessions    *memory.SessionStore
	chat        *fakeChat
}

func newFixture(t *testing.T, opts app.Options) *fixture {
	t.Helper()
	bank, err := newBank()
	if err != nil {
		t.Fatalf("bank: %v", err)
	}

	store := memory.NewScoreStore()
	ledger := app.NewScoreLedger(store, time.Second, nil)
	sessions := memory.NewSessionStore()
	chat := &fakeChat{}
	if opts.ChannelID == "" {
		opts.ChannelID = "general"
	}
	coordinator, err := app.NewCoordinator(bank, ledger, sessions, chat, opts)
	if err != nil {
		t.Fatalf("coordinator: %v", err)
	}
	return &fixture{coordinator: coordinator, ledger: ledger, store: store, sessions: sessions, chat: chat}
}

func newBank() (*memory.QuestionBank, error) {
	return memory.NewQuestionBank([]domain.QuestionRecord{testQuestion()})
}

func newSessions() *memory.SessionStore {
	return memory.NewSessionStore()
}

func testQuestion() domain.QuestionRecord {
	return domain.QuestionRecord{
		Text:          "Which is the third planet from the sun?",
		Choices:       [domain.ChoiceCount]string{"Mercury", "Venus", "Earth", "Mars"},
		CorrectChoice: 3,
		Explanation:   "Earth orbits third, after Mercury and Venus.",
	}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 15, 15, 0, 0, time.UTC)
}

func mustTransition(t *testing.T, c *app.Coordinator, now time.Time) {
	t.Helper()
	if err := c.RunDailyTransition(context.Background(), now); err != nil {
		t.Fatalf("transition at %s: %v", now.Format("2006-01-02"), err)
	}
}
