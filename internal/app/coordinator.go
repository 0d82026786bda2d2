package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"daily-quiz-bot/internal/domain"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// QuestionBank yields questions uniformly at random.
type QuestionBank interface {
	Random() domain.QuestionRecord
	Len() int
}

// SessionRepository abstracts where answerable sessions are kept so answer
// events can be routed back by session ID.
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// Messenger is the chat surface the coordinator talks to.
type Messenger interface {
	ResolveChannel(ctx context.Context, channelID string) error
	PostMessage(ctx context.Context, channelID string, msg domain.Message) error
	Mention(participantID string) string
}

// Options configures a Coordinator.
type Options struct {
	ChannelID      string
	TrialRetention int
	Logger         *slog.Logger
	Now            func() time.Time
	NewID          func() string
}

// Coordinator owns the quiz lifecycle: the score ledger, the current scored
// session and the retained trial sessions.
type Coordinator struct {
	bank      QuestionBank
	ledger    *ScoreLedger
	sessions  SessionRepository
	chat      Messenger
	channelID string
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string

	mu             sync.Mutex
	current        *Session
	trials         []string
	trialRetention int
}

func NewCoordinator(bank QuestionBank, ledger *ScoreLedger, sessions SessionRepository, chat Messenger, opts Options) (*Coordinator, error) {
	if bank == nil || bank.Len() == 0 {
		return nil, domain.ErrEmptyQuestionBank
	}
	c := &Coordinator{
		bank:           bank,
		ledger:         ledger,
		sessions:       sessions,
		chat:           chat,
		channelID:      opts.ChannelID,
		logger:         opts.Logger,
		now:            opts.Now,
		newID:          opts.NewID,
		trialRetention: opts.TrialRetention,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	if c.trialRetention <= 0 {
		c.trialRetention = 20
	}
	return c, nil
}

// RunDailyTransition reveals yesterday's question, ranks and resets the ledger
// on the last day of the month, then opens today's scored session. now must be
// in the schedule's timezone.
func (c *Coordinator) RunDailyTransition(ctx context.Context, now time.Time) error {
	if err := c.chat.ResolveChannel(ctx, c.channelID); err != nil {
		return errors.Wrapf(domain.ErrChannelUnresolved, "channel %s: %v", c.channelID, err)
	}

	var outbox []outgoing

	c.mu.Lock()
	previous := c.current
	if previous != nil {
		previous.Close()
		outbox = append(outbox, outgoing{kind: "reveal", msg: domain.Message{Text: RevealText(previous.Question())}})
		c.logger.Info("daily quiz closed",
			"session", previous.ID(),
			"answers", previous.AnsweredCount(),
			"open_for", now.Sub(previous.OpenedAt()).Round(time.Minute).String())
	}

	if IsLastDayOfMonth(now) {
		ranking := Rank(c.ledger.Snapshot())
		outbox = append(outbox, outgoing{kind: "ranking", msg: domain.Message{Text: RankingText(ranking, c.chat.Mention)}})
		c.ledger.Reset(ctx)
		c.logger.Info("monthly ranking computed, scores reset", "participants", len(ranking.Entries))
	}

	session := NewSession(c.newID(), c.bank.Random(), true, now)
	c.sessions.Put(session)
	c.current = session
	if previous != nil {
		c.sessions.Delete(previous.ID())
	}
	outbox = append(outbox, outgoing{kind: "prompt", msg: PromptMessage(session)})
	c.mu.Unlock()

	// delivery happens after c.mu is released
	for _, out := range outbox {
		c.post(ctx, out.msg, out.kind)
	}
	c.logger.Info("daily quiz opened", "session", session.ID(), "channel", c.channelID)
	return nil
}

type outgoing struct {
	kind string
	msg  domain.Message
}

// StartTrial posts an unscored quiz to channelID. It does not touch the current
// scored session.
func (c *Coordinator) StartTrial(ctx context.Context, channelID string) (*Session, error) {
	if channelID == "" {
		channelID = c.channelID
	}
	if err := c.chat.ResolveChannel(ctx, channelID); err != nil {
		return nil, errors.Wrapf(domain.ErrChannelUnresolved, "channel %s: %v", channelID, err)
	}

	session := NewSession(c.newID(), c.bank.Random(), false, c.now())
	c.sessions.Put(session)

	c.mu.Lock()
	c.trials = append(c.trials, session.ID())
	for len(c.trials) > c.trialRetention {
		evicted := c.trials[0]
		c.trials = c.trials[1:]
		if old, ok := c.sessions.Get(evicted); ok {
			old.Close()
		}
		c.sessions.Delete(evicted)
	}
	c.mu.Unlock()

	if err := c.chat.PostMessage(ctx, channelID, PromptMessage(session)); err != nil {
		c.logger.Error("post trial quiz", "channel", channelID, "session", session.ID(), "error", err)
		return session, errors.Wrap(err, "post trial quiz")
	}
	return session, nil
}

// SubmitAnswer applies a participant's choice to a session.
func (c *Coordinator) SubmitAnswer(ctx context.Context, sessionID, participantID string, choice int) (domain.AnswerResult, error) {
	if !domain.ValidChoice(choice) {
		return domain.AnswerResult{}, errors.Wrapf(domain.ErrInvalidChoice, "choice %d", choice)
	}
	session, ok := c.sessions.Get(sessionID)
	if !ok {
		return domain.AnswerResult{}, domain.ErrSessionNotFound
	}
	return session.answer(participantID, choice, func(correct bool) {
		c.ledger.Record(ctx, participantID, correct)
	})
}

// Ranking returns the current leaderboard without resetting anything.
func (c *Coordinator) Ranking() domain.Ranking {
	return Rank(c.ledger.Snapshot())
}

// Current returns the open scored session, nil before the first transition.
func (c *Coordinator) Current() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Coordinator) post(ctx context.Context, msg domain.Message, kind string) {
	if err := c.chat.PostMessage(ctx, c.channelID, msg); err != nil {
		c.logger.Error("post message", "kind", kind, "channel", c.channelID, "error", err)
	}
}
