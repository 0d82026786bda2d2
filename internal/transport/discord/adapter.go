package discord

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"daily-quiz-bot/internal/app"
	"daily-quiz-bot/internal/domain"
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

const (
	customIDPrefix = "quiz"
	handlerTimeout = 10 * time.Second
)

// API is the part of *discordgo.Session the adapter uses.
type API interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

// QuizService is implemented by app.Coordinator.
type QuizService interface {
	SubmitAnswer(ctx context.Context, sessionID, participantID string, choice int) (domain.AnswerResult, error)
	StartTrial(ctx context.Context, channelID string) (*app.Session, error)
}

// Adapter is the Discord chat surface: it posts quiz messages with four answer
// buttons and turns button presses and the trial command into service calls.
type Adapter struct {
	api          API
	logger       *slog.Logger
	service      QuizService
	trialCommand string
}

// NewSession creates a bot session with the intents needed to read the trial command.
func NewSession(token string) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, errors.Wrap(err, "create discord session")
	}
	dg.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	return dg, nil
}

func NewAdapter(api API, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{api: api, logger: logger}
}

// Bind attaches the service that handles inbound events. It must be called
// before the gateway connection is opened.
func (a *Adapter) Bind(service QuizService, trialCommand string) {
	a.service = service
	a.trialCommand = trialCommand
}

// Register adds the adapter's handlers to a live session.
func (a *Adapter) Register(dg *discordgo.Session) {
	dg.AddHandler(a.OnInteraction)
	dg.AddHandler(a.OnMessage)
}

func (a *Adapter) ResolveChannel(_ context.Context, channelID string) error {
	ch, err := a.api.Channel(channelID)
	if err != nil {
		return errors.Wrapf(err, "lookup channel %s", channelID)
	}
	if ch == nil {
		return errors.Errorf("channel %s not found", channelID)
	}
	return nil
}

func (a *Adapter) PostMessage(_ context.Context, channelID string, msg domain.Message) error {
	send := &discordgo.MessageSend{Content: msg.Text}
	if msg.Answers != nil {
		send.Components = answerComponents(*msg.Answers)
	}
	_, err := a.api.ChannelMessageSendComplex(channelID, send)
	return errors.Wrapf(err, "send to channel %s", channelID)
}

func (a *Adapter) Mention(participantID string) string {
	return "<@" + participantID + ">"
}

// OnInteraction handles answer button presses and replies ephemerally.
func (a *Adapter) OnInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	if a.service == nil || i.Type != discordgo.InteractionMessageComponent {
		return
	}
	sessionID, choice, ok := parseCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}
	participantID := interactionUserID(i)
	if participantID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	var text string
	res, err := a.service.SubmitAnswer(ctx, sessionID, participantID, choice)
	switch {
	case err == nil:
		text = app.AnswerReplyText(res)
	case errors.Is(err, domain.ErrSessionClosed), errors.Is(err, domain.ErrSessionNotFound):
		text = "This quiz is closed."
	default:
		a.logger.Error("submit answer", "session", sessionID, "participant", participantID, "error", err)
		text = "Could not record your answer."
	}

	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: text,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
	if err := a.api.InteractionRespond(i.Interaction, resp); err != nil {
		a.logger.Error("reply to interaction", "session", sessionID, "participant", participantID, "error", err)
	}
}

// OnMessage starts an unscored trial when a member sends the trial command.
func (a *Adapter) OnMessage(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if a.service == nil || m.Author == nil || m.Author.Bot {
		return
	}
	if strings.TrimSpace(m.Content) != a.trialCommand {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	if _, err := a.service.StartTrial(ctx, m.ChannelID); err != nil {
		a.logger.Error("start trial quiz", "channel", m.ChannelID, "error", err)
	}
}

func answerComponents(surface domain.AnswerSurface) []discordgo.MessageComponent {
	buttons := make([]discordgo.MessageComponent, 0, surface.Choices)
	for choice := 1; choice <= surface.Choices; choice++ {
		buttons = append(buttons, discordgo.Button{
			Label:    strconv.Itoa(choice),
			Style:    discordgo.PrimaryButton,
			CustomID: customID(surface.SessionID, choice),
		})
	}
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
}

func customID(sessionID string, choice int) string {
	return customIDPrefix + ":" + sessionID + ":" + strconv.Itoa(choice)
}

func parseCustomID(id string) (string, int, bool) {
	parts := strings.Split(id, ":")
	if len(parts) != 3 || parts[0] != customIDPrefix || parts[1] == "" {
		return "", 0, false
	}
	choice, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, false
	}
	return parts[1], choice, true
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
