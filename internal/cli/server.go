package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"daily-quiz-bot/internal/app"
	"daily-quiz-bot/internal/config"
	"daily-quiz-bot/internal/infra/memory"
	"daily-quiz-bot/internal/transport/discord"
	transport "daily-quiz-bot/internal/transport/http"
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the bot.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz bot and its scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) (err error) {
	logger := newLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	res, err := openResources(ctx, cfg)
	defer func() {
		if cerr := res.Close(); cerr != nil {
			logger.Error("close resources", "error", cerr)
			if err == nil {
				err = cerr
			}
		}
	}()
	if err != nil {
		return err
	}

	bank, err := res.questionBank(ctx)
	if err != nil {
		return err
	}
	logger.Info("question bank loaded", "questions", bank.Len(), "source", cfg.Bank.Source)

	store, err := res.scoreStore()
	if err != nil {
		return err
	}
	ledger := app.NewScoreLedger(store, config.TTLDuration(cfg.Scores.Timeout, 5*time.Second), logger)
	// starting with an empty ledger would overwrite the stored month on the next answer
	if err := ledger.Load(ctx); err != nil {
		return err
	}

	var (
		chat    app.Messenger
		hub     *transport.Hub
		adapter *discord.Adapter
		dg      *discordgo.Session
	)
	switch cfg.Chat.Driver {
	case config.ChatDiscord:
		dg, err = discord.NewSession(cfg.ChatToken())
		if err != nil {
			return err
		}
		adapter = discord.NewAdapter(dg, logger)
		chat = adapter
	default:
		hub = transport.NewHub(cfg.Chat.ChannelID)
		chat = hub
	}

	coordinator, err := app.NewCoordinator(bank, ledger, memory.NewSessionStore(), chat, app.Options{
		ChannelID:      cfg.Chat.ChannelID,
		TrialRetention: cfg.Quiz.TrialRetention,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	var ws *transport.WSHandler
	if hub != nil {
		ws = transport.NewWSHandler(coordinator, hub, logger)
	}
	if adapter != nil {
		adapter.Bind(coordinator, cfg.Chat.TrialCommand)
		adapter.Register(dg)
		if err := dg.Open(); err != nil {
			return errors.Wrap(err, "open discord gateway")
		}
		res.closers = append(res.closers, dg.Close)
	}
	logger.Info("quiz bot configured",
		"chat", cfg.Chat.Driver,
		"channel", cfg.Chat.ChannelID,
		"scores", cfg.Scores.Driver,
		"participants", len(ledger.Snapshot()))

	guard, err := res.fireGuard()
	if err != nil {
		return err
	}
	scheduler := app.NewScheduler(app.ScheduleConfig{
		Hour:         cfg.Schedule.Hour,
		Minute:       cfg.Schedule.Minute,
		Location:     loc,
		PollInterval: config.TTLDuration(cfg.Schedule.PollInterval, time.Minute),
		CatchUp:      config.TTLDuration(cfg.Schedule.CatchUp, 5*time.Minute),
	}, coordinator, guard, logger)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(coordinator, ws, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := scheduler.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("starting http server", "addr", server.Addr, "chat", cfg.Chat.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
