package cli

import (
	"context"

	"daily-quiz-bot/internal/app"
	"daily-quiz-bot/internal/config"
	"daily-quiz-bot/internal/infra/csvfile"
	"daily-quiz-bot/internal/infra/file"
	"daily-quiz-bot/internal/infra/memory"
	"daily-quiz-bot/internal/infra/postgres"
	redisstore "daily-quiz-bot/internal/infra/redis"
	"daily-quiz-bot/internal/infra/sqlite"
	"github.com/hashicorp/go-multierror"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// resources holds the connections shared by the bank, the score store and the
// fire guard. Close releases them in reverse order of opening.
type resources struct {
	cfg     config.Config
	redis   *redis.Client
	pool    *pgxpool.Pool
	closers []func() error
}

func openResources(ctx context.Context, cfg config.Config) (*resources, error) {
	r := &resources{cfg: cfg}

	if cfg.Redis.Addr != "" {
		r.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		r.closers = append(r.closers, r.redis.Close)
		if err := r.redis.Ping(ctx).Err(); err != nil {
			return r, errors.Wrapf(err, "ping redis %s", cfg.Redis.Addr)
		}
	}

	if cfg.Bank.Source == config.BankPostgres || cfg.Scores.Driver == config.ScoresPostgres {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return r, errors.Wrap(err, "connect postgres")
		}
		r.pool = pool
		r.closers = append(r.closers, func() error {
			pool.Close()
			return nil
		})
	}
	return r, nil
}

func (r *resources) questionBank(ctx context.Context) (*memory.QuestionBank, error) {
	var loader memory.QuestionLoader
	switch r.cfg.Bank.Source {
	case config.BankPostgres:
		loader = postgres.NewQuestionLoader(r.pool)
	default:
		loader = csvfile.NewQuestionLoader(r.cfg.Bank.Files...)
	}
	return memory.LoadQuestionBank(ctx, loader)
}

func (r *resources) scoreStore() (app.ScoreStore, error) {
	switch r.cfg.Scores.Driver {
	case config.ScoresMemory:
		return memory.NewScoreStore(), nil
	case config.ScoresSQLite:
		store, err := sqlite.NewScoreStore(r.cfg.Scores.Path)
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, store.Close)
		return store, nil
	case config.ScoresRedis:
		return redisstore.NewScoreStore(r.redis, r.cfg.Redis.KeyPrefix), nil
	case config.ScoresPostgres:
		return postgres.NewScoreStore(r.pool), nil
	default:
		store, err := file.NewScoreStore(r.cfg.Scores.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

// fireGuard records the last fired day where it survives a restart: next to the
// scores in Redis, otherwise in the schedule state file.
func (r *resources) fireGuard() (app.FireGuard, error) {
	switch {
	case r.cfg.Scores.Driver == config.ScoresRedis:
		return redisstore.NewFireGuard(r.redis, r.cfg.Redis.KeyPrefix, 0), nil
	case r.cfg.Schedule.StatePath != "":
		guard, err := file.NewFireGuard(r.cfg.Schedule.StatePath)
		if err != nil {
			return nil, err
		}
		return guard, nil
	default:
		return app.NewLocalFireGuard(), nil
	}
}

func (r *resources) Close() error {
	var result *multierror.Error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// closeInto closes r and keeps the close error in *err unless it already holds one.
func (r *resources) closeInto(err *error) {
	if cerr := r.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}
