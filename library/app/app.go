package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/library-circulation/library/config"
	"github.com/Astemirdum/library-circulation/library/internal/handler"
	"github.com/Astemirdum/library-circulation/library/internal/mirror"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	"github.com/Astemirdum/library-circulation/library/internal/repository"
	"github.com/Astemirdum/library-circulation/library/internal/server"
	"github.com/Astemirdum/library-circulation/library/internal/service"
	"github.com/Astemirdum/library-circulation/library/migrations"
	"github.com/Astemirdum/library-circulation/pkg/auth"
	"github.com/Astemirdum/library-circulation/pkg/kafka"
	"github.com/Astemirdum/library-circulation/pkg/logger"
	"github.com/Astemirdum/library-circulation/pkg/postgres"
	"github.com/Astemirdum/library-circulation/pkg/validate"
)

const shutdownTimeout = 5 * time.Second

// Run serves the HTTP API until SIGINT or SIGTERM.
func Run(cfg *config.Config) error {
	if cfg.Auth.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	log := logger.NewLogger(cfg.Log, "library")
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return errors.Wrap(err, "db init")
	}
	defer db.Close()

	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return errors.Wrap(err, "repo")
	}

	target, closeTarget, err := newMirror(cfg, log)
	if err != nil {
		return errors.Wrap(err, "search mirror")
	}
	defer closeTarget()
	dispatcher := mirror.NewDispatcher(target, log)

	tokens := auth.NewTokenManager(cfg.Auth)
	svc := service.NewService(repo, dispatcher, tokens, log)
	h := handler.New(svc, tokens, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server start ON: ", zap.String("addr", srv.Addr()), zap.String("search", string(cfg.Search.Mode)))
		return srv.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Debug("Graceful shutdown")

		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Stop(closeCtx); err != nil {
			log.Error("srv.Stop", zap.Error(err))
		}
		if err := dispatcher.Close(closeCtx); err != nil {
			log.Warn("mirror notifications dropped", zap.Error(err))
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Graceful shutdown finished")
	return nil
}

// newMirror picks the search mirror back-end for the configured mode.
func newMirror(cfg *config.Config, log *zap.Logger) (mirror.Mirror, func(), error) {
	nop := func() {}
	switch cfg.Search.Mode {
	case mirror.ModeDirect:
		a, err := mirror.NewAlgolia(cfg.Search.Algolia, cfg.Search.Breaker)
		if err != nil {
			return nil, nop, err
		}
		return a, nop, nil
	case mirror.ModeKafka:
		if err := kafka.CreateTopics(cfg.Kafka); err != nil {
			log.Warn("kafka.CreateTopics", zap.Error(err))
		}
		producer, err := kafka.NewSyncProducer(cfg.Kafka)
		if err != nil {
			return nil, nop, errors.Wrap(err, "kafka.NewSyncProducer")
		}
		p := mirror.NewPublisher(producer, cfg.Kafka.Topic())
		return p, func() {
			if err := p.Close(); err != nil {
				log.Warn("producer close", zap.Error(err))
			}
		}, nil
	default:
		return mirror.Noop(), nop, nil
	}
}

// RunSearchSync applies book events from Kafka to Algolia until SIGINT or SIGTERM.
func RunSearchSync(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "search-sync")
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	index, err := mirror.NewAlgolia(cfg.Search.Algolia, cfg.Search.Breaker)
	if err != nil {
		return err
	}
	if err := kafka.CreateTopics(cfg.Kafka); err != nil {
		log.Warn("kafka.CreateTopics", zap.Error(err))
	}
	group, err := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Group())
	if err != nil {
		return errors.Wrap(err, "kafka.NewConsumer")
	}
	defer group.Close()

	log.Info("consuming", zap.String("topic", cfg.Kafka.Topic()), zap.String("group", cfg.Kafka.Group()))
	return kafka.Consume(ctx, log, group, mirror.NewConsumer(index, log), cfg.Kafka.Topic())
}

// Migrate runs a goose command against the configured database.
func Migrate(cfg *config.Config, command string) error {
	ctx := context.Background()
	pool, err := postgres.Connect(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		return err
	}
	defer pool.Close()
	return postgres.Migrate(ctx, pool, migrations.MigrationFiles, command)
}

// AddUser creates a staff account, migrating the schema first when needed,
// and returns the new user id.
func AddUser(cfg *config.Config, username, password string, role auth.Role) (int64, error) {
	req := model.CreateUserRequest{Username: username, Password: password, Role: role}
	if err := validate.NewCustomValidator().Validate(req); err != nil {
		return 0, err
	}
	log := logger.NewLogger(cfg.Log, "library")
	ctx := context.Background()

	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return 0, errors.Wrap(err, "db init")
	}
	defer db.Close()
	svc, err := newOfflineService(db, cfg, log)
	if err != nil {
		return 0, err
	}
	u, err := svc.CreateUser(ctx, req)
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

// newOfflineService is a service for CLI commands; it never touches the search mirror.
func newOfflineService(db *pgxpool.Pool, cfg *config.Config, log *zap.Logger) (*service.Service, error) {
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return nil, err
	}
	return service.NewService(repo, mirror.NewDispatcher(mirror.Noop(), log), auth.NewTokenManager(cfg.Auth), log), nil
}
