package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skillxintell/internal/config"
	"skillxintell/internal/database"
	"skillxintell/internal/database/migration"
	dbpostgres "skillxintell/internal/database/postgres"
	"skillxintell/internal/database/seeder"
	"skillxintell/internal/evidence"
	"skillxintell/internal/infrastructure/broker"
	"skillxintell/internal/infrastructure/cache"
	"skillxintell/internal/infrastructure/mailer"
	"skillxintell/internal/infrastructure/persistence/postgres"
	"skillxintell/internal/pkg/jwt"
	"skillxintell/internal/pkg/logger"
	"skillxintell/internal/pkg/metrics"
	"skillxintell/internal/pkg/validator"
	"skillxintell/internal/repository"
	"skillxintell/internal/usecase"
	"skillxintell/internal/usecase/verification"
	"skillxintell/internal/ws"
	"skillxintell/migrations"
)

// Container owns every long-lived dependency of the API process.
type Container struct {
	Config  config.Config
	Logger  logger.Logger
	DB      database.DB
	Metrics *metrics.Metrics

	Cache     *cache.Redis
	Publisher *broker.Publisher
	Mailer    *mailer.Mailer
	Hub       *ws.Hub
	Previewer *evidence.Previewer
	JWT       jwt.Service
	Validator *validator.Validator

	Users         *postgres.UserRepository
	Skills        *repository.PostgresSkillRepository
	Mentors       *repository.PostgresMentorRepository
	Verifications *repository.PostgresVerificationRepository

	AuthUsecase   *usecase.Auth
	UserUsecase   *usecase.User
	SkillUsecase  *usecase.Skill
	MentorUsecase *usecase.Mentor
	Verification  *verification.Service

	cancel context.CancelFunc
}

// NewContainer connects to the database, applies migrations and seeders as
// configured, and builds the service graph. Background workers run until
// Close.
func NewContainer(cfg config.Config, log logger.Logger) (*Container, error) {
	if log == nil {
		log = logger.New(logger.Config{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := Prepare(ctx, cfg.Database, db, log); err != nil {
		_ = db.Close()
		return nil, err
	}

	runCtx, stop := context.WithCancel(context.Background())
	c := &Container{
		Config:    cfg,
		Logger:    log,
		DB:        db,
		Metrics:   metrics.New(),
		Validator: validator.New(),
		cancel:    stop,
	}

	c.JWT = jwt.NewHMACService(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessExpiresIn, cfg.JWT.RefreshExpiresIn)
	c.Cache = cache.NewRedis(cfg.Redis, log.With("component", "cache"))
	c.Mailer = mailer.New(cfg.SMTP, log.With("component", "mailer"))

	c.Publisher, err = broker.NewPublisher(ctx, cfg.RabbitMQ, log.With("component", "broker"))
	if err != nil {
		stop()
		_ = c.Cache.Close()
		_ = db.Close()
		return nil, err
	}

	c.Hub = ws.NewHub(log.With("component", "ws"), c.Metrics)
	go c.Hub.Run(runCtx)

	c.Users = postgres.NewUserRepository(db)
	c.Skills = repository.NewPostgresSkillRepository(db)
	c.Mentors = repository.NewPostgresMentorRepository(db)
	c.Verifications = repository.NewPostgresVerificationRepository(db)

	c.Previewer = evidence.NewPreviewer(cfg.Evidence, c.Verifications, c.Metrics, log.With("component", "evidence"))
	c.Previewer.Start(runCtx)

	c.AuthUsecase = usecase.NewAuthUsecase(c.Users, c.Mentors, c.JWT, c.Metrics)
	c.UserUsecase = usecase.NewUserUsecase(c.Users)
	c.SkillUsecase = usecase.NewSkillUsecase(c.Skills)
	c.MentorUsecase = usecase.NewMentorUsecase(c.Mentors, c.Users, c.Cache, log.With("component", "mentors"))

	deps := verification.Deps{
		Requests:  c.Verifications,
		Skills:    c.Skills,
		Mentors:   c.Mentors,
		Users:     c.Users,
		Notifiers: c.notifiers(),
		Metrics:   c.Metrics,
		Logger:    log.With("component", "verification"),
	}
	if c.Previewer != nil {
		deps.Evidence = c.Previewer
	}
	c.Verification = verification.NewService(deps)

	return c, nil
}

// Prepare applies pending migrations and, when enabled, the demo seeders.
func Prepare(ctx context.Context, cfg config.DatabaseConfig, db database.DB, log logger.Logger) error {
	if cfg.RunMigrations {
		if _, err := Migrate(ctx, db, log); err != nil {
			return err
		}
	}
	if cfg.RunSeeders {
		if err := Seed(ctx, db, log); err != nil {
			return err
		}
	}
	return nil
}

func Migrate(ctx context.Context, db database.DB, log logger.Logger) (int, error) {
	if db == nil {
		return 0, database.ErrNilDB
	}
	sqlDB := db.SQLDB()
	if sqlDB == nil {
		return 0, errors.New("migrations need a database/sql handle")
	}
	n, err := migration.Runner{FS: migrations.FS, Logger: log}.Run(ctx, sqlDB)
	if err != nil {
		return 0, fmt.Errorf("migrate: %w", err)
	}
	return n, nil
}

func Seed(ctx context.Context, db database.DB, log logger.Logger) error {
	return seeder.Runner{Seeders: seeder.Defaults(), Logger: log}.Run(ctx, db)
}

func (c *Container) notifiers() []verification.Notifier {
	out := []verification.Notifier{c.Hub}
	if c.Publisher.Enabled() {
		out = append(out, c.Publisher)
	}
	if c.Mailer.Enabled() {
		out = append(out, c.Mailer)
	}
	return out
}

// Close drains in-flight notifications before tearing down the connections
// they use.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Verification != nil {
		c.Verification.Wait()
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.Previewer.Close()

	var errs []error
	if c.Publisher != nil {
		errs = append(errs, c.Publisher.Close())
	}
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}
