package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats.go"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/filevault/modules/account"
	filesapi "github.com/dmitrymomot/filevault/modules/files"
	"github.com/dmitrymomot/filevault/pkg/config"
	"github.com/dmitrymomot/filevault/pkg/cookie"
	"github.com/dmitrymomot/filevault/pkg/email"
	"github.com/dmitrymomot/filevault/pkg/environment"
	"github.com/dmitrymomot/filevault/pkg/events"
	"github.com/dmitrymomot/filevault/pkg/file"
	"github.com/dmitrymomot/filevault/pkg/httpserver"
	"github.com/dmitrymomot/filevault/pkg/logger"
	"github.com/dmitrymomot/filevault/pkg/mongo"
	"github.com/dmitrymomot/filevault/pkg/queue"
	"github.com/dmitrymomot/filevault/pkg/ratelimiter"
	"github.com/dmitrymomot/filevault/pkg/redis"
	"github.com/dmitrymomot/filevault/pkg/requestid"
	"github.com/dmitrymomot/filevault/pkg/session"
	"github.com/dmitrymomot/filevault/svc/auth"
	"github.com/dmitrymomot/filevault/svc/files"
	"github.com/dmitrymomot/filevault/svc/users"
)

type appConfig struct {
	Env              string        `env:"APP_ENV" envDefault:"development"`
	LocalBlobDir     string        `env:"LOCAL_STORAGE_DIR" envDefault:"./tmp/blobs"`
	LocalBlobURL     string        `env:"LOCAL_STORAGE_URL" envDefault:"/blobs"`
	HealthTimeout    time.Duration `env:"HEALTH_TIMEOUT" envDefault:"3s"`
	BootstrapTimeout time.Duration `env:"BOOTSTRAP_TIMEOUT" envDefault:"1m"`
	AuthIPLimit      int           `env:"AUTH_IP_RATE_LIMIT" envDefault:"60"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	var app appConfig
	config.MustLoad(&app)
	env := environment.Parse(app.Env)

	log := logger.New(
		logger.WithEnvironment(env, "filevault"),
		logger.WithContextExtractors(requestid.LoggerExtractor(), environment.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootCtx, cancel := context.WithTimeout(ctx, app.BootstrapTimeout)
	defer cancel()

	var mongoCfg mongo.Config
	config.MustLoad(&mongoCfg)
	client, err := mongo.New(bootCtx, mongoCfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database(mongoCfg.Database)

	var redisCfg redis.Config
	config.MustLoad(&redisCfg)
	rdb, err := redis.Connect(bootCtx, redisCfg)
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	blobs, err := newBlobStorage(bootCtx, app)
	if err != nil {
		return err
	}

	var mailCfg email.Config
	config.MustLoad(&mailCfg)
	mailer, err := email.New(mailCfg)
	if err != nil {
		return err
	}

	publisher, nc, err := newPublisher(bootCtx, log)
	if err != nil {
		return err
	}
	defer func() { _ = events.Close(nc) }()

	userStore := users.NewMongoStore(db)
	fileStore := files.NewMongoStore(db)
	taskStore := queue.NewMongoStorage(db)
	for name, ensure := range map[string]func(context.Context) error{
		"users": userStore.EnsureIndexes,
		"files": fileStore.EnsureIndexes,
		"tasks": taskStore.EnsureIndexes,
	} {
		if err := ensure(bootCtx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}

	var queueCfg queue.Config
	config.MustLoad(&queueCfg)
	enqueuer, err := queue.NewEnqueuer(taskStore)
	if err != nil {
		return err
	}

	var filesCfg files.Config
	config.MustLoad(&filesCfg)
	fileSvc, err := files.NewService(bootCtx, fileStore, userStore, blobs,
		files.WithConfig(filesCfg),
		files.WithLogger(log),
		files.WithEnqueuer(enqueuer),
		files.WithPublisher(publisher),
	)
	if err != nil {
		return err
	}

	worker, err := queue.NewWorker(taskStore,
		queue.WithWorkerConfig(queueCfg),
		queue.WithWorkerLogger(log))
	if err != nil {
		return err
	}
	if err := worker.RegisterHandlers(fileSvc.TaskHandlers()...); err != nil {
		return err
	}

	scheduler, err := queue.NewScheduler(taskStore,
		queue.WithCheckInterval(queueCfg.SchedulerInterval),
		queue.WithSchedulerLogger(log))
	if err != nil {
		return err
	}
	if err := fileSvc.ScheduleSweep(scheduler, filesCfg.SweepInterval); err != nil {
		return err
	}

	sessions, err := newSessions(rdb, redisCfg.KeyPrefix, log)
	if err != nil {
		return err
	}

	var authCfg auth.Config
	config.MustLoad(&authCfg)
	limiter, err := ratelimiter.NewBucket(
		ratelimiter.NewRedisStore(rdb, redisCfg.KeyPrefix),
		ratelimiter.PerWindow(authCfg.RateLimit, authCfg.RateLimitWindow),
	)
	if err != nil {
		return err
	}
	ipLimiter, err := ratelimiter.NewBucket(
		ratelimiter.NewRedisStore(rdb, redisCfg.KeyPrefix),
		ratelimiter.PerWindow(app.AuthIPLimit, time.Minute),
	)
	if err != nil {
		return err
	}
	authSvc := auth.NewService(userStore, auth.NewRedisCodeStore(rdb, redisCfg.KeyPrefix), mailer, sessions,
		auth.WithConfig(authCfg),
		auth.WithLogger(log),
		auth.WithRateLimiter(limiter),
	)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(environment.Middleware(env))
	r.Use(sessions.Middleware)
	r.Use(auth.NewResolver(userStore, log).Middleware)

	checks := []httpserver.Check{
		{Name: "mongo", Ping: mongo.Healthcheck(client)},
		{Name: "redis", Ping: redis.Healthcheck(rdb)},
	}
	if nc != nil {
		checks = append(checks, httpserver.Check{Name: "nats", Ping: events.Healthcheck(nc)})
	}
	r.Get("/health", httpserver.HealthCheckHandler(log, app.HealthTimeout, checks...))

	r.Mount("/", account.Router(account.RouterOptions{
		OTP: account.NewOTPService(authSvc, account.WithLogger(log)),
		Middlewares: []func(http.Handler) http.Handler{
			ratelimiter.Middleware(ipLimiter, ratelimiter.Prefixed("ip", ratelimiter.RemoteIP)),
		},
	}))
	filesapi.NewService(fileSvc,
		filesapi.WithLogger(log),
		filesapi.WithMaxUploadSize(filesCfg.MaxUploadSize),
	).Register(r)
	if _, ok := blobs.(*file.LocalStorage); ok {
		r.Handle(app.LocalBlobURL+"/*", http.StripPrefix(app.LocalBlobURL, http.FileServer(http.Dir(app.LocalBlobDir))))
	}

	var httpCfg httpserver.Config
	config.MustLoad(&httpCfg)
	server := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx, r) })
	g.Go(worker.Run(gctx))
	g.Go(scheduler.Run(gctx))

	log.InfoContext(ctx, "filevault started", slog.String("addr", httpCfg.Addr))
	return g.Wait()
}

// newBlobStorage uses S3 when a bucket is configured and a local directory
// otherwise.
func newBlobStorage(ctx context.Context, app appConfig) (file.Storage, error) {
	var s3Cfg file.S3Config
	config.MustLoad(&s3Cfg)
	if s3Cfg.Bucket != "" {
		return file.NewS3Storage(ctx, s3Cfg)
	}
	return file.NewLocalStorage(app.LocalBlobDir, app.LocalBlobURL)
}

// newPublisher connects to NATS when NATS_URL is set. Without it events are
// dropped and the returned connection is nil.
func newPublisher(ctx context.Context, log *slog.Logger) (events.Publisher, *nats.Conn, error) {
	var cfg events.Config
	config.MustLoad(&cfg)
	if !cfg.Enabled() {
		log.WarnContext(ctx, "NATS_URL is not set, file events are disabled")
		return events.NoopPublisher{}, nil, nil
	}
	nc, err := events.Connect(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return events.NewLoggingPublisher(events.NewNATSPublisher(nc, cfg.SubjectPrefix), log), nc, nil
}

func newSessions(rdb goredis.UniversalClient, prefix string, log *slog.Logger) (*session.Manager, error) {
	var cookieCfg cookie.Config
	config.MustLoad(&cookieCfg)
	cookies, err := cookie.NewFromConfig(cookieCfg)
	if err != nil {
		return nil, err
	}

	var cfg session.Config
	config.MustLoad(&cfg)
	return session.NewManager(
		session.WithStore(session.NewRedisStore(rdb, prefix)),
		session.WithTransport(session.CompositeTransport{
			session.NewCookieTransport(cookies, cfg.CookieName),
			session.HeaderTransport{},
		}),
		session.WithConfig(cfg),
		session.WithLogger(log),
	), nil
}
