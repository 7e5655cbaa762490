package router

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/abiosite/abio-api/config"
	"github.com/abiosite/abio-api/internal/application"
	"github.com/abiosite/abio-api/internal/container"
	repo "github.com/abiosite/abio-api/internal/domain/repository"
	"github.com/abiosite/abio-api/internal/infrastructure/oauth"
	pginfra "github.com/abiosite/abio-api/internal/infrastructure/postgres"
	"github.com/abiosite/abio-api/internal/infrastructure/search"
	handlers "github.com/abiosite/abio-api/internal/interface/http"
	"github.com/abiosite/abio-api/internal/interface/middleware"
	"github.com/abiosite/abio-api/internal/router/modules"
	"github.com/abiosite/abio-api/pkg/helpers"
	"github.com/abiosite/abio-api/pkg/metrics"
)

// Deps is everything the modules need. Production builds it from the
// container; tests fill it with in-memory implementations.
type Deps struct {
	Config  *config.Config
	Logger  *logrus.Logger
	JWT     *helpers.JWTManager
	Redis   *redis.Client // nil disables rate limiting
	DB      handlers.Pinger
	Metrics *metrics.Metrics

	Users    repo.UserRepository
	Profiles repo.ProfileRepository
	Links    repo.LinkRepository
	Prefs    repo.PreferenceRepository
	Waitlist repo.WaitlistRepository

	Notifier application.Notifier
	Storage  application.ObjectStorage
	Indexer  application.ProfileIndexer
	Identity handlers.IdentityProvider // nil disables Google sign-in
}

// BuildDeps wires the Postgres repositories and the infrastructure clients
// registered in the container.
func BuildDeps() Deps {
	cfg := container.GetConfig()
	pool := container.GetPGPool()

	d := Deps{
		Config:   cfg,
		Logger:   container.GetLogger(),
		JWT:      container.GetJWT(),
		Metrics:  container.GetMetrics(),
		Users:    pginfra.NewUserRepository(pool),
		Profiles: pginfra.NewProfileRepository(pool),
		Links:    pginfra.NewLinkRepository(pool),
		Prefs:    pginfra.NewPreferenceRepository(pool),
		Waitlist: pginfra.NewWaitlistRepository(pool),
		Notifier: container.GetNotifier(),
		Storage:  helpers.NewGCSUploader(container.GetGCS(), cfg.GCSBucket),
	}
	if pool != nil {
		d.DB = pool
	}
	if cfg.RateLimitEnabled {
		d.Redis = container.GetRedis()
	}
	if idx := search.NewProfileIndex(container.GetES(), cfg.ESProfilesIndex); idx != nil {
		d.Indexer = idx
	}
	if cfg.GoogleOAuthEnabled() {
		d.Identity = oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
	}
	return d
}

// InitModules builds services and handlers from d and registers every module.
// Call it once during startup, before RegisterAll.
func InitModules(r *Registry, d Deps) {
	cfg := d.Config
	logger := d.Logger
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	var counters application.Counters
	if d.Metrics != nil {
		counters = d.Metrics
	}

	accounts := application.NewAccountService(d.Users, d.Profiles, d.Prefs, d.Notifier, d.JWT, d.Indexer, counters, logger, cfg.BcryptCost)
	profiles := application.NewProfileService(d.Profiles, d.Links, d.Prefs, d.Storage, d.Indexer, logger)
	links := application.NewLinkService(d.Profiles, d.Links, d.Storage, counters, logger)
	prefs := application.NewPreferenceService(d.Profiles, d.Prefs)
	waitlist := application.NewWaitlistService(d.Waitlist)

	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.IsProduction(), cfg.CookieTTL())
	auth := middleware.Authenticate(d.JWT, accounts, logger)

	authHandler := handlers.NewAuthHandler(accounts, cookies, logger)
	userHandler := handlers.NewUserHandler(accounts, profiles, prefs, cookies, logger)
	publicHandler := handlers.NewPublicHandler(profiles, links, logger)

	var oauthHandler *handlers.OAuthHandler
	if d.Identity != nil {
		oauthHandler = handlers.NewOAuthHandler(d.Identity, accounts, cookies, cfg.FrontendURL, logger)
	}

	var redisPing func(ctx context.Context) error
	if d.Redis != nil {
		redisPing = func(ctx context.Context) error { return d.Redis.Ping(ctx).Err() }
	}

	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(d.DB, redisPing)))
	r.Add(modules.NewAuthModule(authHandler, oauthHandler, auth, d.Redis))
	r.Add(modules.NewUserModule(userHandler, publicHandler, auth, d.Redis))
	r.Add(modules.NewLinkModule(handlers.NewLinkHandler(links, logger), auth, d.Redis))
	r.Add(modules.NewPublicModule(publicHandler, d.Redis))
	r.Add(modules.NewWaitlistModule(handlers.NewWaitlistHandler(waitlist, logger), d.Redis, cfg.WaitlistAdminKey))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(d.Metrics, d.Redis))
	}
}
