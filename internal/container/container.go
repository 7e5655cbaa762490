package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/abiosite/abio-api/config"
	"github.com/abiosite/abio-api/pkg/helpers"
	"github.com/abiosite/abio-api/pkg/mailer"
	"github.com/abiosite/abio-api/pkg/metrics"
)

// app-level container to share constructed components across packages.
// router.BuildDeps reads these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	gcsClient   *storage.Client
	esClient    *elasticsearch.Client

	jwtManager *helpers.JWTManager
	notifier   *mailer.Notifier
	appMetrics *metrics.Metrics
)

func SetConfig(c *config.Config)     { cfg = c }
func GetConfig() *config.Config      { return cfg }
func SetLogger(l *logrus.Logger)     { logger = l }
func GetLogger() *logrus.Logger      { return logger }
func SetPGPool(p *pgxpool.Pool)      { pgPool = p }
func GetPGPool() *pgxpool.Pool       { return pgPool }
func SetRedis(r *redis.Client)       { redisClient = r }
func GetRedis() *redis.Client        { return redisClient }
func SetGCS(s *storage.Client)       { gcsClient = s }
func GetGCS() *storage.Client        { return gcsClient }
func SetES(c *elasticsearch.Client)  { esClient = c }
func GetES() *elasticsearch.Client   { return esClient }
func SetJWT(m *helpers.JWTManager)   { jwtManager = m }
func GetJWT() *helpers.JWTManager    { return jwtManager }
func SetNotifier(n *mailer.Notifier) { notifier = n }
func GetNotifier() *mailer.Notifier  { return notifier }
func SetMetrics(m *metrics.Metrics)  { appMetrics = m }
func GetMetrics() *metrics.Metrics   { return appMetrics }
