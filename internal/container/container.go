package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rakapratama/go-admin-backend/config"
	"github.com/rakapratama/go-admin-backend/internal/session"
	"github.com/rakapratama/go-admin-backend/pkg/helpers"
	"github.com/rakapratama/go-admin-backend/pkg/mailer"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	imageStore  *helpers.GCSImageStore

	jwtManager *helpers.JWTManager
	sessions   *session.Manager
	notifier   *mailer.Notifier

	rabbitPub *helpers.RabbitPublisher
	esClient  *elasticsearch.Client
)

func SetConfig(c *config.Config)           { cfg = c }
func GetConfig() *config.Config            { return cfg }
func SetLogger(l *logrus.Logger)           { logger = l }
func GetLogger() *logrus.Logger            { return logger }
func SetPGPool(p *pgxpool.Pool)            { pgPool = p }
func GetPGPool() *pgxpool.Pool             { return pgPool }
func SetRedis(r *redis.Client)             { redisClient = r }
func GetRedis() *redis.Client              { return redisClient }
func SetImageStore(s *helpers.GCSImageStore) { imageStore = s }
func GetImageStore() *helpers.GCSImageStore  { return imageStore }
func SetJWT(m *helpers.JWTManager)         { jwtManager = m }
func GetJWT() *helpers.JWTManager          { return jwtManager }
func SetSessions(m *session.Manager)       { sessions = m }
func GetSessions() *session.Manager        { return sessions }
func SetNotifier(n *mailer.Notifier)       { notifier = n }
func GetNotifier() *mailer.Notifier        { return notifier }

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }
