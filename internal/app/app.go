// Package app wires configuration into connected stores, services and the HTTP router.
package app

import (
	"brainarcade/internal/cache"
	"brainarcade/internal/catalog"
	"brainarcade/internal/config"
	"brainarcade/internal/difficulty"
	"brainarcade/internal/logging"
	"brainarcade/internal/oracle"
	"brainarcade/internal/recommend"
	"brainarcade/internal/repository"
	"brainarcade/internal/service"
	"brainarcade/internal/transport/rest"
	"brainarcade/internal/transport/ws"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type App struct {
	Config   *config.Config
	Catalog  *catalog.Catalog
	Mongo    *mongo.Client
	Redis    *redis.Client
	Hub      *ws.Hub
	Sessions *service.SessionService
	Router   http.Handler

	ProfileRepo repository.ProfileRepo
	SessionRepo repository.SessionRepo
}

// New connects to MongoDB and Redis and builds every component
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	games, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	mongoClient, err := ConnectMongo(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	db := mongoClient.Database(cfg.Mongo.Database)
	a := &App{
		Config:      cfg,
		Catalog:     games,
		Mongo:       mongoClient,
		Redis:       rdb,
		ProfileRepo: repository.NewProfileRepo(db),
		SessionRepo: repository.NewSessionRepo(db),
	}
	if err := a.SessionRepo.EnsureIndexes(ctx); err != nil {
		logging.Warn().Err(err).Msg("failed to ensure session indexes")
	}
	a.build()
	return a, nil
}

// ConnectMongo connects and pings MongoDB
func ConnectMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client, nil
}

func (a *App) build() {
	cfg := a.Config
	tuning := cfg.Tuning

	var primary oracle.Oracle
	if cfg.Oracle.IsEnabled() {
		primary = oracle.NewClient(cfg.Oracle, logging.Logger())
	} else {
		logging.Info().Msg("oracle base url not set, estimates come from profile heuristics")
	}
	resilient := oracle.NewResilient(primary, cfg.Oracle.Timeout, logging.Logger())

	authSvc := service.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	profileSvc := service.NewProfileService(
		a.ProfileRepo,
		cache.NewProfileCache(a.Redis, cfg.Redis.ProfileTTL),
		logging.Component("profiles"),
	)
	plays := cache.NewPlayHistoryCache(a.Redis)

	difficultyLogger := logging.Component("difficulty")
	newController := func() *difficulty.Controller {
		return difficulty.NewController(a.Catalog, tuning.Difficulty, tuning.Telemetry, difficultyLogger)
	}
	a.Sessions = service.NewSessionService(
		resilient,
		profileSvc,
		cache.NewSessionCache(a.Redis, cfg.Redis.SessionTTL),
		plays,
		a.SessionRepo,
		authSvc,
		newController,
		logging.Component("sessions"),
	)

	recommendSvc := service.NewRecommendationService(
		profileSvc,
		plays,
		resilient,
		recommend.NewEngine(tuning.Recommend, logging.Logger()),
		a.Catalog,
		tuning.Recommend.RecentWindow,
		tuning.Version,
		logging.Component("recommendations"),
	)

	a.Hub = ws.NewHub(logging.Component("ws"))
	a.Sessions.SetBroadcaster(a.Hub)

	a.Router = rest.NewRouter(&rest.Container{
		AuthService:           authSvc,
		SessionService:        a.Sessions,
		RecommendationService: recommendSvc,
		Catalog:               a.Catalog,
		WSHub:                 a.Hub,
		AllowedOrigins:        cfg.Server.AllowedOrigins,
		Logger:                logging.Component("http"),
	})
}

// Close releases store connections
func (a *App) Close(ctx context.Context) {
	if err := a.Redis.Close(); err != nil {
		logging.Warn().Err(err).Msg("redis close failed")
	}
	if err := a.Mongo.Disconnect(ctx); err != nil {
		logging.Warn().Err(err).Msg("mongodb disconnect failed")
	}
}
