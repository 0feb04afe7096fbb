package container

import (
	"context"
	"fmt"
	"time"

	"furnistore/storefront/internal/cart"
	"furnistore/storefront/internal/catalog"
	"furnistore/storefront/internal/client"
	"furnistore/storefront/internal/config"
	"furnistore/storefront/internal/service"
	"furnistore/storefront/internal/session"
	"furnistore/storefront/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config  *config.Config
	Client  client.StorefrontClient
	Storage storage.Storage
	Cart    *cart.Store
	Session *session.Store

	Service *service.Service

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized and the
// persisted cart and session restored.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	st, err := container.openStorage(ctx)
	if err != nil {
		container.Close()
		return nil, err
	}
	container.Storage = st

	storefrontClient := client.NewStorefrontClient(cfg.API)
	container.Client = storefrontClient

	timeout := time.Duration(cfg.Storage.Timeout) * time.Second

	container.Cart = cart.NewStore(ctx, st, timeout)
	container.Session = session.NewStore(storefrontClient, session.NewJWTDecoder(), st, timeout)
	if current := container.Session.Restore(ctx); current.LoggedIn() {
		log.Infof("🔑 Restored session for %s", current.User.Email)
	}

	container.Service = service.NewService(
		storefrontClient,
		catalog.Furniture(),
		container.Cart,
		container.Session,
		cfg.Storefront.FeaturedLimit,
	)

	return container, nil
}

func (c *Container) openStorage(ctx context.Context) (storage.Storage, error) {
	cfg := c.Config

	switch cfg.Storage.Driver {
	case "memory":
		return storage.NewMemoryStorage(), nil

	case "file":
		st, err := storage.NewFileStorage(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open state file: %w", err)
		}
		return st, nil

	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})
		c.redis = rdb

		// Test connection
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("✅ Connected to Redis successfully")

		return storage.NewRedisStorage(rdb, cfg.Storage.KeyPrefix, time.Duration(cfg.Storage.TTL)*time.Second), nil

	case "postgres":
		db, err := pgxpool.New(ctx,
			fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
				cfg.Database.Host,
				cfg.Database.Port,
				cfg.Database.User,
				cfg.Database.Password,
				cfg.Database.Name,
			))
		if err != nil {
			return nil, fmt.Errorf("failed to create database pool: %w", err)
		}
		c.db = db

		st, err := storage.NewPostgresStorage(ctx, db, cfg.Storage.KeyPrefix)
		if err != nil {
			return nil, err
		}
		log.Info("✅ Connected to Postgres successfully")
		return st, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Debug("Shutting down container...")

	if c.Client != nil {
		if err := c.Client.Close(); err != nil {
			log.Warnf("⚠️ Failed to close client: %v", err)
		}
	}
	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Warnf("⚠️ Failed to close Redis: %v", err)
		}
	}

	log.Debug("Container shut down successfully")
	return nil
}
