package providers

import (
	"github.com/bradfitz/gomemcache/memcache"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/formhive/formhive/internal/config"
	"github.com/formhive/formhive/internal/infrastructure/database"
)

// NewDatabase opens a Postgres connection using the configured DSN.
func NewDatabase(conf config.Server) (*gorm.DB, error) {
	return database.NewPostgres(conf.PostgresDsn)
}

// MigrateDatabase applies migrations for the application models.
func MigrateDatabase(db *gorm.DB) error {
	return database.MigratePostgres(db)
}

// NewRedis creates a redis client for the event bus.
func NewRedis(conf config.Server) *redis.Client {
	return database.NewRedis(conf.RedisAddr, conf.RedisPassword, conf.RedisDB)
}

// NewMemcache creates a memcache client.
func NewMemcache(conf config.Server) *memcache.Client {
	return database.NewMemcached(conf.MemcachedAddr)
}
