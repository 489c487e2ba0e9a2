package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults applied", func(t *testing.T) {
		t.Setenv("MONGO_URI", "mongodb://localhost:27017")
		t.Setenv("DB_NAME", "")
		t.Setenv("APP_PORT", "")
		t.Setenv("APP_ENV", "")

		cfg := LoadConfig()

		assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
		assert.Equal(t, "shopmart", cfg.DBName)
		assert.Equal(t, "8080", cfg.AppPort)
	})

	t.Run("Explicit values win", func(t *testing.T) {
		t.Setenv("MONGO_URI", "mongodb://db:27017")
		t.Setenv("DB_NAME", "shopmart_test")
		t.Setenv("APP_PORT", "9090")
		t.Setenv("APP_ENV", "production")

		cfg := LoadConfig()

		assert.Equal(t, "mongodb://db:27017", cfg.MongoURI)
		assert.Equal(t, "shopmart_test", cfg.DBName)
		assert.Equal(t, "9090", cfg.AppPort)
		assert.Equal(t, "production", cfg.AppEnv)
	})
}
