package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("STOCK_TEST_STR", "value")
	t.Setenv("STOCK_TEST_INT", "42")
	t.Setenv("STOCK_TEST_BAD_INT", "forty")
	t.Setenv("STOCK_TEST_BOOL", "true")
	t.Setenv("STOCK_TEST_DUR", "15s")
	t.Setenv("STOCK_TEST_SECS", "7")

	assert.Equal(t, "value", getEnv("STOCK_TEST_STR", "x"))
	assert.Equal(t, "x", getEnv("STOCK_TEST_MISSING", "x"))
	assert.Equal(t, 42, getEnvAsInt("STOCK_TEST_INT", 1))
	assert.Equal(t, 1, getEnvAsInt("STOCK_TEST_BAD_INT", 1))
	assert.True(t, getEnvAsBool("STOCK_TEST_BOOL", false))
	assert.Equal(t, 15*time.Second, getEnvAsDuration("STOCK_TEST_DUR", time.Second))
	assert.Equal(t, 7*time.Second, getEnvAsDuration("STOCK_TEST_SECS", time.Second))
	assert.Equal(t, time.Second, getEnvAsDuration("STOCK_TEST_MISSING", time.Second))
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	LoadConfig()

	assert.Equal(t, "sqlite", DBDriver)
	assert.Equal(t, "/api/v1", MAIN_ROUTES)
	assert.Equal(t, 365, DefaultAgingDays)
	assert.Equal(t, 10*time.Second, RequestTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, allowedOrigins)
}
