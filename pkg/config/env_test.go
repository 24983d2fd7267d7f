package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"news-cadence/pkg/config"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("TEST_STRING", "value")
	assert.Equal(t, "value", config.GetEnvString("TEST_STRING", "default"))
	assert.Equal(t, "default", config.GetEnvString("TEST_STRING_UNSET", "default"))
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	assert.Equal(t, 42, config.GetEnvInt("TEST_INT", 7))

	t.Setenv("TEST_INT_BAD", "not-a-number")
	assert.Equal(t, 7, config.GetEnvInt("TEST_INT_BAD", 7))

	assert.Equal(t, 7, config.GetEnvInt("TEST_INT_UNSET", 7))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "250ms")
	assert.Equal(t, 250*time.Millisecond, config.GetEnvDuration("TEST_DURATION", time.Second))

	t.Setenv("TEST_DURATION_BAD", "soon")
	assert.Equal(t, time.Second, config.GetEnvDuration("TEST_DURATION_BAD", time.Second))

	assert.Equal(t, time.Second, config.GetEnvDuration("TEST_DURATION_UNSET", time.Second))
}
