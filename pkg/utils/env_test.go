package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnv(t *testing.T) {
	t.Setenv("SALESPIPE_TEST_STR", "value")
	assert.Equal(t, "value", Env("SALESPIPE_TEST_STR", "def"))
	assert.Equal(t, "def", Env("SALESPIPE_TEST_STR_MISSING", "def"))
}

func TestEnvInt(t *testing.T) {
	t.Setenv("SALESPIPE_TEST_INT", "8")
	assert.Equal(t, 8, EnvInt("SALESPIPE_TEST_INT", 4))

	t.Setenv("SALESPIPE_TEST_INT", "not-a-number")
	assert.Equal(t, 4, EnvInt("SALESPIPE_TEST_INT", 4))

	// Non-positive values fall back to the default.
	t.Setenv("SALESPIPE_TEST_INT", "0")
	assert.Equal(t, 4, EnvInt("SALESPIPE_TEST_INT", 4))
}

func TestEnvBool(t *testing.T) {
	t.Setenv("SALESPIPE_TEST_BOOL", "true")
	assert.True(t, EnvBool("SALESPIPE_TEST_BOOL", false))

	t.Setenv("SALESPIPE_TEST_BOOL", "garbage")
	assert.False(t, EnvBool("SALESPIPE_TEST_BOOL", false))
}

func TestEnvDuration(t *testing.T) {
	t.Setenv("SALESPIPE_TEST_DUR", "30s")
	assert.Equal(t, 30*time.Second, EnvDuration("SALESPIPE_TEST_DUR", time.Minute))

	t.Setenv("SALESPIPE_TEST_DUR", "-5s")
	assert.Equal(t, time.Minute, EnvDuration("SALESPIPE_TEST_DUR", time.Minute))
}
