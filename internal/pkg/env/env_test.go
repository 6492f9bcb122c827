package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func withEnv(t *testing.T, values map[string]string) {
	t.Helper()
	prev := Env
	Env = values
	t.Cleanup(func() { Env = prev })
}

func TestGetEnvPrefersLoadedFile(t *testing.T) {
	withEnv(t, map[string]string{"MARKETFOX_TEST_KEY": "from-file"})
	t.Setenv("MARKETFOX_TEST_KEY", "from-os")

	assert.Equal(t, "from-file", GetEnv("MARKETFOX_TEST_KEY", "def"))
}

func TestGetEnvFallsBackToOSAndDefault(t *testing.T) {
	withEnv(t, map[string]string{})
	t.Setenv("MARKETFOX_OS_ONLY", "os")

	assert.Equal(t, "os", GetEnv("MARKETFOX_OS_ONLY", "def"))
	assert.Equal(t, "def", GetEnv("MARKETFOX_MISSING", "def"))
}

func TestTypedGetters(t *testing.T) {
	withEnv(t, map[string]string{
		"INT_OK":       "42",
		"INT_BAD":      "forty-two",
		"FLOAT_OK":     "12.5",
		"FLOAT_BAD":    "n/a",
		"DUR_GO":       "90s",
		"DUR_SECONDS":  "30",
		"DUR_NEGATIVE": "-5",
	})

	assert.Equal(t, 42, GetEnvInt("INT_OK", 1))
	assert.Equal(t, 1, GetEnvInt("INT_BAD", 1))
	assert.Equal(t, 7, GetEnvInt("INT_MISSING", 7))

	assert.InDelta(t, 12.5, GetEnvFloat("FLOAT_OK", 0), 1e-9)
	assert.InDelta(t, 3.0, GetEnvFloat("FLOAT_BAD", 3), 1e-9)

	assert.Equal(t, 90*time.Second, GetEnvDuration("DUR_GO", time.Minute))
	assert.Equal(t, 30*time.Second, GetEnvDuration("DUR_SECONDS", time.Minute))
	assert.Equal(t, time.Minute, GetEnvDuration("DUR_NEGATIVE", time.Minute))
}
