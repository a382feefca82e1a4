package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_Defaults(t *testing.T) {
	for _, key := range []string{"TANDA_FORMAT", "TANDA_DEBUG", "TANDA_HORIZON_MONTHS"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	s, err := LoadSettings()

	require.NoError(t, err)
	assert.Equal(t, "console", s.Format)
	assert.False(t, s.Debug)
	assert.Equal(t, 0, s.HorizonMonths)
}

func TestLoadSettings_FromEnv(t *testing.T) {
	t.Setenv("TANDA_FORMAT", "json")
	t.Setenv("TANDA_DEBUG", "true")
	t.Setenv("TANDA_HORIZON_MONTHS", "60")

	s, err := LoadSettings()

	require.NoError(t, err)
	assert.Equal(t, "json", s.Format)
	assert.True(t, s.Debug)
	assert.Equal(t, 60, s.Horizon(12))
}

func TestLoadSettings_Invalid(t *testing.T) {
	t.Run("not a number", func(t *testing.T) {
		t.Setenv("TANDA_HORIZON_MONTHS", "soon")
		_, err := LoadSettings()
		assert.Error(t, err)
	})

	t.Run("negative", func(t *testing.T) {
		t.Setenv("TANDA_HORIZON_MONTHS", "-3")
		_, err := LoadSettings()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be negative")
	})
}

func TestSettings_Horizon(t *testing.T) {
	assert.Equal(t, 24, Settings{}.Horizon(24))
	assert.Equal(t, 6, Settings{HorizonMonths: 6}.Horizon(24))
}
