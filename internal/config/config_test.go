package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "dark", cfg.Theme)
	assert.Equal(t, -1, cfg.Stream.QuietWindowMS, "unset quiet window means library default")
	assert.True(t, cfg.History.HistoryEnabled())
	assert.Equal(t, 50, cfg.History.Limit)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
theme = "system"

[stream]
quiet_window_ms = 250
burst_threshold = 5
bottom_tolerance = 10

[history]
enabled = false
limit = 10
`))
	require.NoError(t, err)

	assert.Equal(t, "system", cfg.Theme)
	assert.Equal(t, 250, cfg.Stream.QuietWindowMS)
	assert.Equal(t, 5, cfg.Stream.BurstThreshold)
	assert.Equal(t, 10, cfg.Stream.BottomTolerance)
	assert.False(t, cfg.History.HistoryEnabled())
}

func TestParseExplicitZeroQuietWindow(t *testing.T) {
	// quiet_window_ms = 0 is a deliberate choice (direct-commit mode),
	// distinct from leaving the key out.
	cfg, err := Parse([]byte("[stream]\nquiet_window_ms = 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Stream.QuietWindowMS)
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte("theme = [broken"))
	assert.Error(t, err)
}

func TestParsePartialSection(t *testing.T) {
	cfg, err := Parse([]byte("[logs]\ndebug_level = \"warn\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logs.DebugLevel)
	// Untouched sections keep defaults.
	assert.Equal(t, "dark", cfg.Theme)
	assert.Equal(t, 50, cfg.History.Limit)
}
