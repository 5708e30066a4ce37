package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/darkkaiser/warn-bridge/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "warn-bridge.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_DefaultsWithOverrides(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing-is-error.json"), nil)
	require.Error(t, err, "명시적으로 지정한 설정 파일이 없으면 에러여야 합니다")
	assert.True(t, apperrors.Is(err, apperrors.System))
	assert.Nil(t, cfg)

	cfg, err = Load("", map[string]any{
		"command":         "./notify.sh",
		"regions":         []int64{91620000000, 53150000000},
		"persist.enabled": true,
	})
	require.NoError(t, err)

	assert.Equal(t, "./notify.sh", cfg.Command)
	assert.Equal(t, []int64{91620000000, 53150000000}, cfg.Regions)
	assert.True(t, cfg.Persist.Enabled)
	assert.Equal(t, "received", cfg.Persist.Dir)
	assert.Equal(t, ".", cfg.StateDir)
	assert.Equal(t, 20*time.Second, cfg.HTTP.TimeoutDuration())
	assert.Equal(t, "https://push.warnung.bund.de/v1/nina-3-1/", cfg.Nina.PushAPIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.Relay.ShutdownTimeoutDuration())
}

func TestLoad_FileAndEnvLayers(t *testing.T) {
	path := writeConfigFile(t, `{
		"command": "cat",
		"state_dir": "/var/lib/warn-bridge",
		"http": { "timeout": "5s", "max_retries": 1 },
		"persist": { "retention_days": 7 }
	}`)

	t.Setenv("WARN_BRIDGE_HTTP__TIMEOUT", "9s")
	t.Setenv("WARN_BRIDGE_REGIONS", "1,2,3")

	cfg, err := Load(path, map[string]any{"debug": true})
	require.NoError(t, err)

	assert.Equal(t, "cat", cfg.Command)
	assert.Equal(t, "/var/lib/warn-bridge", cfg.StateDir)
	assert.Equal(t, 9*time.Second, cfg.HTTP.TimeoutDuration(), "환경 변수가 설정 파일보다 우선해야 합니다")
	assert.Equal(t, 1, cfg.HTTP.MaxRetries)
	assert.Equal(t, 7, cfg.Persist.RetentionDays)
	assert.Equal(t, []int64{1, 2, 3}, cfg.Regions)
	assert.True(t, cfg.Debug)
}

func TestLoad_OverridesWinOverEnv(t *testing.T) {
	t.Setenv("WARN_BRIDGE_COMMAND", "from-env")

	cfg, err := Load("", map[string]any{"command": "from-cli"})
	require.NoError(t, err)
	assert.Equal(t, "from-cli", cfg.Command)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		overrides   map[string]any
		errContains string
	}{
		{
			name:        "Unknown Key",
			content:     `{"command": "cat", "unknown_key": 1}`,
			errContains: "구조체로 변환",
		},
		{
			name:        "Malformed JSON",
			content:     `{"command": `,
			errContains: "설정 파일 로드 중 오류",
		},
		{
			name:        "Missing Command",
			content:     `{}`,
			errContains: "command",
		},
		{
			name:        "Invalid Duration",
			content:     `{"command": "cat", "http": {"timeout": "soon"}}`,
			errContains: "http.timeout",
		},
		{
			name:        "Invalid Cron Spec",
			content:     `{"command": "cat", "persist": {"cleanup_time_spec": "*/5 * * * *"}}`,
			errContains: "persist.cleanup_time_spec",
		},
		{
			name:        "Invalid URL",
			content:     `{"command": "cat", "nina": {"config_url": "not a url"}}`,
			errContains: "nina.config_url",
		},
		{
			name:        "Invalid Listen Address",
			content:     `{"command": "cat", "relay": {"listen_address": "8735"}}`,
			errContains: "relay.listen_address",
		},
		{
			name:        "Negative Region",
			content:     `{"command": "cat"}`,
			overrides:   map[string]any{"regions": []int64{-1}},
			errContains: "regions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfigFile(t, tt.content), tt.overrides)

			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestLoadTelegram(t *testing.T) {
	t.Setenv("WARN_TELEGRAM_BOT_TOKEN", "123456789:ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghi")
	t.Setenv("WARN_TELEGRAM_CHAT_ID", "-100123")

	cfg, err := LoadTelegram("")
	require.NoError(t, err)

	assert.Equal(t, int64(-100123), cfg.ChatID)
	assert.Equal(t, 2*time.Minute, cfg.LineTimeoutDuration())
}

func TestLoadTelegram_InvalidToken(t *testing.T) {
	t.Setenv("WARN_TELEGRAM_BOT_TOKEN", "not-a-token")
	t.Setenv("WARN_TELEGRAM_CHAT_ID", "1")

	_, err := LoadTelegram("")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "BotToken")
}
