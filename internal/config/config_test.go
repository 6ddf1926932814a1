package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "3001", cfg.Server.Port)
	require.Equal(t, "http://localhost:3001/api", cfg.Server.PublicAPIURL)
	require.Equal(t, "file", cfg.Store.Backend)
	require.Equal(t, "/tmp/db.json", cfg.Store.DataFile)
	require.True(t, cfg.Store.Lock)
	require.True(t, cfg.Store.StrictWrites)
	require.Equal(t, "Lời Tri Ân", cfg.Wish.Title)
	require.False(t, cfg.AdminGuarded())
	require.False(t, cfg.BackupEnabled())
	require.True(t, cfg.Live.Enabled)
	require.Empty(t, cfg.Moderation.Words)
	require.Equal(t, '*', cfg.Moderation.Mask)
	require.False(t, cfg.Moderation.FoldDiacritics)
	require.Equal(t, "0.0.0.0:3001", cfg.Addr())
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("PORT", "8088")
	t.Setenv("PUBLIC_API_URL", "https://tri-an.example/api/")
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("STRICT_WRITES", "false")
	t.Setenv("BACKUP_INTERVAL", "15m")
	t.Setenv("MINIO_ENDPOINT", "minio:9000")
	t.Setenv("ADMIN_JWT_SECRET", "s3cret")
	t.Setenv("MODERATION_WORDS", "ngu, đồ tồi ,")
	t.Setenv("MODERATION_MASK", "#")
	t.Setenv("MODERATION_FOLD_DIACRITICS", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "8088", cfg.Server.Port)
	require.Equal(t, "https://tri-an.example/api", cfg.Server.PublicAPIURL)
	require.Equal(t, "redis", cfg.Store.Backend)
	require.False(t, cfg.Store.StrictWrites)
	require.Equal(t, 15*time.Minute, cfg.Backup.Interval)
	require.True(t, cfg.BackupEnabled())
	require.True(t, cfg.AdminGuarded())
	require.Equal(t, []string{"ngu", "đồ tồi"}, cfg.Moderation.Words)
	require.Equal(t, '#', cfg.Moderation.Mask)
	require.True(t, cfg.Moderation.FoldDiacritics)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown backend", map[string]string{"STORE_BACKEND": "sqlite"}},
		{"redis without host", map[string]string{"STORE_BACKEND": "redis"}},
		{"mongo without uri", map[string]string{"STORE_BACKEND": "mongo"}},
		{"bad port", map[string]string{"PORT": "http"}},
		{"bad timezone", map[string]string{"DATE_TIMEZONE": "Mars/Olympus"}},
		{"oidc without client", map[string]string{"OIDC_ISSUER": "https://id.example/realms/x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}

func TestSplitList(t *testing.T) {
	require.Equal(t, []string{"a", "b c"}, splitList(" a, ,b c,"))
	require.Empty(t, splitList(""))
}
