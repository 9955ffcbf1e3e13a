package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fromTOML(t *testing.T, doc string) (*Config, error) {
	t.Helper()
	v := viper.New()
	v.SetConfigType("toml")
	require.NoError(t, v.ReadConfig(strings.NewReader(doc)))
	return FromViper(v)
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		t.Setenv("ERP_APP_NAME", "")
		t.Setenv("ERP_DATABASE_HOST", "")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "erp-factory", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "erp_session", cfg.Session.CookieName)
		assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
		assert.Equal(t, "lax", cfg.Session.SameSite)
		assert.Equal(t, "5-M", cfg.Auth.LoginRateLimit)
		assert.Equal(t, float64(2), cfg.Bitrix24.RequestsPerSecond)
		assert.Equal(t, int64(1), cfg.IDGen.NodeID)
		assert.Equal(t, "/metrics", cfg.Metrics.Path)
	})

	t.Run("loads values from environment variables with ERP prefix", func(t *testing.T) {
		t.Setenv("ERP_APP_NAME", "test-app")
		t.Setenv("ERP_APP_PORT", "9000")
		t.Setenv("ERP_DATABASE_DRIVER", "sqlite")
		t.Setenv("ERP_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("ERP_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("ERP_SESSION_TTL", "30m")
		t.Setenv("ERP_BITRIX24_WEBHOOK_URL", "https://portal.bitrix24.ru/rest/1/token/")
		t.Setenv("ERP_BITRIX24_PULL_INTERVAL", "15m")
		t.Setenv("ERP_ONEC_BASE_URL", "http://1c.local/base/odata/standard.odata")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
		assert.Equal(t, "https://portal.bitrix24.ru/rest/1/token/", cfg.Bitrix24.WebhookURL)
		assert.Equal(t, 15*time.Minute, cfg.Bitrix24.PullInterval)
		assert.Equal(t, "http://1c.local/base/odata/standard.odata", cfg.OneC.BaseURL)
	})

	t.Run("rejects sub-minute pull interval", func(t *testing.T) {
		t.Setenv("ERP_BITRIX24_PULL_INTERVAL", "10s")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pull_interval")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		t.Setenv("ERP_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("ERP_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		t.Setenv("ERP_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})
}

func TestFromViper(t *testing.T) {
	t.Run("reads demo users", func(t *testing.T) {
		cfg, err := fromTOML(t, `
[auth]
login_rate_limit = "10-M"

[[auth.demo_users]]
username = "admin"
password = "admin-password"
display_name = "Administrator"
role = "admin"

[[auth.demo_users]]
username = "floor"
password = "floor-password"
`)
		require.NoError(t, err)
		require.Len(t, cfg.Auth.DemoUsers, 2)
		assert.Equal(t, "Administrator", cfg.Auth.DemoUsers[0].DisplayName)
		assert.Equal(t, "admin", cfg.Auth.DemoUsers[0].Role)
		assert.Equal(t, "floor", cfg.Auth.DemoUsers[1].Username)
		assert.Equal(t, "10-M", cfg.Auth.LoginRateLimit)
	})

	t.Run("rejects demo users without password", func(t *testing.T) {
		_, err := fromTOML(t, `
[[auth.demo_users]]
username = "admin"
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "auth.demo_users[0]")
	})

	t.Run("same_site none needs secure cookies", func(t *testing.T) {
		_, err := fromTOML(t, `
[session]
same_site = "none"
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "session.secure")
	})

	t.Run("storage needs a bucket when enabled", func(t *testing.T) {
		_, err := fromTOML(t, `
[storage]
enabled = true
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.bucket")
	})

	t.Run("node id must fit in ten bits", func(t *testing.T) {
		_, err := fromTOML(t, `
[idgen]
node_id = 4096
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "idgen.node_id")
	})

	t.Run("rejects sampling ratio above one", func(t *testing.T) {
		_, err := fromTOML(t, `
[telemetry]
sampling_ratio = 1.5
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestFromViper_ProductionValidation(t *testing.T) {
	base := `
[app]
env = "production"

[database]
password = "secure-password"
sslmode = "require"

[session]
secret = "this-is-a-very-secure-session-secret-key"
secure = true
`

	t.Run("passes validation with valid production config", func(t *testing.T) {
		cfg, err := fromTOML(t, base)
		require.NoError(t, err)
		assert.True(t, cfg.App.IsProduction())
	})

	t.Run("requires long session secret", func(t *testing.T) {
		_, err := fromTOML(t, strings.Replace(base, "this-is-a-very-secure-session-secret-key", "short", 1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "session.secret must be at least 32 characters")
	})

	t.Run("requires SSL enabled", func(t *testing.T) {
		_, err := fromTOML(t, strings.Replace(base, `"require"`, `"disable"`, 1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("requires secure cookies", func(t *testing.T) {
		_, err := fromTOML(t, strings.Replace(base, "secure = true", "secure = false", 1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "session.secure must be true")
	})

	t.Run("sqlite needs no database password", func(t *testing.T) {
		doc := strings.Replace(base, `password = "secure-password"`, `driver = "sqlite"`, 1)
		_, err := fromTOML(t, doc)
		require.NoError(t, err)
	})

	t.Run("refuses demo users", func(t *testing.T) {
		_, err := fromTOML(t, base+`
[[auth.demo_users]]
username = "admin"
password = "admin-password"
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "demo_users")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "/testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "user", Password: "pass@word#123", DBName: "db", SSLMode: "disable"}
		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}
