package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("REPORT_ALLOWED_EXTENSIONS", "")
	t.Setenv("REPORT_QUARTERS", "")
	t.Setenv("POSTGRES_DSN", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverFS, cfg.Storage.Driver)
	assert.Equal(t, []string{"pdf", "doc", "docx", "xls", "xlsx"}, cfg.Reports.AllowedExtensions)
	assert.Equal(t, []string{"Q1", "Q2", "Q3", "Q4"}, cfg.Reports.Quarters)
	assert.Empty(t, cfg.Postgres.DSN)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, 2000, cfg.Reports.MinYear)
	assert.Equal(t, 2100, cfg.Reports.MaxYear)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REPORT_ALLOWED_EXTENSIONS", " .PDF, odt ,,")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("STORAGE_RETRY_DELAY_MS", "5")
	t.Setenv("REPORT_MAX_UPLOAD_MB", "2")
	t.Setenv("AUTH_BOOTSTRAP_ACCOUNTS", "zone:secret-one:*, woreda1:secret-two:D1 ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"PDF", "odt"}, cfg.Reports.AllowedExtensions)
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, 5*time.Millisecond, cfg.Storage.RetryDelay())
	assert.Equal(t, 2*1024*1024, cfg.Reports.MaxUploadBytes())
	assert.Equal(t, []string{"zone:secret-one:*", "woreda1:secret-two:D1"}, cfg.Auth.BootstrapAccounts)
}

func TestLoadRejectsBadStorage(t *testing.T) {
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "ftp")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("s3 without bucket", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "s3")
		t.Setenv("STORAGE_S3_BUCKET", "")
		_, err := Load()
		require.Error(t, err)
	})
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "one")
	_, err := Load()
	require.Error(t, err)
}

func TestReportYearBounds(t *testing.T) {
	t.Setenv("REPORT_MIN_YEAR", "2015")
	t.Setenv("REPORT_MAX_YEAR", "2030")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Reports.YearAllowed(2015))
	assert.True(t, cfg.Reports.YearAllowed(2030))
	assert.False(t, cfg.Reports.YearAllowed(2014))
	assert.False(t, cfg.Reports.YearAllowed(2031))

	open := ReportsConfig{}
	assert.True(t, open.YearAllowed(1890))

	t.Run("inverted bounds", func(t *testing.T) {
		t.Setenv("REPORT_MIN_YEAR", "2040")
		_, err := Load()
		require.Error(t, err)
	})
}

func TestRedisForwardingSwitch(t *testing.T) {
	t.Run("unset address uses the local default", func(t *testing.T) {
		t.Setenv("REDIS_ADDR", "placeholder")
		require.NoError(t, os.Unsetenv("REDIS_ADDR"))
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
		assert.True(t, cfg.Redis.Enabled())
		assert.Equal(t, 500*time.Millisecond, cfg.Redis.PublishTimeout())
	})

	t.Run("empty address disables forwarding", func(t *testing.T) {
		t.Setenv("REDIS_ADDR", "")
		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.Redis.Enabled())
	})

	t.Run("publish timeout override", func(t *testing.T) {
		t.Setenv("REDIS_PUBLISH_TIMEOUT_MS", "75")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 75*time.Millisecond, cfg.Redis.PublishTimeout())
	})

	t.Run("non-positive timeout with redis enabled", func(t *testing.T) {
		t.Setenv("REDIS_ADDR", "127.0.0.1:6379")
		t.Setenv("REDIS_PUBLISH_TIMEOUT_MS", "0")
		_, err := Load()
		require.Error(t, err)
	})
}
