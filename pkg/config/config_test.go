package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nearbytask/admin-dashboard/components/listing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, listing.PaginationPolicy{Width: 5, Ellipsis: true}, cfg.Listing.Pagination())
	assert.Equal(t, "Empty", cfg.Export.Placeholder)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("NEARBYTASK_API_BASE_URL", "https://api.nearbytask.test")
	t.Setenv("NEARBYTASK_API_TIMEOUT", "3s")
	t.Setenv("NEARBYTASK_LISTING_PAGE_SIZE", "25")
	t.Setenv("NEARBYTASK_LISTING_WINDOW", "3")
	t.Setenv("NEARBYTASK_LISTING_ELLIPSIS", "false")
	t.Setenv("NEARBYTASK_LOG_JSON", "true")
	t.Setenv("NEARBYTASK_UNKNOWN_KEY", "ignored")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.nearbytask.test", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, 25, cfg.Listing.PageSize)
	assert.Equal(t, listing.PaginationPolicy{Width: 3}, cfg.Listing.Pagination())
	assert.True(t, cfg.Log.JSON)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"window":    {"NEARBYTASK_LISTING_WINDOW", "4"},
		"page size": {"NEARBYTASK_LISTING_PAGE_SIZE", "0"},
		"level":     {"NEARBYTASK_LOG_LEVEL", "loud"},
		"base path": {"NEARBYTASK_SERVER_BASE_PATH", "admin/"},
		"base url":  {"NEARBYTASK_API_BASE_URL", "not a url"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestEnvMappingsCoverNestedKeys(t *testing.T) {
	paths := map[string]string{}
	for _, m := range EnvMappings() {
		paths[m.EnvVar] = m.ConfigPath
	}
	assert.Equal(t, "api.base_url", paths["API_BASE_URL"])
	assert.Equal(t, "screens.manifest", paths["SCREENS_MANIFEST"])
	assert.Equal(t, "notify.token_url", paths["NOTIFY_TOKEN_URL"])
}
