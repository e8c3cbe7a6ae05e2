package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Contains(t, cfg.Search.Sites, "indeed")
	assert.Equal(t, 10000, cfg.Search.ResultsWanted)
	assert.Equal(t, 336, cfg.Search.HoursOld)
	assert.True(t, cfg.Search.RemoteOnly)
	assert.Equal(t, "software|engineer|sde|backend|fullstack|developer", cfg.Filter.TitleInclude)
	assert.Equal(t, []string{"fulltime", "full-time"}, cfg.Filter.AllowedJobTypes)
	assert.Equal(t, []string{"hourly"}, cfg.Filter.ExcludedIntervals)
	assert.Equal(t, 10000, cfg.Score.KeywordBonuses["backend"])
	assert.Equal(t, -200, cfg.Score.KeywordBonuses["frontend"])
	assert.Equal(t, 50000, cfg.Score.RemoteBonus)
	assert.Contains(t, cfg.Export.DropColumns, "description")
	assert.Equal(t, "jobscout.db", cfg.Store.Path)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverride(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })

	t.Setenv("JOBSCOUT_SEARCH_HOURS_OLD", "24")
	t.Setenv("JOBSCOUT_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.Search.HoursOld)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Search: SearchConfig{Sites: []string{"indeed"}},
			Export: ExportConfig{Delimiter: ","},
			Store:  StoreConfig{Path: "jobscout.db"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad include regexp",
			mutate:  func(c *Config) { c.Filter.TitleInclude = "([unclosed" },
			wantErr: "filter.title_include",
		},
		{
			name:    "bad exclude regexp",
			mutate:  func(c *Config) { c.Filter.TitleExclude = "*junk" },
			wantErr: "filter.title_exclude",
		},
		{
			name:    "no sites",
			mutate:  func(c *Config) { c.Search.Sites = nil },
			wantErr: "search.sites",
		},
		{
			name:    "negative hours old",
			mutate:  func(c *Config) { c.Search.HoursOld = -1 },
			wantErr: "search.hours_old",
		},
		{
			name:    "multi-char delimiter",
			mutate:  func(c *Config) { c.Export.Delimiter = ",," },
			wantErr: "export.delimiter",
		},
		{
			name:    "empty store path",
			mutate:  func(c *Config) { c.Store.Path = "" },
			wantErr: "store.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
