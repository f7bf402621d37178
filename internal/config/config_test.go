package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

// TestNewConfig documents the defaults; a failing case means a default changed.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default depth is 2", func(t *testing.T) {
		t.Parallel()
		if cfg.Depth != 2 {
			t.Errorf("expected Depth 2, got %d", cfg.Depth)
		}
	})

	t.Run("default threads is 5", func(t *testing.T) {
		t.Parallel()
		if cfg.Threads != 5 {
			t.Errorf("expected Threads 5, got %d", cfg.Threads)
		}
	})

	t.Run("default rate limit is 1 per second", func(t *testing.T) {
		t.Parallel()
		if cfg.RateLimit != 1 {
			t.Errorf("expected RateLimit 1, got %v", cfg.RateLimit)
		}
	})

	t.Run("default timeout is 10 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 10*time.Second {
			t.Errorf("expected Timeout 10s, got %v", cfg.Timeout)
		}
	})

	t.Run("default files", func(t *testing.T) {
		t.Parallel()
		if cfg.OutputFile != "unique_params.txt" {
			t.Errorf("expected OutputFile unique_params.txt, got %q", cfg.OutputFile)
		}
		if cfg.ErrorLogFile != "crash_log.log" {
			t.Errorf("expected ErrorLogFile crash_log.log, got %q", cfg.ErrorLogFile)
		}
	})

	t.Run("certificate verification is on", func(t *testing.T) {
		t.Parallel()
		if cfg.Insecure {
			t.Error("expected Insecure to be false")
		}
	})

	t.Run("history is recorded in the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB || cfg.DBDir != XDGDataDir() {
			t.Errorf("unexpected history settings: SaveToDB=%v DBDir=%q", cfg.SaveToDB, cfg.DBDir)
		}
	})

	t.Run("user agent identifies as a browser", func(t *testing.T) {
		t.Parallel()
		if !strings.HasPrefix(cfg.UserAgent, "Mozilla/5.0") {
			t.Errorf("unexpected UserAgent %q", cfg.UserAgent)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.StartURL = "http://example.test/"
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{name: "valid", modify: func(*Config) {}},
		{name: "no target", modify: func(c *Config) { c.StartURL = "" }, wantErr: ErrNoTarget},
		{name: "zero depth", modify: func(c *Config) { c.Depth = 0 }, wantErr: ErrInvalidDepth},
		{name: "zero threads", modify: func(c *Config) { c.Threads = 0 }, wantErr: ErrInvalidThreads},
		{name: "zero rate", modify: func(c *Config) { c.RateLimit = 0 }, wantErr: ErrInvalidRateLimit},
		{name: "negative rate", modify: func(c *Config) { c.RateLimit = -1 }, wantErr: ErrInvalidRateLimit},
		{name: "fractional rate", modify: func(c *Config) { c.RateLimit = 0.5 }},
		{name: "zero timeout", modify: func(c *Config) { c.Timeout = 0 }, wantErr: ErrInvalidTimeout},
		{name: "no output file", modify: func(c *Config) { c.OutputFile = "" }, wantErr: ErrNoOutputFile},
		{name: "negative body size", modify: func(c *Config) { c.MaxBodySize = -1 }, wantErr: ErrInvalidMaxBodySize},
		{name: "tor", modify: func(c *Config) { c.UseTor = true }},
		{name: "tor with proxy", modify: func(c *Config) { c.UseTor, c.ProxyURL = true, "socks5://127.0.0.1:9050" }, wantErr: ErrTorWithProxy},
		{name: "tor without startup timeout", modify: func(c *Config) { c.UseTor, c.TorStartupTimeout = true, 0 }, wantErr: ErrInvalidTorTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFileGetSiteConfig(t *testing.T) {
	t.Parallel()

	cf := &File{
		Defaults: SiteConfig{
			Depth:     3,
			Cookie:    "default=1",
			UserAgent: "default-agent",
			Headers:   map[string]string{"X-Default": "d", "X-Shared": "default"},
		},
		Sites: map[string]SiteConfig{
			"shop.example.test": {
				Depth:     5,
				RateLimit: 0.5,
				Headers:   map[string]string{"X-Shared": "site"},
			},
		},
	}

	t.Run("site overrides defaults", func(t *testing.T) {
		t.Parallel()

		sc := cf.GetSiteConfig("shop.example.test")
		if sc.Depth != 5 || sc.RateLimit != 0.5 {
			t.Errorf("site values not applied: %+v", sc)
		}
		if sc.Cookie != "default=1" || sc.UserAgent != "default-agent" {
			t.Errorf("defaults lost: %+v", sc)
		}
		if sc.Headers["X-Default"] != "d" || sc.Headers["X-Shared"] != "site" {
			t.Errorf("headers not merged: %v", sc.Headers)
		}
	})

	t.Run("host match ignores case", func(t *testing.T) {
		t.Parallel()

		if sc := cf.GetSiteConfig("SHOP.example.test"); sc.Depth != 5 {
			t.Errorf("expected site config, got %+v", sc)
		}
	})

	t.Run("unknown host gets defaults", func(t *testing.T) {
		t.Parallel()

		sc := cf.GetSiteConfig("other.test")
		if sc.Depth != 3 || sc.Headers["X-Shared"] != "default" {
			t.Errorf("expected defaults, got %+v", sc)
		}
	})

	t.Run("merging does not mutate defaults", func(t *testing.T) {
		t.Parallel()

		_ = cf.GetSiteConfig("shop.example.test")
		if cf.Defaults.Headers["X-Shared"] != "default" {
			t.Error("defaults were mutated")
		}
	})
}

func TestConfigApplySiteConfig(t *testing.T) {
	t.Parallel()

	sc := SiteConfig{
		Depth:     4,
		Threads:   2,
		RateLimit: 3,
		UserAgent: "site-agent",
		Cookie:    "sid=1",
		Proxy:     "socks5://127.0.0.1:9050",
		Headers:   map[string]string{"x-token": "site", "X-Extra": "e"},
	}

	t.Run("applies file values", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplySiteConfig(sc, Overrides{})
		if cfg.Depth != 4 || cfg.Threads != 2 || cfg.RateLimit != 3 {
			t.Errorf("numeric values not applied: %+v", cfg)
		}
		if cfg.UserAgent != "site-agent" || cfg.Cookie != "sid=1" || cfg.ProxyURL != "socks5://127.0.0.1:9050" {
			t.Errorf("string values not applied: %+v", cfg)
		}
		want := []string{"X-Extra: e", "x-token: site"}
		if !slices.Equal(cfg.Headers, want) {
			t.Errorf("Headers = %v, want %v", cfg.Headers, want)
		}
	})

	t.Run("command line wins", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Depth = 7
		cfg.Cookie = "cli=1"
		cfg.Headers = []string{"X-Token: cli"}
		cfg.ApplySiteConfig(sc, Overrides{Depth: true, Cookie: true})

		if cfg.Depth != 7 || cfg.Cookie != "cli=1" {
			t.Errorf("explicit values overwritten: %+v", cfg)
		}
		want := []string{"X-Token: cli", "X-Extra: e"}
		if !slices.Equal(cfg.Headers, want) {
			t.Errorf("Headers = %v, want %v", cfg.Headers, want)
		}
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile(filepath.Join(t.TempDir(), ".paramscan"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".paramscan")
		content := `defaults:
  depth: 3
  rateLimit: 2.5
sites:
  example.test:8080:
    cookie: "session=xyz"
    threads: 8
    headers:
      Authorization: "Bearer token"
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Defaults.Depth != 3 || cfg.Defaults.RateLimit != 2.5 {
			t.Errorf("unexpected defaults: %+v", cfg.Defaults)
		}
		site, ok := cfg.Sites["example.test:8080"]
		if !ok {
			t.Fatal("expected example.test:8080 in sites")
		}
		if site.Threads != 8 || site.Cookie != "session=xyz" || site.Headers["Authorization"] != "Bearer token" {
			t.Errorf("unexpected site: %+v", site)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".paramscan")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil Sites map", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".paramscan")
		if err := os.WriteFile(configPath, []byte("defaults:\n  depth: 2\n"), 0600); err != nil {
			t.Fatal(err)
		}
		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Sites == nil {
			t.Error("expected Sites map to be initialized")
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(configPath); got != configPath {
			t.Errorf("expected %q, got %q", configPath, got)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{"data": XDGDataDir(), "config": XDGConfigDir()} {
		if filepath.Base(dir) != AppName {
			t.Errorf("%s dir %q should end with %q", name, dir, AppName)
		}
	}
}
