package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	want := DefaultTuning()
	if diff := cmp.Diff(want, cfg.Tuning); diff != "" {
		t.Errorf("tuning mismatch (-want +got):\n%s", diff)
	}
	if cfg.Redis.SessionTTL != 2*time.Hour {
		t.Errorf("session ttl = %v", cfg.Redis.SessionTTL)
	}
	if cfg.Oracle.IsEnabled() {
		t.Error("oracle should be disabled without a base url")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  port: "9090"
oracle:
  base_url: http://oracle.internal:7000
  timeout: 250ms
tuning:
  version: exp-42
  difficulty:
    max_delta: 0.2
    stabilization_cycles: 3
  recommend:
    max_recommendations: 4
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Oracle.Timeout != 250*time.Millisecond {
		t.Errorf("oracle timeout = %v", cfg.Oracle.Timeout)
	}
	if got := cfg.Oracle.Endpoint("churn"); got != "http://oracle.internal:7000/v1/predict/churn" {
		t.Errorf("endpoint = %q", got)
	}
	if cfg.Tuning.Version != "exp-42" {
		t.Errorf("version = %q", cfg.Tuning.Version)
	}
	if cfg.Tuning.Difficulty.MaxDelta != 0.2 || cfg.Tuning.Difficulty.StabilizationCycles != 3 {
		t.Errorf("difficulty overrides not applied: %+v", cfg.Tuning.Difficulty)
	}
	// untouched weights keep their defaults
	if cfg.Tuning.Difficulty.OracleWeight != DefaultTuning().Difficulty.OracleWeight {
		t.Errorf("oracle weight = %v", cfg.Tuning.Difficulty.OracleWeight)
	}
	if cfg.Tuning.Recommend.MaxRecommendations != 4 {
		t.Errorf("max recommendations = %d", cfg.Tuning.Recommend.MaxRecommendations)
	}
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("REDIS_URI", "redis://cache:6379")
	t.Setenv("TUNING_VERSION", "from-env")
	t.Setenv("BRAINARCADE_TUNING__TELEMETRY__CAPACITY", "40")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := cfg.Redis.Address(); got != "cache:6379" {
		t.Errorf("redis address = %q", got)
	}
	if cfg.Tuning.Version != "from-env" {
		t.Errorf("version = %q", cfg.Tuning.Version)
	}
	if cfg.Tuning.Telemetry.Capacity != 40 {
		t.Errorf("capacity = %d", cfg.Tuning.Telemetry.Capacity)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"short jwt secret", "JWT_SECRET", "short"},
		{"bad log level", "LOG_LEVEL", "loud"},
		{"inverted bounds", "BRAINARCADE_TUNING__DIFFICULTY__MIN_DIFFICULTY", "1.5"},
		{"bad oracle url", "ORACLE_BASE_URL", "not a url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := LoadFile(""); err == nil {
				t.Errorf("expected validation error for %s=%s", tt.key, tt.val)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"MONGO_URI", "mongo.uri"},
		{"HTTP_PORT", "server.port"},
		{"ORACLE_API_KEY", "oracle.api_key"},
		{"BRAINARCADE_REDIS__PROFILE_TTL", "redis.profile_ttl"},
		{"HOME", ""},
		{"PATH", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
