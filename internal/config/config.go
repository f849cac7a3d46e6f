package config

import (
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Config is the layered runtime configuration shared by cmd/retrievalctl
// and internal/mcpserver.
type Config struct {
	EmbeddingsDisabled  bool   `mapstructure:"embeddingsDisabled"`
	CrossEncoderEnabled bool   `mapstructure:"crossEncoderEnabled"`
	CrossEncoderModel   string `mapstructure:"crossEncoderModel"`
	ModelCacheDir       string `mapstructure:"modelCacheDir"`
	HomeDirOverride     string `mapstructure:"homeDirOverride"`
	EmbedCacheBackend   string `mapstructure:"embedCacheBackend"` // "sqlite" or "redis"
	EmbedCachePath      string `mapstructure:"embedCachePath"`
	RedisAddr           string `mapstructure:"redisAddr"`
	MaxIterations       int    `mapstructure:"maxIterations"`
	TokenBudget         int    `mapstructure:"tokenBudget"`
}

// EnvOverride records one environment-variable override applied on top of
// the defaults, so `retrievalctl config show` can report where a value
// came from.
type EnvOverride struct {
	EnvVar    string
	Path      string
	FromValue string
}

// envBindings are the environment switches spec.md §6 names, plus the
// ambient cache-backend and pipeline-tuning switches this expansion adds.
var envBindings = []struct {
	env  string
	path string
}{
	{"EMBEDDINGS_DISABLED", "embeddingsDisabled"},
	{"CROSS_ENCODER_ENABLED", "crossEncoderEnabled"},
	{"CROSS_ENCODER_MODEL", "crossEncoderModel"},
	{"MODEL_CACHE_DIR", "modelCacheDir"},
	{"HOME_DIR_OVERRIDE", "homeDirOverride"},
	{"EMBED_CACHE_BACKEND", "embedCacheBackend"},
	{"EMBED_CACHE_PATH", "embedCachePath"},
	{"REDIS_ADDR", "redisAddr"},
	{"RETRIEVAL_MAX_ITERATIONS", "maxIterations"},
	{"RETRIEVAL_TOKEN_BUDGET", "tokenBudget"},
}

// Default returns the configuration used when no environment switch is set.
func Default() *Config {
	return &Config{
		EmbedCacheBackend: "sqlite",
		EmbedCachePath:    "~/.retrieval/embed-cache.db",
		RedisAddr:         "localhost:6379",
		MaxIterations:     2,
		TokenBudget:       6000,
	}
}

// Load builds a viper instance seeded with Default's values, binds the
// recognised environment switches, and returns the resulting Config along
// with the list of overrides actually applied (for diagnostics).
func Load() (*Config, []EnvOverride, error) {
	v := viper.New()
	setDefaults(v, Default())

	var overrides []EnvOverride
	for _, b := range envBindings {
		val, ok := os.LookupEnv(b.env)
		if !ok {
			continue
		}
		if err := v.BindEnv(b.path, b.env); err != nil {
			return nil, nil, err
		}
		overrides = append(overrides, EnvOverride{EnvVar: b.env, Path: b.path, FromValue: val})
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, overrides, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("embeddingsDisabled", d.EmbeddingsDisabled)
	v.SetDefault("crossEncoderEnabled", d.CrossEncoderEnabled)
	v.SetDefault("crossEncoderModel", d.CrossEncoderModel)
	v.SetDefault("modelCacheDir", d.ModelCacheDir)
	v.SetDefault("homeDirOverride", d.HomeDirOverride)
	v.SetDefault("embedCacheBackend", d.EmbedCacheBackend)
	v.SetDefault("embedCachePath", d.EmbedCachePath)
	v.SetDefault("redisAddr", d.RedisAddr)
	v.SetDefault("maxIterations", d.MaxIterations)
	v.SetDefault("tokenBudget", d.TokenBudget)
}

// EnvVars lists every recognised environment variable, for the
// `retrievalctl config env` subcommand.
func EnvVars() []string {
	names := make([]string, len(envBindings))
	for i, b := range envBindings {
		names[i] = b.env
	}
	return names
}

// ParseBoolEnv mirrors the teacher's lenient boolean environment parsing
// (strconv.ParseBool, defaulting to false on any malformed value). Load does
// not call it: EMBEDDINGS_DISABLED/CROSS_ENCODER_ENABLED are decoded by viper.
func ParseBoolEnv(raw string) bool {
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return b
}
