package config

import "time"

// Config is the top-level promptforge configuration, corresponding to
// .promptforge.yml.
type Config struct {
	// DataDir holds the SQLite database and exported files.
	DataDir string `yaml:"data_dir" koanf:"data_dir"`
	// Port is the HTTP port the local API server listens on.
	Port int `yaml:"port" koanf:"port"`
	// AllowAllOrigins relaxes CORS for local development.
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	// Temperature is the sampling temperature used for refinement calls.
	Temperature float64 `yaml:"temperature" koanf:"temperature"`
	// ModelTimeout bounds each outbound model call. Model round trips are
	// the long pole, so this is materially larger than StorageTimeout.
	ModelTimeout time.Duration `yaml:"model_timeout" koanf:"model_timeout"`
	// StorageTimeout bounds storage-only HTTP requests.
	StorageTimeout time.Duration `yaml:"storage_timeout" koanf:"storage_timeout"`
	// MaxAnswerTokens caps the final refinement response size.
	MaxAnswerTokens int `yaml:"max_answer_tokens" koanf:"max_answer_tokens"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" koanf:"log_level"`
}
