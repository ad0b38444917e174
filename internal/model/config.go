package model

import "time"

// Config is the complete reliefdesk configuration
type Config struct {
	Server        ServerConfig       `yaml:"server" mapstructure:"server"`
	LLM           LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Stubs         StubConfig         `yaml:"stubs" mapstructure:"stubs"`
	Disbursement  DisbursementConfig `yaml:"disbursement" mapstructure:"disbursement"`
	Notifications NotificationConfig `yaml:"notifications" mapstructure:"notifications"`
	Concurrency   ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	Output        OutputConfig       `yaml:"output" mapstructure:"output"`
}

// ServerConfig controls the HTTP API
type ServerConfig struct {
	Addr         string        `yaml:"addr" mapstructure:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// LLMConfig selects and tunes the AI provider
type LLMConfig struct {
	Provider          string        `yaml:"provider" mapstructure:"provider"` // gemini, openai, anthropic, ollama, offline, "" (disabled)
	Model             string        `yaml:"model" mapstructure:"model"`
	APIKey            string        `yaml:"-" mapstructure:"api_key"` // Prefer environment variables
	BaseURL           string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout           int           `yaml:"timeout" mapstructure:"timeout"` // Seconds
	MaxTokens         int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	AnalysisCacheTTL  time.Duration `yaml:"analysis_cache_ttl" mapstructure:"analysis_cache_ttl"`
	AnalysisCacheDir  string        `yaml:"analysis_cache_dir,omitempty" mapstructure:"analysis_cache_dir"` // Persist analyses across runs when set
	HTTPProxy         string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy           string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"` // Hosts dialled directly, NO_PROXY syntax
}

// StubConfig sets the simulated latency of the government system stubs
type StubConfig struct {
	IdentityLatency time.Duration `yaml:"identity_latency" mapstructure:"identity_latency"`
	RecordLatency   time.Duration `yaml:"record_latency" mapstructure:"record_latency"`
	PaymentLatency  time.Duration `yaml:"payment_latency" mapstructure:"payment_latency"`
	BankLinkDelay   time.Duration `yaml:"bank_link_delay" mapstructure:"bank_link_delay"`
}

// DisbursementConfig controls the payout retry policy
type DisbursementConfig struct {
	Attempts       int           `yaml:"attempts" mapstructure:"attempts"`
	AttemptTimeout time.Duration `yaml:"attempt_timeout" mapstructure:"attempt_timeout"`
	BackoffBase    time.Duration `yaml:"backoff_base" mapstructure:"backoff_base"`
	BackoffMax     time.Duration `yaml:"backoff_max" mapstructure:"backoff_max"`
	SettleDelay    time.Duration `yaml:"settle_delay" mapstructure:"settle_delay"`
}

// NotificationConfig bounds the notification queue
type NotificationConfig struct {
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Capacity int           `yaml:"capacity" mapstructure:"capacity"`
}

// ConcurrencyConfig controls batch verification
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig controls CLI rendering
type OutputConfig struct {
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
	Locale  string `yaml:"locale" mapstructure:"locale"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		LLM: LLMConfig{
			Provider:          "offline",
			Timeout:           30,
			MaxTokens:         1000,
			RequestsPerSecond: 2,
			Burst:             4,
			AnalysisCacheTTL:  30 * time.Minute,
		},
		Stubs: StubConfig{
			IdentityLatency: 1500 * time.Millisecond,
			RecordLatency:   2000 * time.Millisecond,
			PaymentLatency:  3000 * time.Millisecond,
			BankLinkDelay:   1000 * time.Millisecond,
		},
		Disbursement: DisbursementConfig{
			Attempts:       3,
			AttemptTimeout: 10 * time.Second,
			BackoffBase:    500 * time.Millisecond,
			BackoffMax:     4 * time.Second,
			SettleDelay:    1000 * time.Millisecond,
		},
		Notifications: NotificationConfig{
			TTL:      5 * time.Second,
			Capacity: 5,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			Locale: "en-IN",
		},
	}
}
