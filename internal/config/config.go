// Package config holds the application configuration, loaded once at
// startup and injected into constructors - no process-wide singletons.
package config

import (
	"time"

	"github.com/curbz/skywatch/pkg/util"
)

type Config struct {
	Server struct {
		ListenAddr string `yaml:"listen_addr"`
		Region     string `yaml:"region"`
	} `yaml:"server"`

	Snapshot struct {
		// DataFile is the snapshot document on disk; URL, when set, wins
		// and the store fetches over HTTP instead.
		DataFile         string `yaml:"data_file"`
		URL              string `yaml:"url"`
		FetchTimeoutSecs int    `yaml:"fetch_timeout_secs"`
	} `yaml:"snapshot"`

	LLM struct {
		Endpoint    string  `yaml:"endpoint"`
		Model       string  `yaml:"model"`
		Temperature float64 `yaml:"temperature"`
		// APIKeyEnv names the environment variable holding the key, so the
		// key itself never lands in the config file.
		APIKeyEnv string `yaml:"api_key_env"`
	} `yaml:"llm"`

	Agents struct {
		FlightDetailLimit int `yaml:"flight_detail_limit"`
		// QueryBaseURL, when set, makes the roles consume the query
		// service over HTTP instead of in-process.
		QueryBaseURL string `yaml:"query_base_url"`
	} `yaml:"agents"`

	Simulator struct {
		OutputFile       string `yaml:"output_file"`
		TickIntervalSecs int    `yaml:"tick_interval_secs"`
	} `yaml:"simulator"`
}

func Load(path string) (*Config, error) {
	cfg, err := util.LoadConfig[Config](path)
	if err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8000"
	}
	if cfg.Server.Region == "" {
		cfg.Server.Region = "region1"
	}
	if cfg.Snapshot.FetchTimeoutSecs <= 0 {
		cfg.Snapshot.FetchTimeoutSecs = 5
	}
	if cfg.LLM.Endpoint == "" {
		cfg.LLM.Endpoint = "https://api.groq.com/openai/v1/chat/completions"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "llama-3.3-70b-versatile"
	}
	if cfg.LLM.Temperature <= 0 {
		cfg.LLM.Temperature = 0.3
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "GROQ_API_KEY"
	}
	if cfg.Simulator.OutputFile == "" {
		cfg.Simulator.OutputFile = cfg.Snapshot.DataFile
	}
	if cfg.Simulator.TickIntervalSecs <= 0 {
		cfg.Simulator.TickIntervalSecs = 5
	}
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Snapshot.FetchTimeoutSecs) * time.Second
}

func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Simulator.TickIntervalSecs) * time.Second
}
