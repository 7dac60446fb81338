package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Host        string   `yaml:"host"`
		Port        int      `yaml:"port"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Indicators struct {
		RSIPeriod int `yaml:"rsi_period"`
		MAPeriod  int `yaml:"ma_period"`
		MACDFast  int `yaml:"macd_fast"`
		MACDSlow  int `yaml:"macd_slow"`
	} `yaml:"indicators"`
	Sentiment struct {
		Enabled           bool    `yaml:"enabled"`
		Model             string  `yaml:"model"`
		APIKeyEnv         string  `yaml:"api_key_env"`
		PositiveThreshold float64 `yaml:"positive_threshold"`
		NegativeThreshold float64 `yaml:"negative_threshold"`
		MaxHeadlines      int     `yaml:"max_headlines"`

		// Resolved from APIKeyEnv at load time so nothing downstream
		// consults the environment per request.
		APIKey string `yaml:"-"`
	} `yaml:"sentiment"`
	Data struct {
		DefaultPeriod string `yaml:"default_period"`
	} `yaml:"data"`
	Recorder struct {
		Driver string `yaml:"driver"` // "sqlite" or "none"
		Path   string `yaml:"path"`
	} `yaml:"recorder"`
	Watchlist struct {
		Symbols []string `yaml:"symbols"`
		Cron    string   `yaml:"cron"`
		Period  string   `yaml:"period"`
	} `yaml:"watchlist"`
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535, got %d", c.Server.Port)
	}
	if c.Indicators.RSIPeriod <= 0 || c.Indicators.MAPeriod <= 0 {
		return fmt.Errorf("indicator periods must be positive")
	}
	if c.Indicators.MACDFast >= c.Indicators.MACDSlow {
		return fmt.Errorf("indicators.macd_fast (%d) must be below macd_slow (%d)",
			c.Indicators.MACDFast, c.Indicators.MACDSlow)
	}
	if c.Sentiment.PositiveThreshold <= c.Sentiment.NegativeThreshold {
		return fmt.Errorf("sentiment.positive_threshold must be above negative_threshold")
	}
	if c.Recorder.Driver != "sqlite" && c.Recorder.Driver != "none" {
		return fmt.Errorf("recorder.driver must be 'sqlite' or 'none', got '%s'", c.Recorder.Driver)
	}
	if len(c.Watchlist.Symbols) > 0 && c.Watchlist.Cron == "" {
		return fmt.Errorf("watchlist.cron is required when watchlist.symbols is set")
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()

	if c.Sentiment.APIKeyEnv != "" {
		c.Sentiment.APIKey = os.Getenv(c.Sentiment.APIKeyEnv)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = 14
	}
	if c.Indicators.MAPeriod == 0 {
		c.Indicators.MAPeriod = 20
	}
	if c.Indicators.MACDFast == 0 {
		c.Indicators.MACDFast = 12
	}
	if c.Indicators.MACDSlow == 0 {
		c.Indicators.MACDSlow = 26
	}
	if c.Sentiment.Model == "" {
		c.Sentiment.Model = "mixtral-8x7b-32768"
	}
	if c.Sentiment.APIKeyEnv == "" {
		c.Sentiment.APIKeyEnv = "GROQ_API_KEY"
	}
	if c.Sentiment.PositiveThreshold == 0 && c.Sentiment.NegativeThreshold == 0 {
		c.Sentiment.PositiveThreshold = 0.1
		c.Sentiment.NegativeThreshold = -0.1
	}
	if c.Sentiment.MaxHeadlines == 0 {
		c.Sentiment.MaxHeadlines = 5
	}
	if c.Data.DefaultPeriod == "" {
		c.Data.DefaultPeriod = "1y"
	}
	if c.Recorder.Driver == "" {
		c.Recorder.Driver = "none"
	}
	if c.Recorder.Driver == "sqlite" && c.Recorder.Path == "" {
		c.Recorder.Path = "stock_research.db"
	}
	if c.Watchlist.Period == "" {
		c.Watchlist.Period = c.Data.DefaultPeriod
	}
}
