package config

import "time"

// DefaultCORSOrigins are the local dev servers allowed when no browser
// origins are configured.
var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 20 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 20 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60 * time.Second
	}
	if cfg.Server.WSWordDelay == 0 {
		cfg.Server.WSWordDelay = 50 * time.Millisecond
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "mysql"
	}
	if cfg.Database.DSN == "" {
		if cfg.Database.Driver == "sqlite3" {
			cfg.Database.DSN = "file:travel.db?_foreign_keys=on&_busy_timeout=5000"
		} else {
			cfg.Database.DSN = "root:@tcp(127.0.0.1:3306)/travel_app?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"
		}
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "change-me"
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if cfg.Model.Path == "" {
		cfg.Model.Path = "data/models/intent.snappy"
	}
	if cfg.Model.TrainingData == "" {
		cfg.Model.TrainingData = "data/synthetic_travel_conversations_for_training.csv"
	}
	if cfg.Model.MaxFeatures == 0 {
		cfg.Model.MaxFeatures = 1500
	}
	if cfg.Datasets.Dir == "" {
		cfg.Datasets.Dir = "data"
	}
	if cfg.NER.Provider == "" {
		cfg.NER.Provider = "gazetteer"
	}
	if cfg.NER.Endpoint == "" {
		cfg.NER.Endpoint = "https://api-inference.huggingface.co/models/dslim/bert-base-NER"
	}
	if cfg.NER.Timeout == 0 {
		cfg.NER.Timeout = 15 * time.Second
	}
	if cfg.Amadeus.BaseURL == "" {
		cfg.Amadeus.BaseURL = "https://test.api.amadeus.com"
	}
	if cfg.Amadeus.OnTimeURL == "" {
		cfg.Amadeus.OnTimeURL = "https://api.amadeus.com/v1/airport/predictions/on-time"
	}
	if cfg.Amadeus.Timeout == 0 {
		cfg.Amadeus.Timeout = 20 * time.Second
	}
	if cfg.ZoomCar.BaseURL == "" {
		cfg.ZoomCar.BaseURL = "https://freeapi.miniprojectideas.com/api/ZoomCar"
	}
	if cfg.ZoomCar.Timeout == 0 {
		cfg.ZoomCar.Timeout = 15 * time.Second
	}
	if cfg.Jobs.CacheTTL == 0 {
		cfg.Jobs.CacheTTL = 6 * time.Hour
	}
	if cfg.Jobs.CachePurgeInterval == 0 {
		cfg.Jobs.CachePurgeInterval = 30 * time.Minute
	}
	if cfg.Jobs.AdvisoryInterval == 0 {
		cfg.Jobs.AdvisoryInterval = time.Hour
	}
}
