package config

import (
	"os"
	"strings"
)

// ApplyEnv overrides cfg with the process environment.
func ApplyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&cfg.Server.Addr, "APP_ADDR")
	set(&cfg.Server.GinMode, "GIN_MODE")
	set(&cfg.Database.Driver, "DB_DRIVER")
	set(&cfg.Database.DSN, "DB_DSN")
	set(&cfg.Auth.JWTSecret, "JWT_SECRET")
	set(&cfg.Amadeus.ClientID, "AMADEUS_CLIENT_ID")
	set(&cfg.Amadeus.ClientSecret, "AMADEUS_CLIENT_SECRET")
	set(&cfg.NER.Token, "NER_API_TOKEN")

	if raw := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); raw != "" {
		var origins []string
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.CORSOrigins = origins
	}
}
