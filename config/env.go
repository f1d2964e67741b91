// config/env.go
package config

import (
	"log"
	"os"
)

// requiredEnvVars must all be present at startup; a missing one is fatal.
var requiredEnvVars = []string{
	"MONGO_URI",
	"JWT_SECRET",
	"RAZORPAY_KEY_ID",
	"RAZORPAY_KEY_SECRET",
	"RAZORPAY_WEBHOOK_SECRET",
	"SENDGRID_API_KEY",
	"EMAIL_FROM",
}

// ValidateEnv checks required environment variables and exits if any is missing.
func ValidateEnv() {
	missing := []string{}
	for _, name := range requiredEnvVars {
		if os.Getenv(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		for _, name := range missing {
			log.Printf("Missing required environment variable: %s", name)
		}
		log.Fatal("Environment validation failed; refusing to start")
	}
}

// GetEnv returns the value of an environment variable or a fallback.
func GetEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
