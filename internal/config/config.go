// Package config handles configuration loading for the admin backend.
package config

import "os"

// Config holds all runtime configuration read from the environment.
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	Port       string

	// AuthPolicy selects the authorization decision function: "role"
	// (holding the admin role grants everything, the current behavior) or
	// "permission" (the per-resource grant document is enforced).
	AuthPolicy string

	// FreeShippingBypassesConstraints controls whether a met free-shipping
	// threshold admits a rate that fails its own weight/price bounds.
	FreeShippingBypassesConstraints bool
}

// Load reads configuration from environment variables with development defaults.
func Load() *Config {
	return &Config{
		DBHost:                          getEnv("DB_HOST", "localhost"),
		DBPort:                          getEnv("DB_PORT", "5432"),
		DBUser:                          getEnv("DB_USER", "postgres"),
		DBPassword:                      getEnv("DB_PASSWORD", "postgres"),
		DBName:                          getEnv("DB_NAME", "postgres"),
		DBSSLMode:                       getEnv("DB_SSLMODE", "disable"),
		Port:                            getEnv("PORT", "8080"),
		AuthPolicy:                      getEnv("AUTH_POLICY", "role"),
		FreeShippingBypassesConstraints: getEnv("FREE_SHIPPING_BYPASSES_CONSTRAINTS", "true") != "false",
	}
}

// DSN assembles the Postgres connection string.
func (c *Config) DSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
