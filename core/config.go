package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var Conf *viper.Viper

func init() {
	Conf = viper.New()

	// defaults
	Conf.SetTypeByDefaultValue(true)
	Conf.SetDefault("debug", true)
	Conf.SetDefault("appName", "UPT-PIK Web")
	Conf.SetDefault("serverAddr", ":3000")
	Conf.SetDefault("backendBaseURL", "http://localhost:5000/api/v1")
	Conf.SetDefault("backendTimeout", 15*time.Second)
	Conf.SetDefault("backendRateLimit", 20) // requests per second towards the backend
	Conf.SetDefault("defaultTimezone", "Asia/Jakarta")
	Conf.SetDefault("loginRoute", "/login")
	Conf.SetDefault("adminDashboardRoute", "/admin/dashboard")
	Conf.SetDefault("homeRoute", "/")
	Conf.SetDefault("sessionCookieName", "pik_sid")
	Conf.SetDefault("sessionCookieMaxAge", 7*24*time.Hour)
	Conf.SetDefault("tokenRefreshWithin", time.Hour)
	Conf.SetDefault("redisURL", "redis://localhost:6379/0")
	Conf.SetDefault("rollbarToken", "")
	Conf.SetDefault("notifPollInterval", 30*time.Second)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case strings.ToUpper("TEST"):
		Conf.SetDefault("testMode", true)
	}
	Conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	Conf.AutomaticEnv()
}

// DefaultLocation resolves the configured IANA timezone, falling back to UTC
// when it cannot be loaded.
func DefaultLocation() *time.Location {
	loc, err := time.LoadLocation(Conf.GetString("defaultTimezone"))
	if err != nil {
		return time.UTC
	}
	return loc
}
