package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// environments
const (
	EnvDev  = "DEV"
	EnvTest = "TEST"
	EnvQA   = "QA"
	EnvProd = "PROD"
)

type (
	Config struct {
		Debug        bool
		Env          string
		Build        string
		AppName      string
		SecretKey    string
		Seed         bool
		RollbarToken string
		Server       ServerConfig
		Admin        AdminConfig
		Auth         AuthConfig
	}

	ServerConfig struct {
		Host            string
		Port            int
		DebugHost       string
		ShutdownTimeout time.Duration
		SessionTTL      time.Duration
		StaticDir       string
		MaxUploadSize   int64
	}

	// AdminConfig holds the single shared teacher credential.
	// PasswordHash (bcrypt) takes precedence over Password when set.
	AdminConfig struct {
		Username     string
		Password     string
		PasswordHash string
	}

	AuthConfig struct {
		// StrictPIN requires students with a PIN on file to supply it on login.
		StrictPIN bool
	}
)

// Addr returns the address the API server listens on.
func (sc ServerConfig) Addr() string {
	return net.JoinHostPort(sc.Host, strconv.Itoa(sc.Port))
}

// SecureCookies reports whether session cookies must carry the Secure attribute.
func (c *Config) SecureCookies() bool {
	return c.Env == EnvProd
}

// env var bindings for keys that do not follow the <ENV>_<KEY> convention
var envBindings = map[string]string{
	"appName":                "APP_NAME",
	"build":                  "BUILD",
	"debug":                  "DEBUG",
	"secretKey":              "JWT_SECRET",
	"seed":                   "SEED",
	"rollbarToken":           "ROLLBAR_TOKEN",
	"server.host":            "HOST",
	"server.port":            "PORT",
	"server.debugHost":       "DEBUG_HOST",
	"server.shutdownTimeout": "SHUTDOWN_TIMEOUT",
	"server.sessionTTL":      "SESSION_TTL",
	"server.staticDir":       "STATIC_DIR",
	"server.maxUploadSize":   "MAX_UPLOAD_SIZE",
	"admin.username":         "ADMIN_USER",
	"admin.password":         "ADMIN_PASS",
	"admin.passwordHash":     "ADMIN_PASS_HASH",
	"auth.strictPin":         "STRICT_PIN",
}

// NewConfig reads the configuration from defaults, `config/.env.<env>` and the environment.
func NewConfig() *Config {
	env := currentEnv()
	loadDotEnv(env)

	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", env != EnvProd)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "Sổ điểm")
	v.SetDefault("secretKey", "dev-secret")
	v.SetDefault("seed", env != EnvTest)
	v.SetDefault("rollbarToken", "")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.debugHost", "localhost:4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.sessionTTL", 2*time.Hour)
	v.SetDefault("server.staticDir", "public")
	v.SetDefault("server.maxUploadSize", int64(5<<20))
	v.SetDefault("admin.username", "")
	v.SetDefault("admin.password", "")
	v.SetDefault("admin.passwordHash", "")
	v.SetDefault("auth.strictPin", false)

	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, name := range envBindings {
		_ = v.BindEnv(key, name)
	}

	return &Config{
		Debug:        v.GetBool("debug"),
		Env:          env,
		Build:        v.GetString("build"),
		AppName:      v.GetString("appName"),
		SecretKey:    v.GetString("secretKey"),
		Seed:         v.GetBool("seed"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Port:            v.GetInt("server.port"),
			DebugHost:       v.GetString("server.debugHost"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			SessionTTL:      v.GetDuration("server.sessionTTL"),
			StaticDir:       v.GetString("server.staticDir"),
			MaxUploadSize:   v.GetInt64("server.maxUploadSize"),
		},
		Admin: AdminConfig{
			Username:     v.GetString("admin.username"),
			Password:     v.GetString("admin.password"),
			PasswordHash: v.GetString("admin.passwordHash"),
		},
		Auth: AuthConfig{
			StrictPIN: v.GetBool("auth.strictPin"),
		},
	}
}

// NewTestConfig returns a Config suited for tests: TEST env, debug off, no seed data.
func NewTestConfig() *Config {
	return &Config{
		Env:       EnvTest,
		Build:     "test",
		AppName:   "Sổ điểm",
		SecretKey: "test-secret",
		Server: ServerConfig{
			Host:            "localhost",
			Port:            3000,
			ShutdownTimeout: time.Second,
			SessionTTL:      2 * time.Hour,
			StaticDir:       "public",
			MaxUploadSize:   5 << 20,
		},
		Admin: AdminConfig{Username: "admin", Password: "secret"},
	}
}

// currentEnv returns one of DEV (local; default), TEST, QA, PROD.
func currentEnv() string {
	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case EnvDev, EnvTest, EnvQA, EnvProd:
		return env
	}
	if os.Getenv("NODE_ENV") == "production" {
		return EnvProd
	}
	return EnvDev
}

// loadDotEnv loads .env if it exists (ignore if it does not)
func loadDotEnv(env string) {
	dotEnvPath := filepath.Join(RootDir(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
}
