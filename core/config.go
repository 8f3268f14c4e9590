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

type (
	Config struct {
		Env          string
		Debug        bool
		TestMode     bool
		AppName      string
		Build        string
		WorkDir      string
		RollbarToken string

		Server  ServerConfig
		Storage StorageConfig
		Store   StoreConfig
	}

	ServerConfig struct {
		Host            string
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	StorageConfig struct {
		Engine string // memory, bolt, postgres, sqlite
		Path   string // bolt & sqlite file
		DSN    string // postgres
	}

	StoreConfig struct {
		DocumentKey   string
		SessionKey    string
		PointsPerTask int
		MaxLogEntries int
		AdminPassword string
		SystemName    string
	}
)

// NewConfig reads the configuration from defaults, the optional `config/.env.<env>` file and the environment.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "School Assistant")
	v.SetDefault("build", "develop")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("server.host", "0.0.0.0:8000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableReqLogs", false)
	v.SetDefault("storage.engine", "bolt")
	v.SetDefault("storage.path", "data/assistant.db")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("store.documentKey", "school_assistant_data")
	v.SetDefault("store.sessionKey", "school_assistant_session")
	v.SetDefault("store.pointsPerTask", 50)
	v.SetDefault("store.maxLogEntries", 1000)
	v.SetDefault("store.adminPassword", "admin123")
	v.SetDefault("store.systemName", "School Assistant")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	workDir := Getwd()
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		WorkDir:      workDir,
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:  v.GetBool("server.disableReqLogs"),
		},
		Storage: StorageConfig{
			Engine: strings.ToLower(v.GetString("storage.engine")),
			Path:   v.GetString("storage.path"),
			DSN:    v.GetString("storage.dsn"),
		},
		Store: StoreConfig{
			DocumentKey:   v.GetString("store.documentKey"),
			SessionKey:    v.GetString("store.sessionKey"),
			PointsPerTask: v.GetInt("store.pointsPerTask"),
			MaxLogEntries: v.GetInt("store.maxLogEntries"),
			AdminPassword: v.GetString("store.adminPassword"),
			SystemName:    v.GetString("store.systemName"),
		},
	}
}
