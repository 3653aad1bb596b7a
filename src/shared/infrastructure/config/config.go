package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config configuración completa del servicio storepos
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	API            APIConfig            `yaml:"api"`
	Session        SessionConfig        `yaml:"session"`
	Snapshot       SnapshotConfig       `yaml:"snapshot"`
	Metrics        MetricsConfig        `yaml:"metrics"`
	Log            LogConfig            `yaml:"log"`
	PaymentMethods PaymentMethodsConfig `yaml:"payment_methods"`
	Sale           SaleConfig           `yaml:"sale"`
}

// ServerConfig servidor HTTP local
type ServerConfig struct {
	Port string `yaml:"port"`
}

// APIConfig API remoto de inventario
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// SessionConfig almacenamiento de la venta por lote en curso
type SessionConfig struct {
	Store    string `yaml:"store"` // file | memory | postgres | mysql
	Key      string `yaml:"key"`
	FileDir  string `yaml:"file_dir"`
	DSN      string `yaml:"dsn"`
	Table    string `yaml:"table"`
	Location string `yaml:"location"`
}

// SnapshotConfig política de reintentos del snapshot de stock
type SnapshotConfig struct {
	Attempts     int           `yaml:"attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
}

// MetricsConfig endpoint /metrics
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LogConfig nivel de log
type LogConfig struct {
	Level string `yaml:"level"`
}

// PaymentMethodsConfig catálogo de métodos de pago
type PaymentMethodsConfig struct {
	Options    []string `yaml:"options"`
	LoadFromDB bool     `yaml:"load_from_db"`
}

// SaleConfig reglas del flujo de venta
type SaleConfig struct {
	RequiredBuyerFields []string `yaml:"required_buyer_fields"`
	LowStockPriority    string   `yaml:"low_stock_priority"`
}

// Default devuelve una configuración por defecto
func Default() Config {
	return Config{
		Server: ServerConfig{Port: "8080"},
		API: APIConfig{
			BaseURL: "http://localhost:5000",
			Timeout: 10 * time.Second,
		},
		Session: SessionConfig{
			Store:    "file",
			Key:      "batchSaleData",
			FileDir:  ".storepos",
			Table:    "batch_sale_sessions",
			Location: "store",
		},
		Snapshot: SnapshotConfig{
			Attempts:     4,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     5 * time.Second,
		},
		Log: LogConfig{Level: "info"},
		PaymentMethods: PaymentMethodsConfig{
			Options: []string{"Cash", "Bank Transfer", "Tele Birr", "E Birr", "Other"},
		},
		Sale: SaleConfig{
			RequiredBuyerFields: []string{"Full_name", "Contact"},
			LowStockPriority:    "High",
		},
	}
}

// Load lee el archivo YAML (opcional), aplica variables de entorno y valida
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("error parsing config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// Sin archivo: defaults + entorno
		default:
			return cfg, fmt.Errorf("error reading config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// getEnv obtiene una variable de entorno o devuelve un valor por defecto
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.API.BaseURL = getEnv("STOREPOS_API_URL", cfg.API.BaseURL)
	cfg.API.Token = getEnv("STOREPOS_API_TOKEN", cfg.API.Token)
	if v := os.Getenv("STOREPOS_API_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.API.Timeout = d
		}
	}
	cfg.Session.Store = getEnv("STOREPOS_SESSION_STORE", cfg.Session.Store)
	cfg.Session.DSN = getEnv("STOREPOS_SESSION_DSN", cfg.Session.DSN)
	cfg.Session.FileDir = getEnv("STOREPOS_SESSION_DIR", cfg.Session.FileDir)
	cfg.Session.Location = getEnv("STOREPOS_LOCATION", cfg.Session.Location)
	cfg.Log.Level = getEnv("STOREPOS_LOG_LEVEL", cfg.Log.Level)
	if v := os.Getenv("PROMETHEUS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
}

// Validate verifica la configuración cargada
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be greater than 0")
	}
	if c.Session.Key == "" {
		return errors.New("session.key is required")
	}
	switch strings.ToLower(c.Session.Store) {
	case "file":
		if c.Session.FileDir == "" {
			return errors.New("session.file_dir is required for the file store")
		}
	case "memory":
	case "postgres", "mysql":
		if c.Session.DSN == "" {
			return fmt.Errorf("session.dsn is required for the %s store", c.Session.Store)
		}
	default:
		return fmt.Errorf("unsupported session.store %q", c.Session.Store)
	}
	if store := strings.ToLower(c.Session.Store); c.PaymentMethods.LoadFromDB && (store == "file" || store == "memory") {
		return errors.New("payment_methods.load_from_db requires a postgres or mysql session store")
	}
	if c.Snapshot.Attempts < 1 {
		return errors.New("snapshot.attempts must be at least 1")
	}
	return nil
}
