// Package config loads application configuration from file and
// environment and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/arr-heatmap/internal/normalize"
)

// Config holds the full application configuration.
type Config struct {
	Sheets   SheetsConfig            `yaml:"sheets" mapstructure:"sheets"`
	Columns  normalize.ColumnMapping `yaml:"columns" mapstructure:"columns"`
	Tables   TablesConfig            `yaml:"tables" mapstructure:"tables"`
	Pipeline PipelineConfig          `yaml:"pipeline" mapstructure:"pipeline"`
	Server   ServerConfig            `yaml:"server" mapstructure:"server"`
	Log      LogConfig               `yaml:"log" mapstructure:"log"`
}

// SheetsConfig holds the Google Sheets source settings. Either a
// service-account key file or an email/private-key pair must be set for
// remote fetches.
type SheetsConfig struct {
	CredentialsFile string `yaml:"credentials_file" mapstructure:"credentials_file"`
	ClientEmail     string `yaml:"client_email" mapstructure:"client_email"`
	PrivateKey      string `yaml:"private_key" mapstructure:"private_key"`
	SpreadsheetID   string `yaml:"spreadsheet_id" mapstructure:"spreadsheet_id"`
	Range           string `yaml:"range" mapstructure:"range"`
}

// TablesConfig points at optional YAML files overriding the compiled-in
// tier and region tables.
type TablesConfig struct {
	TierFile   string `yaml:"tier_file" mapstructure:"tier_file"`
	RegionFile string `yaml:"region_file" mapstructure:"region_file"`
}

// PipelineConfig tunes normalization and the fetch boundary.
type PipelineConfig struct {
	AllowNegativeRevenue bool     `yaml:"allow_negative_revenue" mapstructure:"allow_negative_revenue"`
	ExcludedColumns      []string `yaml:"excluded_columns" mapstructure:"excluded_columns"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("HEATMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("sheets.range", "Companies!A1:L")
	// Empty defaults register the keys so AutomaticEnv can resolve them.
	v.SetDefault("sheets.credentials_file", "")
	v.SetDefault("sheets.client_email", "")
	v.SetDefault("sheets.private_key", "")
	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("tables.tier_file", "")
	v.SetDefault("tables.region_file", "")
	v.SetDefault("pipeline.allow_negative_revenue", false)
	v.SetDefault("pipeline.excluded_columns", []string{"MAXIO  CUSTOMER STATUS  C"})

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	// Column labels contain double spaces the env replacer cannot express,
	// so the mapping comes from the file or falls back to the default.
	if isEmptyMapping(cfg.Columns) {
		cfg.Columns = normalize.DefaultColumns()
	}

	return &cfg, nil
}

func isEmptyMapping(m normalize.ColumnMapping) bool {
	return len(m.Name) == 0 && len(m.Address) == 0 && len(m.Latitude) == 0 &&
		len(m.Longitude) == 0 && len(m.Revenue) == 0
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
