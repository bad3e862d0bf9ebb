package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/till/internal/paths"
	"github.com/mesh-intelligence/till/pkg/types"
)

// Config keys.
const (
	cfgKeyDataDir       = "data_dir"
	cfgKeyDBFile        = "db_file"
	cfgKeyLogLevel      = "log_level"
	cfgKeyLogFormat     = "log_format"
	cfgKeyExportPath    = "export_path"
	cfgKeyPaymentMethod = "default_payment_method"

	envPrefix = "TILL"
)

// DefaultExportPath is where "report export" writes when neither --output
// nor export_path is set.
const DefaultExportPath = "reporte_inventario.csv"

// settings is the merged configuration: defaults, config.yaml, the optional
// .env file and TILL_* environment variables, in increasing precedence.
type settings struct {
	DataDir              string `mapstructure:"data_dir" yaml:"data_dir,omitempty"`
	DBFile               string `mapstructure:"db_file" yaml:"db_file" validate:"required"`
	LogLevel             string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat            string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`
	ExportPath           string `mapstructure:"export_path" yaml:"export_path" validate:"required"`
	DefaultPaymentMethod string `mapstructure:"default_payment_method" yaml:"default_payment_method"`
}

func defaultSettings() settings {
	return settings{
		DBFile:               types.DefaultDBFile,
		LogLevel:             "info",
		LogFormat:            "text",
		ExportPath:           DefaultExportPath,
		DefaultPaymentMethod: types.PaymentCash,
	}
}

// storeConfig returns the Config the store is attached with.
func (s *settings) storeConfig() types.Config {
	return types.Config{DataDir: s.DataDir, DBFile: s.DBFile}
}

// envKeys are bound to TILL_<KEY>. data_dir is absent: TILL_DATA_DIR ranks
// below config.yaml and is handled by paths.ResolveDataDir.
var envKeys = []string{cfgKeyDBFile, cfgKeyLogLevel, cfgKeyLogFormat, cfgKeyExportPath, cfgKeyPaymentMethod}

// loadSettings reads config.yaml from configDir, creating the directory and
// a default file on first run. A missing config.yaml is not an error.
func loadSettings(configDir string) (*settings, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	def := defaultSettings()
	v := viper.New()
	v.SetDefault(cfgKeyDataDir, def.DataDir)
	v.SetDefault(cfgKeyDBFile, def.DBFile)
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	v.SetDefault(cfgKeyLogFormat, def.LogFormat)
	v.SetDefault(cfgKeyExportPath, def.ExportPath)
	v.SetDefault(cfgKeyPaymentMethod, def.DefaultPaymentMethod)

	v.SetConfigFile(paths.ConfigFile(configDir))
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	if err := applyEnvFile(v, paths.EnvFile(configDir)); err != nil {
		return nil, err
	}

	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// applyEnvFile copies TILL_* entries of the .env file into v, unless the
// process environment already sets them.
func applyEnvFile(v *viper.Viper, path string) error {
	entries, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	for _, key := range envKeys {
		name := envPrefix + "_" + strings.ToUpper(key)
		value, ok := entries[name]
		if !ok {
			continue
		}
		if _, set := os.LookupEnv(name); set {
			continue
		}
		v.Set(key, value)
	}
	return nil
}

var settingsValidator = validator.New(validator.WithRequiredStructEnabled())

func (s *settings) validate() error {
	if err := settingsValidator.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fieldErr := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q (got %q)", fieldErr.Field(), fieldErr.Tag(), fieldErr.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if !types.IsValidPaymentMethod(s.DefaultPaymentMethod) {
		return fmt.Errorf("invalid config: default_payment_method %q: %w", s.DefaultPaymentMethod, types.ErrInvalidPaymentMethod)
	}
	if err := s.storeConfig().Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

const configHeader = `# till configuration
# Every key can also be set with a TILL_<KEY> environment variable or in a
# .env file next to this one. data_dir may be overridden by --data-dir.
`

// ensureDefaultConfigFile writes config.yaml with default values if it does
// not exist. An existing file is left untouched.
func ensureDefaultConfigFile(configDir string) error {
	path := paths.ConfigFile(configDir)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	def := defaultSettings()
	data, err := yaml.Marshal(&def)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, append([]byte(configHeader), data...), 0o644)
}
