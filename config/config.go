package config

import (
	"bytes"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	KeySinkDriver     = "sink.driver"
	KeySinkURI        = "sink.uri"
	KeySinkDatabase   = "sink.database"
	KeySinkCollection = "sink.collection"
	KeySinkTimeout    = "sink.timeout"
	KeyLogLevel       = "log.level"
	KeyLogFormat      = "log.format"
)

const (
	DriverMongo    = "mongo"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Sink SinkConfig `mapstructure:"sink" validate:"required"`
	Log  LogConfig  `mapstructure:"log"`
}

// SinkConfig names the document store that receives imported candidates.
// For sqlite the URI is the database file path and the collection is a table;
// for postgres the collection is a table in the database named by the URI.
type SinkConfig struct {
	Driver     string        `mapstructure:"driver" validate:"required,oneof=mongo sqlite postgres"`
	URI        string        `mapstructure:"uri" validate:"required"`
	Database   string        `mapstructure:"database" validate:"required_if=Driver mongo"`
	Collection string        `mapstructure:"collection" validate:"required"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=text json"`
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# candreg configuration
sink:
  # mongo | sqlite | postgres
  driver: "mongo"
  # Credentials are better supplied via CANDREG_SINK_URI or a .env file.
  uri: "mongodb://localhost:27017"
  database: "candidates_db"
  collection: "candidates"
  timeout: "10s"

log:
  # debug | info | warn | error
  level: "info"
  # text | json
  format: "text"
`
}

// RedactedURI returns the sink URI with any password replaced.
func (c SinkConfig) RedactedURI() string {
	parsed, err := url.Parse(c.URI)
	if err != nil {
		return c.URI
	}
	return parsed.Redacted()
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.Sink.Driver = strings.ToLower(strings.TrimSpace(cfg.Sink.Driver))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateCollection(cfg.Sink); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeySinkDriver, DriverMongo)
	v.SetDefault(KeySinkURI, "mongodb://localhost:27017")
	v.SetDefault(KeySinkDatabase, "candidates_db")
	v.SetDefault(KeySinkCollection, "candidates")
	v.SetDefault(KeySinkTimeout, 10*time.Second)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
}

// validateCollection rejects collection names that cannot be used verbatim as
// SQL table identifiers.
func validateCollection(sink SinkConfig) error {
	if sink.Driver == DriverMongo {
		return nil
	}
	if !tableNamePattern.MatchString(sink.Collection) {
		return fmt.Errorf(
			"validation failed: sink.collection %q is not a valid table name for driver %s (letters, digits and underscores only)",
			sink.Collection,
			sink.Driver,
		)
	}
	return nil
}
