// Package mirrorhub holds the configuration and the shared dependencies of all Contexts.
package mirrorhub

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/go-arrower/mirrorhub/secret"
)

// Config is a structure used for service configuration.
// It is intended to be mapped by viper.
type Config struct {
	ApplicationName string `mapstructure:"application_name" json:"applicationName"`
	InstanceName    string `mapstructure:"instance_name"    json:"instanceName"`

	Environment Environment `mapstructure:"environment" json:"environment"`

	HTTP     HTTP     `mapstructure:"http"     json:"http"`
	Postgres Postgres `mapstructure:"postgres" json:"postgres"`
	OTEL     OTEL     `mapstructure:"otel"     json:"otel"`
	Storage  Storage  `mapstructure:"storage"  json:"storage"`
	Geo      Geo      `mapstructure:"geo"      json:"geo"`
}

const (
	LocalEnv       Environment = "local"
	TestEnv        Environment = "test"
	DevelopmentEnv Environment = "dev"
	ProductionEnv  Environment = "prod"
)

// Environments is the list of all supported environments.
func Environments() []Environment {
	return []Environment{LocalEnv, TestEnv, DevelopmentEnv, ProductionEnv}
}

type Environment string

const (
	MemoryStorage   = "memory"
	PostgresStorage = "postgres"

	IP2LocationProvider = "ip2location"
	GeoIP2Provider      = "geoip2"
)

type (
	HTTP struct {
		Port                  int  `mapstructure:"port"                    json:"port"                  validate:"gt=0,lt=65536"`
		StatusEndpointEnabled bool `mapstructure:"status_endpoint_enabled" json:"statusEndpointEnabled"`
		StatusEndpointPort    int  `mapstructure:"status_endpoint_port"    json:"statusEndpointPort"    validate:"gt=0,lt=65536"`
	}

	Postgres struct {
		User     string        `mapstructure:"user"      json:"user"`
		Password secret.Secret `mapstructure:"password"  json:"-"`
		Database string        `mapstructure:"database"  json:"database"`
		Host     string        `mapstructure:"host"      json:"host"`
		Port     int           `mapstructure:"port"      json:"port"`
		SSLMode  string        `mapstructure:"ssl_mode"  json:"sslMode"`
		MaxConns int           `mapstructure:"max_conns" json:"maxConns"`
	}

	// OTEL configures the export of traces. Without a Host no traces are exported.
	OTEL struct {
		Host     string `mapstructure:"host"     json:"host"`
		Port     int    `mapstructure:"port"     json:"port"`
		Hostname string `mapstructure:"hostname" json:"hostname"`
	}

	Storage struct {
		Driver string `mapstructure:"driver" json:"driver" validate:"oneof=memory postgres"`
		// Dir persists the memory storage as JSON files. Empty keeps everything in memory only.
		Dir string `mapstructure:"dir" json:"dir"`
	}

	Geo struct {
		// Timeout bounds each outbound call: DNS, IP and region lookups.
		Timeout time.Duration `mapstructure:"timeout" json:"timeout" validate:"gt=0"`
		DNS     DNS           `mapstructure:"dns"     json:"dns"`
		IP      IP            `mapstructure:"ip"      json:"ip"`
		Region  Region        `mapstructure:"region"  json:"region"`
	}

	DNS struct {
		// Nameserver is queried directly, e.g. 9.9.9.9:53. Empty uses the resolver of the operating system.
		Nameserver string `mapstructure:"nameserver" json:"nameserver" validate:"omitempty,hostname_port"`
	}

	IP struct {
		Provider string `mapstructure:"provider" json:"provider" validate:"oneof=ip2location geoip2"`
		Database string `mapstructure:"database" json:"database"`
	}

	Region struct {
		URL           string  `mapstructure:"url"             json:"url"           validate:"url"`
		UserAgent     string  `mapstructure:"user_agent"      json:"userAgent"     validate:"required"`
		RatePerSecond float64 `mapstructure:"rate_per_second" json:"ratePerSecond" validate:"gt=0"`
		MaxRetries    int     `mapstructure:"max_retries"     json:"maxRetries"    validate:"gte=0"`
	}
)

// Validate checks the values that cannot be enforced by decoding alone.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", errConfigLoadFailed, err)
	}

	return nil
}

// DefaultViper returns a new viper instance with all default values
// from Config set. Environment variables prefixed with MIRRORHUB_ overwrite them,
// e.g. MIRRORHUB_POSTGRES_PASSWORD.
func DefaultViper() *Viper {
	vip := viper.New()

	vip.SetEnvPrefix("MIRRORHUB")
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vip.AutomaticEnv()

	vip.SetDefault("application_name", "mirrorhub")
	vip.SetDefault("instance_name", "")

	vip.SetDefault("environment", "local")

	vip.SetDefault("http.port", 8080)
	vip.SetDefault("http.status_endpoint_enabled", true)
	vip.SetDefault("http.status_endpoint_port", 2223)

	vip.SetDefault("postgres.user", "mirrorhub")
	vip.SetDefault("postgres.password", "secret")
	vip.SetDefault("postgres.database", "mirrorhub")
	vip.SetDefault("postgres.host", "localhost")
	vip.SetDefault("postgres.port", 5432)
	vip.SetDefault("postgres.ssl_mode", "disable")
	vip.SetDefault("postgres.max_conns", 10)

	vip.SetDefault("otel.host", "")
	vip.SetDefault("otel.port", 4317)
	vip.SetDefault("otel.hostname", "")

	vip.SetDefault("storage.driver", MemoryStorage)
	vip.SetDefault("storage.dir", "")

	vip.SetDefault("geo.timeout", 10*time.Second)
	vip.SetDefault("geo.dns.nameserver", "")
	vip.SetDefault("geo.ip.provider", IP2LocationProvider)
	vip.SetDefault("geo.ip.database", "")
	vip.SetDefault("geo.region.url", "https://nominatim.openstreetmap.org")
	vip.SetDefault("geo.region.user_agent", "mirrorhub")
	vip.SetDefault("geo.region.rate_per_second", 1.0)
	vip.SetDefault("geo.region.max_retries", 2)

	return &Viper{Viper: vip}
}

var errConfigLoadFailed = errors.New("loading configuration failed")

// Viper is a wrapper around viper.Viper for configuration loading.
// It overwrites Unmarshal, so secret.Secret and Environment are decoded
// without the developer having to think about it.
type Viper struct {
	*viper.Viper
}

func (vip *Viper) Unmarshal(rawVal any, opts ...viper.DecoderConfigOption) error {
	opts = append([]viper.DecoderConfigOption{viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		allowedEnvironmentHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))}, opts...)

	if err := vip.Viper.Unmarshal(rawVal, opts...); err != nil {
		return fmt.Errorf("%w: could not decode configuration into struct: %v", errConfigLoadFailed, err) //nolint:errorlint,lll // prevent err in api
	}

	return nil
}

// LoadConfig reads the configuration from file. If file is empty, an optional
// mirrorhub.yaml in the working directory is read.
func LoadConfig(file string) (*Config, error) {
	vip := DefaultViper()

	if file != "" {
		vip.SetConfigFile(file)
	} else {
		vip.SetConfigName("mirrorhub")
		vip.AddConfigPath(".")
	}

	if err := vip.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: could not read config: %w", errConfigLoadFailed, err)
		}
	}

	conf := &Config{}
	if err := vip.Unmarshal(conf); err != nil {
		return nil, err
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func allowedEnvironmentHookFunc() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, t reflect.Type, data any) (any, error) {
		if t != reflect.TypeOf(Environment("")) {
			return data, nil
		}

		env := Environments()

		if s, ok := data.(string); ok && slices.Contains(env, Environment(s)) {
			return data, nil
		}

		e := make([]string, 0, len(env))
		for _, env := range env {
			e = append(e, string(env))
		}

		return data, fmt.Errorf("value is not allowed, use one of: %s", strings.Join(e, ", ")) //nolint:err113 // accept dynamic error
	}
}
