package mirrorhub_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arrower/mirrorhub"
)

func TestDefaultViper(t *testing.T) {
	t.Parallel()

	vip := mirrorhub.DefaultViper()
	assert.NotEmpty(t, vip)

	// This test enforces the default values, so whenever they change,
	// make sure to also update the documentation!

	assert.Equal(t, "mirrorhub", vip.GetString("application_name"))
	assert.Equal(t, mirrorhub.LocalEnv, mirrorhub.Environment(vip.GetString("environment")))

	assert.Equal(t, 8080, vip.GetInt("http.port"))
	assert.True(t, vip.GetBool("http.status_endpoint_enabled"))
	assert.Equal(t, 2223, vip.GetInt("http.status_endpoint_port"))

	assert.Equal(t, "mirrorhub", vip.GetString("postgres.user"))
	assert.Equal(t, "secret", vip.GetString("postgres.password"))
	assert.Equal(t, 5432, vip.GetInt("postgres.port"))

	assert.Empty(t, vip.GetString("otel.host"))

	assert.Equal(t, mirrorhub.MemoryStorage, vip.GetString("storage.driver"))

	assert.Equal(t, 10*time.Second, vip.GetDuration("geo.timeout"))
	assert.Empty(t, vip.GetString("geo.dns.nameserver"))
	assert.Equal(t, mirrorhub.IP2LocationProvider, vip.GetString("geo.ip.provider"))
	assert.Equal(t, "https://nominatim.openstreetmap.org", vip.GetString("geo.region.url"))
	assert.InDelta(t, 1.0, vip.GetFloat64("geo.region.rate_per_second"), 0)
	assert.Equal(t, 2, vip.GetInt("geo.region.max_retries"))
}

func TestViper_Unmarshal(t *testing.T) {
	t.Parallel()

	t.Run("defaults are valid", func(t *testing.T) {
		t.Parallel()

		conf := mirrorhub.Config{}

		err := mirrorhub.DefaultViper().Unmarshal(&conf)
		assert.NoError(t, err)
		assert.NoError(t, conf.Validate())
		assert.Equal(t, "secret", conf.Postgres.Password.Secret())
	})

	t.Run("invalid environment", func(t *testing.T) {
		t.Parallel()

		vip := mirrorhub.DefaultViper()
		vip.SetConfigFile("./testdata/config/invalid-config.yaml")
		require.NoError(t, vip.ReadInConfig())

		err := vip.Unmarshal(&mirrorhub.Config{})
		assert.Error(t, err, "should fail when using unsupported enum values")
		assert.Contains(t, err.Error(), "use one of: local, test, dev, prod")
	})

	t.Run("config file", func(t *testing.T) {
		t.Parallel()

		vip := mirrorhub.DefaultViper()
		vip.SetConfigFile("./testdata/config/test-config.yaml")
		require.NoError(t, vip.ReadInConfig())

		conf := mirrorhub.Config{}

		err := vip.Unmarshal(&conf)
		assert.NoError(t, err)
		assert.Equal(t, mirrorhub.TestEnv, conf.Environment)
		assert.Equal(t, "pg-secret", conf.Postgres.Password.Secret())
		assert.Equal(t, "******", conf.Postgres.Password.String())
		assert.Equal(t, mirrorhub.PostgresStorage, conf.Storage.Driver)
		assert.Equal(t, 3*time.Second, conf.Geo.Timeout)
		assert.Equal(t, "9.9.9.9:53", conf.Geo.DNS.Nameserver)
		assert.Equal(t, mirrorhub.GeoIP2Provider, conf.Geo.IP.Provider)
		assert.Equal(t, "mirrorhub-test", conf.Geo.Region.UserAgent)
		assert.Equal(t, 0, conf.Geo.Region.MaxRetries)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		conf, err := mirrorhub.LoadConfig("./testdata/config/test-config.yaml")
		assert.NoError(t, err)
		assert.Equal(t, mirrorhub.TestEnv, conf.Environment)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := mirrorhub.LoadConfig("./testdata/config/missing.yaml")
		assert.Error(t, err)
	})

	t.Run("invalid provider", func(t *testing.T) {
		t.Parallel()

		_, err := mirrorhub.LoadConfig("./testdata/config/invalid-provider.yaml")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Provider")
	})

	t.Run("without file", func(t *testing.T) {
		t.Parallel()

		conf, err := mirrorhub.LoadConfig("")
		assert.NoError(t, err, "the default config file is optional")
		assert.Equal(t, mirrorhub.LocalEnv, conf.Environment)
	})
}
