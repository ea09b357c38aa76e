package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/filevault/pkg/config"
)

type defaultsConfig struct {
	Name    string `env:"FV_TEST_NAME" envDefault:"filevault"`
	Workers int    `env:"FV_TEST_WORKERS" envDefault:"2"`
}

type requiredConfig struct {
	URL string `env:"FV_TEST_REQUIRED_URL,required"`
}

type cachedConfig struct {
	Value string `env:"FV_TEST_CACHED" envDefault:"first"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg defaultsConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "filevault", cfg.Name)
	assert.Equal(t, 2, cfg.Workers)
}

func TestLoad_RequiredMissing(t *testing.T) {
	var cfg requiredConfig
	err := config.Load(&cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoad_NilPointer(t *testing.T) {
	assert.ErrorIs(t, config.Load[defaultsConfig](nil), config.ErrNilPointer)
}

func TestLoad_CachesPerType(t *testing.T) {
	config.Reset()
	t.Setenv("FV_TEST_CACHED", "first")

	var a cachedConfig
	require.NoError(t, config.Load(&a))

	t.Setenv("FV_TEST_CACHED", "second")
	var b cachedConfig
	require.NoError(t, config.Load(&b))
	assert.Equal(t, "first", b.Value)

	config.Reset()
	var c cachedConfig
	require.NoError(t, config.Load(&c))
	assert.Equal(t, "second", c.Value)
}

func TestMustLoad_Panics(t *testing.T) {
	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg)
	})
}
