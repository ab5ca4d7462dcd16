package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	c := &Config{}
	require.NoError(t, v.Unmarshal(c))

	assert.Equal(t, 8080, c.BindPort)
	assert.Equal(t, StoragePostgres, c.Storage)
	assert.Equal(t, 5*time.Second, c.UnitOfWorkTimeout)
	assert.Equal(t, "smartlock.devicestate.v1", c.NATSBaseSubject)
	assert.NoError(t, c.Validate())
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("STORAGE", "memory")
	t.Setenv("UNIT_OF_WORK_TIMEOUT", "250ms")

	v := viper.New()
	SetDefaults(v)

	c := &Config{}
	require.NoError(t, v.Unmarshal(c))

	assert.Equal(t, StorageMemory, c.Storage)
	assert.Equal(t, 250*time.Millisecond, c.UnitOfWorkTimeout)
}

func TestValidate(t *testing.T) {
	valid := Config{Storage: StorageMemory, LogLevel: "debug"}
	assert.NoError(t, valid.Validate())

	c := valid
	c.Storage = "redis"
	assert.EqualError(t, c.Validate(), `unknown storage "redis"`)

	c = valid
	c.Storage = StoragePostgres
	assert.Error(t, c.Validate())

	c = valid
	c.UnitOfWorkTimeout = -time.Second
	assert.Error(t, c.Validate())

	c = valid
	c.LogLevel = "loud"
	assert.Error(t, c.Validate())
}
