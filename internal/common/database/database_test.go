// internal/common/database/database_test.go
package database

import (
	"context"
	"testing"

	"simple-mortgage/internal/common/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedis_Ping(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))
	assert.NotNil(t, client.GetClient())

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}

func TestNewRedis_RequiresAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{})
	assert.Error(t, err)
}

func TestNewPostgres_OpensLazily(t *testing.T) {
	client, err := NewPostgres(config.PostgresConfig{
		Host:           "localhost",
		Port:           5432,
		Database:       "mortgage",
		User:           "mortgage",
		SSLMode:        "disable",
		MaxConnections: 4,
		MaxIdle:        1,
	})
	require.NoError(t, err)
	assert.NotNil(t, client.GetDB())
	assert.NoError(t, client.Close())
}
