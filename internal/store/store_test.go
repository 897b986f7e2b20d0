package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boot-shop/internal/config"
	"boot-shop/internal/domain"
)

func TestOpenSQLite(t *testing.T) {
	var cfg config.Config
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.Path = filepath.Join(t.TempDir(), "db", "shop.db")
	logger, _ := test.NewNullLogger()
	ctx := context.Background()

	s, err := Open(ctx, cfg, logger)
	require.NoError(t, err)
	defer s.Close()

	id, err := s.Boots.Create(ctx, &domain.Boot{Attributes: map[string]string{"Верх": "кожа"}})
	require.NoError(t, err)
	got, err := s.Boots.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "кожа", got.Attributes["Верх"])

	require.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestOpenUnknownDriver(t *testing.T) {
	var cfg config.Config
	cfg.Database.Driver = "postgres"
	logger, _ := test.NewNullLogger()

	_, err := Open(context.Background(), cfg, logger)
	assert.Error(t, err)
}
