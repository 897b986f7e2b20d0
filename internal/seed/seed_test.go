package seed

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boot-shop/internal/repository/sqlite"
	"boot-shop/internal/service"
	"boot-shop/internal/storage"
)

type memStorage struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStorage) Upload(_ context.Context, loc storage.Location, body io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.objects[loc.String()] = data
	m.types[loc.String()] = contentType
	return loc.String(), nil
}

func (m *memStorage) Download(_ context.Context, loc storage.Location) (io.ReadCloser, error) {
	data, ok := m.objects[loc.String()]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func newCatalog(t *testing.T) service.CatalogService {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	boots := sqlite.NewBootRepository(db)
	require.NoError(t, boots.Init(context.Background()))
	return service.NewCatalogService(boots)
}

const scraped = `[
  {"Верх": "натуральная кожа", "Подкладка": "байка", "Сезонность": "демисезон"},
  {"Размерный ряд": "39-46", "price": "8490"},
  {}
]`

func TestReadLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boots.json")
	require.NoError(t, os.WriteFile(path, []byte(scraped), 0o600))

	records, err := NewFiles(nil).Read(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "байка", records[0]["Подкладка"])
	assert.Equal(t, "8490", records[1]["price"])
}

func TestReadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boots.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not": "an array"}`), 0o600))

	_, err := NewFiles(nil).Read(context.Background(), path)
	assert.Error(t, err)
}

func TestRemoteWithoutStorage(t *testing.T) {
	files := NewFiles(nil)
	_, err := files.Read(context.Background(), "s3://bucket/boots.json")
	assert.ErrorIs(t, err, ErrNoStorage)

	_, err = files.Write(context.Background(), "s3://bucket/boots.json", nil)
	assert.ErrorIs(t, err, ErrNoStorage)

	_, err = NewFiles(newMemStorage()).Read(context.Background(), "s3://bucket")
	assert.ErrorIs(t, err, storage.ErrInvalidLocation)
}

func TestWriteThenReadRemote(t *testing.T) {
	store := newMemStorage()
	files := NewFiles(store)
	ctx := context.Background()

	dest, err := files.Write(ctx, "s3://shop/export/boots.json", []service.Fields{
		{"Верх": "кожа", "price": 100.0},
	})
	require.NoError(t, err)
	assert.Equal(t, "s3://shop/export/boots.json", dest)
	assert.Equal(t, "application/json", store.types[dest])

	records, err := files.Read(ctx, dest)
	require.NoError(t, err)
	assert.Equal(t, []service.Fields{{"Верх": "кожа", "price": 100.0}}, records)
}

func TestWriteLocalCreatesDirectory(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "nested", "boots.json")

	_, err := NewFiles(nil).Write(context.Background(), dest, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestIfEmpty(t *testing.T) {
	ctx := context.Background()
	store := newMemStorage()
	store.objects["s3://shop/seed.json"] = []byte(scraped)
	files := NewFiles(store)
	catalog := newCatalog(t)
	logger, hook := test.NewNullLogger()

	n, err := files.IfEmpty(ctx, catalog, "s3://shop/seed.json", logger)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "s3://shop/seed.json", hook.LastEntry().Data["source"])

	n, err = files.IfEmpty(ctx, catalog, "s3://shop/seed.json", logger)
	require.NoError(t, err)
	assert.Zero(t, n)

	boots, err := catalog.List(ctx)
	require.NoError(t, err)
	require.Len(t, boots, 2)
	assert.Equal(t, "демисезон", boots[0].Attributes["Сезонность"])
	assert.Equal(t, 8490.0, boots[1].PriceValue())
}

func TestForRefLocalSkipsStorage(t *testing.T) {
	files, err := ForRef(context.Background(), "data/boots.json", storage.S3Options{})
	require.NoError(t, err)
	assert.Nil(t, files.store)
}
