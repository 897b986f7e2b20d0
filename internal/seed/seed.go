// Package seed reads and writes catalog files: JSON arrays of boot attribute
// maps stored on disk or in object storage.
package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"boot-shop/internal/service"
	"boot-shop/internal/storage"
)

// ErrNoStorage is returned for s3:// references when no storage service is configured.
var ErrNoStorage = errors.New("object storage is not configured")

// Files resolves catalog references to local paths or remote objects.
type Files struct {
	store storage.Service
}

// NewFiles returns a Files; store may be nil when only local paths are used.
func NewFiles(store storage.Service) *Files {
	return &Files{store: store}
}

// Read decodes the catalog file at ref.
func (f *Files) Read(ctx context.Context, ref string) ([]service.Fields, error) {
	rc, err := f.open(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var records []service.Fields
	if err := json.NewDecoder(rc).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", ref, err)
	}
	return records, nil
}

// Write encodes records as an indented JSON array to ref.
func (f *Files) Write(ctx context.Context, ref string, records []service.Fields) (string, error) {
	if records == nil {
		records = []service.Fields{}
	}
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode catalog: %w", err)
	}
	payload = append(payload, '\n')

	if storage.IsRemote(ref) {
		loc, err := storage.ParseLocation(ref)
		if err != nil {
			return "", err
		}
		if f.store == nil {
			return "", ErrNoStorage
		}
		return f.store.Upload(ctx, loc, bytes.NewReader(payload), "application/json")
	}

	if dir := filepath.Dir(ref); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(ref, payload, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", ref, err)
	}
	return ref, nil
}

func (f *Files) open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if !storage.IsRemote(ref) {
		file, err := os.Open(ref)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", ref, err)
		}
		return file, nil
	}
	loc, err := storage.ParseLocation(ref)
	if err != nil {
		return nil, err
	}
	if f.store == nil {
		return nil, ErrNoStorage
	}
	return f.store.Download(ctx, loc)
}

// IfEmpty imports the catalog at ref when the catalog has no boots yet.
// It returns the number of boots created.
func (f *Files) IfEmpty(ctx context.Context, catalog service.CatalogService, ref string, logger *logrus.Logger) (int, error) {
	existing, err := catalog.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		logger.Debugf("catalog has %d boots, skipping seed %s", len(existing), ref)
		return 0, nil
	}

	records, err := f.Read(ctx, ref)
	if err != nil {
		return 0, err
	}
	n, err := catalog.Import(ctx, records)
	if err != nil {
		return n, err
	}
	logger.WithField("source", ref).Infof("seeded catalog with %d boots", n)
	return n, nil
}

// ForRef returns Files able to reach ref, connecting to S3 only when ref is
// an s3:// location.
func ForRef(ctx context.Context, ref string, opts storage.S3Options) (*Files, error) {
	if !storage.IsRemote(ref) {
		return NewFiles(nil), nil
	}
	store, err := storage.NewS3ServiceFromOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return NewFiles(store), nil
}
