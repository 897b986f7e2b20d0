package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInvalidLocation is returned for object locations that are not s3://bucket/key.
var ErrInvalidLocation = errors.New("invalid object location")

// Location addresses one object in a bucket.
type Location struct {
	Bucket string
	Key    string
}

func (l Location) String() string {
	return fmt.Sprintf("s3://%s/%s", l.Bucket, l.Key)
}

// IsRemote reports whether ref uses the s3:// scheme.
func IsRemote(ref string) bool {
	return strings.HasPrefix(strings.TrimSpace(ref), "s3://")
}

// ParseLocation splits an s3://bucket/key reference.
func ParseLocation(ref string) (Location, error) {
	trimmed := strings.TrimSpace(ref)
	if !strings.HasPrefix(trimmed, "s3://") {
		return Location{}, fmt.Errorf("%w: %q", ErrInvalidLocation, ref)
	}
	bucket, key, _ := strings.Cut(strings.TrimPrefix(trimmed, "s3://"), "/")
	key = strings.Trim(key, "/")
	if bucket == "" || key == "" {
		return Location{}, fmt.Errorf("%w: %q", ErrInvalidLocation, ref)
	}
	return Location{Bucket: bucket, Key: key}, nil
}

// Service moves catalog files to and from remote object storage.
type Service interface {
	Upload(ctx context.Context, loc Location, body io.Reader, contentType string) (string, error)
	Download(ctx context.Context, loc Location) (io.ReadCloser, error)
}
