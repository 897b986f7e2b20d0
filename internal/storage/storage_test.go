package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	loc, err := ParseLocation(" s3://shop-data/seed/boots.json ")
	require.NoError(t, err)
	assert.Equal(t, Location{Bucket: "shop-data", Key: "seed/boots.json"}, loc)
	assert.Equal(t, "s3://shop-data/seed/boots.json", loc.String())

	for _, ref := range []string{"boots.json", "s3://", "s3://bucket", "s3://bucket/", "s3:///key"} {
		_, err := ParseLocation(ref)
		assert.ErrorIs(t, err, ErrInvalidLocation, ref)
	}
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("s3://b/k"))
	assert.False(t, IsRemote("data/boots.json"))
	assert.False(t, IsRemote(""))
}
