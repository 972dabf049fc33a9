package planfetch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchLocalPathPassesThrough(t *testing.T) {
	path, err := Fetch(context.Background(), "plans/nightly.toml", "eu-central-1")
	require.NoError(t, err)
	assert.Equal(t, "plans/nightly.toml", path)
}

func TestParseS3SchemeLocation(t *testing.T) {
	bucket, key, err := parseLocation("s3://stress-plans/nightly/plan.toml")
	require.NoError(t, err)
	assert.Equal(t, "stress-plans", bucket)
	assert.Equal(t, "nightly/plan.toml", key)
}

func TestParseVirtualHostedLocation(t *testing.T) {
	bucket, key, err := parseLocation("https://stress-plans.s3.eu-central-1.amazonaws.com/plan.toml.zst")
	require.NoError(t, err)
	assert.Equal(t, "stress-plans", bucket)
	assert.Equal(t, "plan.toml.zst", key)
}

func TestParseRejectsBadLocations(t *testing.T) {
	_, _, err := parseLocation("ftp://host/plan.toml")
	assert.ErrorContains(t, err, "unsupported plan location scheme")

	_, _, err = parseLocation("https://example.com/plan.toml")
	assert.ErrorContains(t, err, "not an S3 host")

	_, _, err = parseLocation("s3://bucket-only")
	assert.ErrorContains(t, err, "no bucket or key")
}
