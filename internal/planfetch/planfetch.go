// Package planfetch resolves a stress plan location to a local file.
// Plans can live next to the binary or in S3, where a fleet of hosts
// picks up the same plan.
package planfetch

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/zstd"
)

// Fetch returns a local path for location. Plain paths pass through
// untouched; s3:// and virtual-hosted https S3 URLs are downloaded to
// a temp file. Zstd-compressed plans are decompressed transparently.
func Fetch(ctx context.Context, location, region string) (string, error) {
	if !strings.Contains(location, "://") {
		return location, nil
	}

	bucket, key, err := parseLocation(location)
	if err != nil {
		return "", err
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return "", fmt.Errorf("load AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg)

	obj, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("download plan %s: %w", location, err)
	}
	defer obj.Body.Close()

	out, err := os.CreateTemp("", "stresser-plan-*.toml")
	if err != nil {
		return "", err
	}
	defer out.Close()

	var src io.Reader = obj.Body
	if (obj.ContentType != nil && *obj.ContentType == "application/zstd") ||
		path.Ext(key) == ".zst" {
		zr, err := zstd.NewReader(obj.Body)
		if err != nil {
			return "", fmt.Errorf("open zstd plan: %w", err)
		}
		defer zr.Close()
		src = zr
	}
	if _, err := io.Copy(out, src); err != nil {
		return "", fmt.Errorf("write plan %s: %w", out.Name(), err)
	}
	return out.Name(), nil
}

// parseLocation accepts s3://bucket/key and the virtual-hosted
// bucket.s3.region.amazonaws.com https form.
func parseLocation(location string) (bucket, key string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("parse plan location %s: %w", location, err)
	}
	switch u.Scheme {
	case "s3":
		bucket = u.Host
	case "https":
		hostParts := strings.Split(u.Host, ".")
		if len(hostParts) < 3 || hostParts[1] != "s3" {
			return "", "", fmt.Errorf("not an S3 host: %s", u.Host)
		}
		bucket = hostParts[0]
	default:
		return "", "", fmt.Errorf("unsupported plan location scheme %q", u.Scheme)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("plan location %s has no bucket or key", location)
	}
	return bucket, key, nil
}
