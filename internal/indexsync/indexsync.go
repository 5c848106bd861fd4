// Package indexsync pulls prebuilt index blobs from S3 into the local cache
// directory. Blobs already present locally are never re-downloaded; rebuild
// by deleting the cached file.
package indexsync

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/supplyhub/scm-assistant/internal/config"
	"github.com/supplyhub/scm-assistant/internal/observability"
)

// Sync statuses per domain.
const (
	StatusCached     = "cached"
	StatusDownloaded = "downloaded"
	StatusSkipped    = "skipped"
)

// Result reports what happened to each domain's index blob.
type Result struct {
	Statuses map[string]string
	Reason   string
}

// Downloader fetches one object into a local file. Satisfied by the S3
// client wrapper; swapped for a fake in tests.
type Downloader interface {
	Download(ctx context.Context, bucket, key, dest string) error
}

// S3Downloader implements Downloader over the AWS SDK.
type S3Downloader struct {
	client *s3.Client
}

// NewS3Downloader creates a downloader using the ambient AWS credential
// chain.
func NewS3Downloader(ctx context.Context, region string) (*S3Downloader, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &S3Downloader{client: s3.NewFromConfig(cfg)}, nil
}

// Download implements Downloader.
func (d *S3Downloader) Download(ctx context.Context, bucket, key, dest string) error {
	out, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("failed to fetch s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".sync-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, out.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write index blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close index blob: %w", err)
	}
	return os.Rename(tmp.Name(), dest)
}

// Syncer ensures domain index blobs exist locally.
type Syncer struct {
	logger     *observability.Logger
	downloader Downloader
}

// NewSyncer creates a syncer.
func NewSyncer(logger *observability.Logger, downloader Downloader) *Syncer {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Syncer{logger: logger, downloader: downloader}
}

// EnsureIndexes downloads the supply and demand index blobs that are not
// already cached. A missing bucket configuration skips the sync entirely;
// a download failure for one domain is recorded in its status and does not
// abort the other.
func (s *Syncer) EnsureIndexes(ctx context.Context, cfg *appconfig.Config) Result {
	if cfg.Sync.Bucket == "" {
		return Result{
			Statuses: map[string]string{"supply": StatusSkipped, "demand": StatusSkipped},
			Reason:   "INDEX_BUCKET not set",
		}
	}

	supplyKey := cfg.Sync.SupplyKey
	if supplyKey == "" {
		supplyKey = cfg.Sync.Prefix + "/" + cfg.Index.Supply
	}
	demandKey := cfg.Sync.DemandKey
	if demandKey == "" {
		demandKey = cfg.Sync.Prefix + "/" + cfg.Index.Demand
	}
	targets := map[string]string{
		"supply": supplyKey,
		"demand": demandKey,
	}

	statuses := make(map[string]string, len(targets))
	for domain, key := range targets {
		dest := filepath.Join(cfg.Index.CacheDir, indexFileName(cfg, domain))
		if _, err := os.Stat(dest); err == nil {
			statuses[domain] = StatusCached
			continue
		}

		if err := s.downloader.Download(ctx, cfg.Sync.Bucket, key, dest); err != nil {
			s.logger.Warn().Err(err).
				Str("domain", domain).
				Msg("Index download failed")
			statuses[domain] = StatusSkipped
			continue
		}
		s.logger.Info().
			Str("domain", domain).
			Str("path", dest).
			Msg("Index downloaded")
		statuses[domain] = StatusDownloaded
	}
	return Result{Statuses: statuses}
}

func indexFileName(cfg *appconfig.Config, domain string) string {
	switch domain {
	case "supply":
		return cfg.Index.Supply
	case "demand":
		return cfg.Index.Demand
	default:
		return cfg.Index.Default
	}
}
