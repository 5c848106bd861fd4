package indexsync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/supplyhub/scm-assistant/internal/config"
	"github.com/supplyhub/scm-assistant/internal/observability"
)

type fakeDownloader struct {
	keys    []string
	failKey string
}

func (f *fakeDownloader) Download(_ context.Context, _, key, dest string) error {
	f.keys = append(f.keys, key)
	if key == f.failKey {
		return errors.New("object not found")
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, []byte("blob"), 0o644)
}

func syncConfig(t *testing.T) *appconfig.Config {
	t.Helper()
	cfg := appconfig.DefaultConfig()
	cfg.Sync.Bucket = "kb-bucket"
	cfg.Index.CacheDir = filepath.Join(t.TempDir(), "indexes")
	return cfg
}

func TestEnsureIndexesBucketUnset(t *testing.T) {
	cfg := syncConfig(t)
	cfg.Sync.Bucket = ""

	dl := &fakeDownloader{}
	res := NewSyncer(observability.Nop(), dl).EnsureIndexes(context.Background(), cfg)

	assert.Equal(t, "INDEX_BUCKET not set", res.Reason)
	assert.Equal(t, StatusSkipped, res.Statuses["supply"])
	assert.Equal(t, StatusSkipped, res.Statuses["demand"])
	assert.Empty(t, dl.keys)
}

func TestEnsureIndexesDownloads(t *testing.T) {
	cfg := syncConfig(t)

	dl := &fakeDownloader{}
	res := NewSyncer(observability.Nop(), dl).EnsureIndexes(context.Background(), cfg)

	assert.Equal(t, StatusDownloaded, res.Statuses["supply"])
	assert.Equal(t, StatusDownloaded, res.Statuses["demand"])
	assert.ElementsMatch(t, []string{
		"scm-assistant/indexes/supply.index",
		"scm-assistant/indexes/demand.index",
	}, dl.keys)
	assert.FileExists(t, filepath.Join(cfg.Index.CacheDir, "supply.index"))
	assert.FileExists(t, filepath.Join(cfg.Index.CacheDir, "demand.index"))
}

func TestEnsureIndexesCachedBlobKept(t *testing.T) {
	cfg := syncConfig(t)
	require.NoError(t, os.MkdirAll(cfg.Index.CacheDir, 0o755))
	cached := filepath.Join(cfg.Index.CacheDir, "supply.index")
	require.NoError(t, os.WriteFile(cached, []byte("existing"), 0o644))

	dl := &fakeDownloader{}
	res := NewSyncer(observability.Nop(), dl).EnsureIndexes(context.Background(), cfg)

	assert.Equal(t, StatusCached, res.Statuses["supply"])
	assert.Equal(t, StatusDownloaded, res.Statuses["demand"])
	assert.Equal(t, []string{"scm-assistant/indexes/demand.index"}, dl.keys)

	data, err := os.ReadFile(cached)
	require.NoError(t, err)
	assert.Equal(t, []byte("existing"), data)
}

func TestEnsureIndexesPartialFailure(t *testing.T) {
	cfg := syncConfig(t)

	dl := &fakeDownloader{failKey: "scm-assistant/indexes/supply.index"}
	res := NewSyncer(observability.Nop(), dl).EnsureIndexes(context.Background(), cfg)

	assert.Equal(t, StatusSkipped, res.Statuses["supply"])
	assert.Equal(t, StatusDownloaded, res.Statuses["demand"])
	assert.NoFileExists(t, filepath.Join(cfg.Index.CacheDir, "supply.index"))
}

func TestEnsureIndexesExplicitKeys(t *testing.T) {
	cfg := syncConfig(t)
	cfg.Sync.SupplyKey = "custom/supply-v2.index"
	cfg.Sync.DemandKey = "custom/demand-v2.index"

	dl := &fakeDownloader{}
	NewSyncer(observability.Nop(), dl).EnsureIndexes(context.Background(), cfg)

	assert.ElementsMatch(t, []string{
		"custom/supply-v2.index",
		"custom/demand-v2.index",
	}, dl.keys)
}
