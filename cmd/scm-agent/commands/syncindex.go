package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/supplyhub/scm-assistant/cmd/scm-agent/ui"
	"github.com/supplyhub/scm-assistant/internal/indexsync"
)

var syncIndexCmd = &cobra.Command{
	Use:   "sync-index",
	Short: "Pull prebuilt index blobs from S3 into the local cache",
	RunE:  runSyncIndex,
}

func init() {
	rootCmd.AddCommand(syncIndexCmd)
}

func runSyncIndex(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ui.Section("Sync Indexes")
	if cfg.Sync.Bucket == "" {
		ui.Warning("INDEX_BUCKET not set, nothing to sync")
		return nil
	}

	downloader, err := indexsync.NewS3Downloader(ctx, cfg.Sync.Region)
	if err != nil {
		return fmt.Errorf("create S3 client: %w", err)
	}

	spin := ui.NewSpinner("Syncing...")
	spin.Start()
	result := indexsync.NewSyncer(logger, downloader).EnsureIndexes(ctx, cfg)
	spin.Stop()

	for domain, status := range result.Statuses {
		switch status {
		case indexsync.StatusDownloaded:
			ui.Success("%s: downloaded", domain)
		case indexsync.StatusCached:
			ui.Info("%s: already cached", domain)
		default:
			ui.Warning("%s: skipped", domain)
		}
	}
	return nil
}
