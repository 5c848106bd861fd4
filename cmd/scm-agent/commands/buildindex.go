package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/supplyhub/scm-assistant/cmd/scm-agent/ui"
	"github.com/supplyhub/scm-assistant/internal/ingest"
)

var (
	buildDocsDir string
	buildDomain  string
	buildOutPath string
)

var buildIndexCmd = &cobra.Command{
	Use:   "build-index",
	Short: "Build a retrieval index from a directory of text documents",
	Long: "Chunks every .txt file under --docs, fits the lexical index, and " +
		"writes the collection blob for the chosen domain.",
	RunE: runBuildIndex,
}

func init() {
	buildIndexCmd.Flags().StringVar(&buildDocsDir, "docs", "", "directory of .txt documents (required)")
	buildIndexCmd.Flags().StringVar(&buildDomain, "domain", "", "target domain: supply, demand, or empty for the default collection")
	buildIndexCmd.Flags().StringVar(&buildOutPath, "out", "", "output blob path (defaults to the configured index location)")
	buildIndexCmd.MarkFlagRequired("docs")
	rootCmd.AddCommand(buildIndexCmd)
}

func runBuildIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	if buildDomain != "" && buildDomain != "supply" && buildDomain != "demand" {
		return fmt.Errorf("invalid domain %q: use supply, demand, or leave empty", buildDomain)
	}

	outPath := buildOutPath
	if outPath == "" {
		name := cfg.Index.Default
		switch buildDomain {
		case "supply":
			name = cfg.Index.Supply
		case "demand":
			name = cfg.Index.Demand
		}
		outPath = filepath.Join(cfg.Index.Dir, name)
	}

	ui.Section("Build Index")
	ui.Info("Documents: %s", buildDocsDir)
	ui.Info("Output: %s", outPath)

	builder := ingest.NewBuilder(logger, cfg.Retrieval.MaxFeatures, os.Stderr)
	coll, err := builder.Build(buildDocsDir, outPath)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	ui.Success("Indexed %d chunks (%d terms)", len(coll.Chunks), len(coll.Vectorizer.Vocabulary))
	return nil
}
