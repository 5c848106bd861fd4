package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/supplyhub/scm-assistant/cmd/scm-agent/ui"
)

var (
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "scm-agent",
	Short: "SCM assistant - retrieval-augmented question answering for supply chain queries",
	Long: `The SCM assistant answers supply-chain-management questions by routing each
query to a glossary lookup, a formula calculator, or a document retrieval
engine, with web search as a fallback.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		ui.Init(noColor, verbose)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
