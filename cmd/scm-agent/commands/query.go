package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/supplyhub/scm-assistant/cmd/scm-agent/ui"
	"github.com/supplyhub/scm-assistant/internal/agent"
	"github.com/supplyhub/scm-assistant/internal/app"
)

var (
	queryQuestion string
	queryJSON     bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Ask the assistant a supply-chain question",
	Long: "Ask a single question with --question, or omit it to enter an " +
		"interactive session.",
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryQuestion, "question", "q", "", "question to ask (interactive mode when omitted)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "print the raw result as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("assemble assistant: %w", err)
	}
	defer application.Close()

	if queryQuestion != "" {
		return runSingleQuery(ctx, application, queryQuestion)
	}
	return runInteractive(ctx, application)
}

func runSingleQuery(ctx context.Context, application *app.App, question string) error {
	spin := ui.NewSpinner("Thinking...")
	spin.Start()
	result, err := application.Agent.Run(ctx, question)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	printResult(result)
	return nil
}

func runInteractive(ctx context.Context, application *app.App) error {
	ui.Section("SCM Assistant")
	ui.Info("Type a question, or \"exit\" to quit.")
	ui.Newline()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(os.Stdout, "> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		spin := ui.NewSpinner("Thinking...")
		spin.Start()
		result, err := application.Agent.Run(ctx, question)
		spin.Stop()
		if err != nil {
			ui.Error("Query failed: %v", err)
			continue
		}
		printResult(result)
		ui.Newline()
	}
	return scanner.Err()
}

func printResult(result *agent.Result) {
	if queryJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			ui.Error("Encode result: %v", err)
			return
		}
		fmt.Fprintln(os.Stdout, string(data))
		return
	}
	fmt.Fprintln(os.Stdout, result.Formatted)
}
