// agentgraph runs a single deterministic tool-using agent graph against
// a user-supplied task list and prints the final answer and run summary.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/codeready-toolchain/agentgraph/pkg/checkpoint"
	"github.com/codeready-toolchain/agentgraph/pkg/config"
	"github.com/codeready-toolchain/agentgraph/pkg/memo"
	"github.com/codeready-toolchain/agentgraph/pkg/orchestrator"
	"github.com/codeready-toolchain/agentgraph/pkg/planner"
	"github.com/codeready-toolchain/agentgraph/pkg/toolregistry"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir", getEnv("CONFIG_DIR", "./deploy/config"), "Path to configuration directory")
	dataDir := flag.String("data-dir", getEnv("DATA_DIR", "./data"), "Path to the directory holding the memo/checkpoint databases")
	input := flag.String("input", "", "Task list text to run (required)")
	runID := flag.String("run-id", "", "Run ID; a UUID is generated when empty")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		slog.Warn("could not load env file, continuing with existing environment", "path", envPath, "error", err)
	} else {
		slog.Info("loaded environment file", "path", envPath)
	}

	if *input == "" {
		slog.Error("-input is required")
		os.Exit(1)
	}

	cfg, err := config.Load(filepath.Join(*configDir, "orchestrator.yaml"))
	if err != nil {
		slog.Error("failed to load orchestrator config", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		slog.Error("failed to create data directory", "path", *dataDir, "error", err)
		os.Exit(1)
	}

	memoStore, err := memo.Open(filepath.Join(*dataDir, "memo.db"))
	if err != nil {
		slog.Error("failed to open memo store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := memoStore.Close(); err != nil {
			slog.Warn("error closing memo store", "error", err)
		}
	}()

	checkpointStore, err := checkpoint.Open(filepath.Join(*dataDir, "checkpoints.db"))
	if err != nil {
		slog.Error("failed to open checkpoint store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := checkpointStore.Close(); err != nil {
			slog.Warn("error closing checkpoint store", "error", err)
		}
	}()

	registry := toolregistry.Build(memoStore)

	plnr, err := buildPlanner()
	if err != nil {
		slog.Error("failed to build planner", "error", err)
		os.Exit(1)
	}

	driver := orchestrator.NewDriver(registry, memoStore, checkpointStore, plnr, *cfg, *dataDir)

	slog.Info("starting run", "run_id", *runID)
	result, err := driver.Run(context.Background(), *input, *runID)
	if err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}

	fmt.Println(result.Answer)

	summary, err := json.MarshalIndent(result.DerivedSnapshot, "", "  ")
	if err != nil {
		slog.Warn("failed to marshal run snapshot", "error", err)
		return
	}
	fmt.Fprintln(os.Stderr, string(summary))
}

// buildPlanner selects the Anthropic planner when an API key is present
// in the environment, and otherwise a deterministic scripted planner
// with a single finish response (useful for smoke-testing the driver
// without a live provider). The driver rejects that finish while missions
// are incomplete, and every later call to the scripted planner returns an
// exhausted error.
func buildPlanner() (planner.Planner, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		slog.Warn("ANTHROPIC_API_KEY not set; running with a no-op scripted planner")
		return planner.NewScripted(planner.ScriptedResponse{
			Text: `{"action":"finish","answer":"No planner configured."}`,
		}), nil
	}

	model := getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022")
	return planner.NewAnthropicPlannerFromAPIKey(apiKey, planner.AnthropicOptions{Model: model})
}
