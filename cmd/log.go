package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hocktide/v-c-tool/internal/audit"
	"github.com/hocktide/v-c-tool/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	logLimit     int
	logReverse   bool
	logOperation string
	logEntity    string
	logSince     string
	logJSON      bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation type (comma-separated)")
	logCmd.Flags().StringVar(&logEntity, "entity", "", "filter by entity id prefix")
	logCmd.Flags().StringVar(&logSince, "since", "", "show entries on or after date (YYYY-MM-DD)")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

// resetLogCommandState resets the log command's global state for testing.
func resetLogCommandState() {
	logLimit = 0
	logReverse = false
	logOperation = ""
	logEntity = ""
	logSince = ""
	logJSON = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the key history",
	Long: `Displays the history of certificates vctool has created and changed on
this machine. No key material is recorded.

Examples:
  vctool log                          # View full history
  vctool log -n 10                    # Last 10 entries
  vctool log --reverse                # Most recent first
  vctool log --operation keygen       # Filter by operation
  vctool log --entity 3f2a            # Filter by entity id
  vctool log --json                   # JSON output`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")

	opts := workflows.HistoryOptions{
		Limit:   logLimit,
		Reverse: logReverse,
		Entity:  logEntity,
		Since:   logSince,
	}
	if logOperation != "" {
		opts.Operations = strings.Split(logOperation, ",")
	}

	result, err := workflows.History(context.Background(), opts)
	if err != nil {
		return fail(nil, err)
	}

	Logger.Debugf("Read %d entries from %s, %d after filtering", result.Total, audit.LogPath(), len(result.Entries))

	if len(result.Entries) == 0 {
		if result.Total == 0 {
			fmt.Println("No history entries found.")
		} else {
			fmt.Println("No history entries found matching the filters.")
		}
		return nil
	}

	if logJSON {
		return outputLogJSON(result.Entries)
	}

	for _, e := range result.Entries {
		fmt.Printf("%-19s  %-12s  %-7s  %s\n", workflows.FormatDateTime(e.Timestamp), e.User, e.Operation, workflows.FormatDetails(e))
	}
	return nil
}

func outputLogJSON(entries []audit.Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entries to JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
