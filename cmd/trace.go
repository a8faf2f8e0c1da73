package cmd

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/chatdbg/internal/config"
	"github.com/ziadkadry99/chatdbg/internal/trace"
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Show recent exchanges from the trace database",
	Long:  `Prints the most recent request/response exchanges recorded with --trace-db, newest first.`,
	RunE:  runTrace,
}

func init() {
	traceCmd.Flags().Int("limit", 20, "maximum number of exchanges to show")
	traceCmd.Flags().String("db", "", "trace database path (defaults to trace_db from config)")
	rootCmd.AddCommand(traceCmd)
}

func runTrace(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	limit, _ := cmd.Flags().GetInt("limit")
	dbPath, _ := cmd.Flags().GetString("db")

	if dbPath == "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		dbPath = cfg.TraceDB
	}
	if dbPath == "" {
		return fmt.Errorf("no trace database configured: pass --db or set trace_db")
	}

	recorder, err := trace.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening trace database: %w", err)
	}
	defer recorder.Close()

	entries, err := recorder.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("querying exchanges: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No exchanges recorded.")
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%s  [%s]  HTTP %d  %s\n", e.Timestamp.Format(time.DateTime), e.Mode, e.StatusCode, e.ID)
		fmt.Printf("  request:  %s\n", truncate(e.RequestBody, 200))
		if e.Error != "" {
			fmt.Printf("  error:    %s\n", e.Error)
		}
		if e.ResponseBody != "" {
			fmt.Printf("  response: %s\n", truncate(e.ResponseBody, 200))
		}
		fmt.Println()
	}
	return nil
}

// truncate shortens s to at most max bytes, backing up to a rune boundary so
// multi-byte characters are never split.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
