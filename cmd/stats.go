package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kozaktomas/site-attendance/internal/config"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show present and absent counts for a day",
	Long: `Shows how many workers were last recorded PRESENT or ABSENT on a day.
Only the latest record of each worker counts.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().String("date", "", "Day as YYYY-MM-DD (default today)")
	statsCmd.Flags().Bool("json", false, "Output as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	date := mustGetString(cmd, "date")
	jsonOutput := mustGetBool(cmd, "json")

	cfg := config.Load()
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	engine, err := newEngine(cfg, store, nil, nil)
	if err != nil {
		return err
	}

	stats, err := engine.DailyStats(context.Background(), date)
	if err != nil {
		return fmt.Errorf("failed to compute stats: %w", err)
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(stats)
	}

	fmt.Printf("Date:       %s\n", stats.Date)
	fmt.Printf("Present:    %d\n", stats.Present)
	fmt.Printf("Absent:     %d\n", stats.Absent)
	fmt.Printf("Registered: %d\n", stats.TotalWorkers)
	return nil
}
