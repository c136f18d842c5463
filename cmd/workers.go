package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kozaktomas/site-attendance/internal/config"
	"github.com/kozaktomas/site-attendance/internal/report"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var workersCmd = &cobra.Command{
	Use:   "workers",
	Short: "Manage the worker registry",
}

var workersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered workers",
	Long:  `Lists registered workers in registration order. --query keeps names containing the text, ignoring case and diacritics.`,
	Args:  cobra.NoArgs,
	RunE:  runWorkersList,
}

var workersAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Register a worker and print the allocated id",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkersAdd,
}

var workersRemoveCmd = &cobra.Command{
	Use:   "remove [worker-id]",
	Short: "Remove a worker and all of their attendance records",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkersRemove,
}

var workersImportCmd = &cobra.Command{
	Use:   "import [file.xlsx]",
	Short: "Register workers from a spreadsheet",
	Long: `Registers one worker per row of the first sheet. The first column holds the
name and the first row is a header. Ids are allocated in row order.`,
	Args: cobra.ExactArgs(1),
	RunE: runWorkersImport,
}

func init() {
	rootCmd.AddCommand(workersCmd)
	workersCmd.AddCommand(workersListCmd, workersAddCmd, workersRemoveCmd, workersImportCmd)

	workersListCmd.Flags().String("query", "", "Filter by name")
	workersListCmd.Flags().Bool("json", false, "Output as JSON")
	workersImportCmd.Flags().Bool("dry-run", false, "Only print the names that would be registered")
}

func runWorkersList(cmd *cobra.Command, args []string) error {
	query := mustGetString(cmd, "query")
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

	workers, err := engine.Workers(context.Background(), query)
	if err != nil {
		return fmt.Errorf("failed to list workers: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(workers)
	}

	if len(workers) == 0 {
		fmt.Println("No workers registered")
		return nil
	}
	fmt.Printf("%-10s %-20s %s\n", "ID", "REGISTERED", "NAME")
	for _, w := range workers {
		fmt.Printf("%-10s %-20s %s\n", w.WorkerID, w.CreatedAt.Local().Format("2006-01-02 15:04"), w.Name)
	}
	fmt.Printf("\nTotal: %d\n", len(workers))
	return nil
}

func runWorkersAdd(cmd *cobra.Command, args []string) error {
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

	id, err := engine.Register(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to register worker: %w", err)
	}
	fmt.Printf("Registered %s as %s\n", args[0], id)
	return nil
}

func runWorkersRemove(cmd *cobra.Command, args []string) error {
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

	if err := engine.Remove(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to remove worker: %w", err)
	}
	fmt.Printf("Removed worker %s\n", args[0])
	return nil
}

func runWorkersImport(cmd *cobra.Command, args []string) error {
	dryRun := mustGetBool(cmd, "dry-run")

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()

	names, err := report.ReadWorkerNames(f)
	if err != nil {
		return fmt.Errorf("failed to read worker names: %w", err)
	}
	if len(names) == 0 {
		fmt.Println("No names found")
		return nil
	}

	if dryRun {
		for _, n := range names {
			fmt.Println(n)
		}
		fmt.Printf("\n%d workers would be registered\n", len(names))
		return nil
	}

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

	bar := progressbar.NewOptions(len(names),
		progressbar.OptionSetDescription("Registering workers"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	// Registration allocates ids from the current maximum, so rows are added one by one.
	ctx := context.Background()
	var failed []string
	first, last := "", ""
	for _, name := range names {
		id, err := engine.Register(ctx, name)
		bar.Add(1)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		if first == "" {
			first = id
		}
		last = id
	}
	bar.Finish()
	fmt.Println()

	if first != "" {
		fmt.Printf("Registered %d workers (%s-%s)\n", len(names)-len(failed), first, last)
	}
	for _, msg := range failed {
		fmt.Printf("Failed: %s\n", msg)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d workers could not be registered", len(failed), len(names))
	}
	return nil
}
