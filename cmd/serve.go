package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/site-attendance/internal/config"
	"github.com/kozaktomas/site-attendance/internal/live"
	"github.com/kozaktomas/site-attendance/internal/notify"
	"github.com/kozaktomas/site-attendance/internal/web"
	"github.com/kozaktomas/site-attendance/internal/web/middleware"
	"github.com/spf13/cobra"
)

// shutdownTimeout bounds how long in-flight requests may take to drain.
const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Site Attendance web server.
The server answers the gate kiosk (/precheck, /verify, /manual-upload) and
the admin panel (/api/...), and streams saved records to /api/live.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 5000, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

// startNotifier enables Telegram alerts when a bot token and chat are configured.
func startNotifier(ctx context.Context, cfg *config.Config) *notify.Notifier {
	if !cfg.Telegram.Enabled() {
		fmt.Printf("Telegram alerts disabled (TELEGRAM_TOKEN or TELEGRAM_CHAT_ID not set)\n")
		return nil
	}
	notifier, err := notify.NewTelegram(notify.Options{
		Token:   cfg.Telegram.Token,
		ChatID:  cfg.Telegram.ChatID,
		Timeout: cfg.Storage.Timeout,
	})
	if err != nil {
		fmt.Printf("Warning: %v\n", err)
		fmt.Printf("PPE failures will not be reported to Telegram\n")
		return nil
	}
	notifier.Start(ctx)
	return notifier
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	classifier, err := newClassifier(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create vision classifier: %w", err)
	}
	fmt.Printf("Using %s for PPE checks\n", classifier.Name())

	objects, err := newObjectStore(cfg)
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg, store, classifier, objects)
	if err != nil {
		return err
	}

	hub := live.NewHub(middleware.CheckOrigin())
	engine.AddListener(hub)

	notifier := startNotifier(ctx, cfg)
	if notifier != nil {
		engine.AddListener(notifier)
	}

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(cfg, engine, hub, port, host)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	fmt.Printf("Starting Site Attendance on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := serveUntilSignal(ctx, server, sigChan, shutdownTimeout); err != nil {
		return err
	}

	// Stop the alert sender before the store is closed.
	cancel()
	if notifier != nil {
		notifier.Wait()
	}
	return nil
}

// lifecycle is the part of web.Server that serveUntilSignal drives.
type lifecycle interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// serveUntilSignal runs the server until a signal arrives and returns only after
// Shutdown has drained in-flight requests, so callers may close the store afterwards.
func serveUntilSignal(ctx context.Context, server lifecycle, sigChan <-chan os.Signal, timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	<-done
	return nil
}
