package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/site-attendance/internal/ai"
	"github.com/kozaktomas/site-attendance/internal/attendance"
	"github.com/kozaktomas/site-attendance/internal/config"
	"github.com/kozaktomas/site-attendance/internal/database"
	"github.com/kozaktomas/site-attendance/internal/database/postgres"
	"github.com/kozaktomas/site-attendance/internal/database/sqlite"
	"github.com/kozaktomas/site-attendance/internal/storage"
)

// openStore connects to the database named by DATABASE_URL.
func openStore(cfg *config.Config) (*database.Store, error) {
	if cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}

	switch cfg.Database.Driver() {
	case "sqlite3":
		path := cfg.Database.SQLitePath()
		fmt.Printf("Using SQLite database %s\n", path)
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}
		return store, nil
	default:
		fmt.Printf("Connecting to PostgreSQL database...\n")
		store, err := postgres.Open(context.Background(), &cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		return store, nil
	}
}

// newClassifier builds the classifier selected by VISION_PROVIDER.
func newClassifier(ctx context.Context, cfg *config.Config) (ai.Classifier, error) {
	switch cfg.Vision.Provider {
	case "gemini":
		pricing := cfg.GetModelPricing(cfg.Gemini.Model).Standard
		c, err := ai.NewGeminiClassifier(ctx, ai.GeminiOptions{
			APIKey:       cfg.Gemini.APIKey,
			Model:        cfg.Gemini.Model,
			MaxImageSize: cfg.Vision.MaxImageSize,
			Pricing:      ai.RequestPricing{Input: pricing.Input, Output: pricing.Output},
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case "openai":
		pricing := cfg.GetModelPricing("gpt-4.1-mini").Standard
		c, err := ai.NewOpenAIClassifier(ai.OpenAIOptions{
			Token:        cfg.OpenAI.Token,
			MaxImageSize: cfg.Vision.MaxImageSize,
			Pricing:      ai.RequestPricing{Input: pricing.Input, Output: pricing.Output},
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown VISION_PROVIDER %q (use gemini or openai)", cfg.Vision.Provider)
	}
}

// newObjectStore returns the Supabase bucket when configured, else an in-memory store.
func newObjectStore(cfg *config.Config) (storage.ObjectStore, error) {
	if !cfg.Storage.Enabled() {
		fmt.Printf("STORAGE_URL not set, frames are staged in memory\n")
		return storage.NewMemory(), nil
	}
	s, err := storage.NewSupabase(cfg.Storage.URL, cfg.Storage.Key, cfg.Storage.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to configure object storage: %w", err)
	}
	fmt.Printf("Staging frames in bucket %s\n", s.Bucket())
	return s, nil
}

// newEngine wires an engine over store. The classifier and object store are only needed
// by the kiosk operations, so CLI commands pass nil for them.
func newEngine(cfg *config.Config, store *database.Store, classifier ai.Classifier, objects storage.ObjectStore) (*attendance.Engine, error) {
	if objects == nil {
		objects = storage.NewMemory()
	}
	engine, err := attendance.NewEngine(attendance.Options{
		Workers:        store.Workers,
		Attendance:     store.Attendance,
		Objects:        objects,
		Classifier:     classifier,
		VisionTimeout:  cfg.Vision.Timeout,
		StorageTimeout: cfg.Storage.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create attendance engine: %w", err)
	}
	return engine, nil
}
