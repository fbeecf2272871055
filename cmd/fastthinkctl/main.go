// Command fastthinkctl drives a single FastThink session end to end
// against an in-memory store and prints the resulting commit as JSON.
// It exists to give the ambient stack (config, logging) a concrete,
// exercised host; the MCP tool surface that would normally front this
// engine is out of scope for this repository.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/rpggio/fastthink/internal/config"
	"github.com/rpggio/fastthink/internal/fastthink/manager"
	"github.com/rpggio/fastthink/internal/fastthink/store"
	"github.com/rpggio/fastthink/internal/fastthink/store/storetest"
	"github.com/rpggio/fastthink/internal/fastthink/thought"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.Log.Level),
	}))

	sessionLimits, err := cfg.Resolve()
	if err != nil {
		logger.Error("failed to resolve limits", "error", err)
		os.Exit(1)
	}

	backingStore := storetest.New()
	backingStore.Seed(
		store.SearchRecord{ID: "m7", Content: "LRU works well for bursty traffic", Score: 0.9},
		store.SearchRecord{ID: "m8", Content: "LFU degrades under skewed access", Score: 0.7},
	)

	mgr := manager.New(backingStore, sessionLimits, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := runDemoSession(ctx, mgr)
	if err != nil {
		logger.Error("demo session failed", "error", err)
		os.Exit(1)
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Error("failed to encode result", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(encoded))
}

func runDemoSession(ctx context.Context, mgr *manager.Manager) (manager.CommitResult, error) {
	sessionID := "demo-session"

	root, err := mgr.StartThinking(sessionID, "Should we cache read-heavy lookups?")
	if err != nil {
		return manager.CommitResult{}, err
	}

	recalled, err := mgr.Recall(ctx, sessionID, "cache eviction policies", root)
	if err != nil {
		return manager.CommitResult{}, err
	}
	if len(recalled) == 0 {
		return manager.CommitResult{}, fmt.Errorf("expected recall to insert thoughts")
	}

	if _, err := mgr.Conclude(sessionID, "Adopt an LRU cache in front of the lookup path", recalled); err != nil {
		return manager.CommitResult{}, err
	}

	if _, err := mgr.ExtractEntity(sessionID, root, "LRU", thought.EntityTechnology); err != nil {
		return manager.CommitResult{}, err
	}

	return mgr.Commit(ctx, sessionID, "demo-user")
}
