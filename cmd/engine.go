package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/adaptiq/internal/hints"
	"github.com/abhisek/adaptiq/internal/itembank"
	"github.com/abhisek/adaptiq/internal/llm"
	"github.com/abhisek/adaptiq/internal/logger"
	"github.com/abhisek/adaptiq/internal/store"
	"github.com/spf13/cobra"
)

// openStore opens the SQLite database selected by --db / ADAPTIQ_DB.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// loadBanks builds the bank registry from the archive. An empty archive is
// seeded with the built-in bank so that every served version is persisted.
func loadBanks(ctx context.Context, st *store.Store) (*itembank.Registry, error) {
	seed, err := itembank.Seed()
	if err != nil {
		return nil, fmt.Errorf("load seed bank: %w", err)
	}
	reg := itembank.NewRegistry(seed)

	infos, err := st.Banks().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list banks: %w", err)
	}
	if len(infos) == 0 {
		if err := st.Banks().Save(ctx, seed, time.Now()); err != nil {
			return nil, fmt.Errorf("archive seed bank: %w", err)
		}
		return reg, nil
	}
	if _, err := st.Banks().Restore(ctx, reg); err != nil {
		return nil, fmt.Errorf("restore banks: %w", err)
	}
	return reg, nil
}

// newHintGenerator returns the LLM-backed generator when a provider is
// configured and the rule generator otherwise.
func newHintGenerator(ctx context.Context, rec llm.RequestRecorder, log *logger.Logger) hints.Generator {
	provider, err := llm.NewProvider(ctx, llm.ConfigFromEnv(), rec, log)
	if err != nil {
		log.Warn("LLM provider not configured, using rule-based hints", "error", err)
		return hints.NewRuleGenerator()
	}
	if provider == nil {
		return hints.NewRuleGenerator()
	}
	return hints.NewLLMGenerator(provider, hints.DefaultConfig())
}
