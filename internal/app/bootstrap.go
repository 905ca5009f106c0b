package app

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/junah201/coincheatkey-position-bot/internal/infra"
	"github.com/junah201/coincheatkey-position-bot/internal/storage"
)

// Bootstrap orchestrates the application startup sequence.
type Bootstrap struct {
	Config  *infra.Config
	Journal *storage.Journal
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization: config, logger, data
// directories and the audit journal. Failure here is the only fatal error
// in the whole system; everything past bootstrap degrades gracefully.
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping position bot...")

	cfg, err := infra.LoadConfig(infra.ResolveConfigPath())
	if err != nil {
		return err
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	infra.PrintBanner(cfg)

	if !cfg.Journal.Enabled {
		slog.Info("Journal disabled")
		return nil
	}

	workDir := infra.GetWorkspaceDir()
	dataDir := filepath.Join(workDir, "data")
	if err := infra.EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "journal.db")
	journal, err := storage.NewJournal(dbPath)
	if err != nil {
		return err
	}
	b.Journal = journal
	slog.Info("✅ Journal initialized (WAL-mode)", "path", dbPath)

	return nil
}

// Close releases bootstrap-owned resources.
func (b *Bootstrap) Close() {
	if b.Journal != nil {
		b.Journal.Close()
	}
}
