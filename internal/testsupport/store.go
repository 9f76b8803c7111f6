package testsupport

import (
	"testing"

	"github.com/oloynet/tinals-player/internal/config"
	"github.com/oloynet/tinals-player/internal/history"
	"github.com/oloynet/tinals-player/internal/store"
)

// MustOpenLedger opens the run ledger for tests and registers cleanup.
func MustOpenLedger(t testing.TB, cfg *config.Config) *history.Ledger {
	t.Helper()

	ledger, err := history.Open(cfg.HistoryPath())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = ledger.Close()
	})
	return ledger
}

// WriteItems seeds the item store with a JSON document.
func WriteItems(t testing.TB, cfg *config.Config, content string) {
	t.Helper()
	WriteText(t, cfg.Paths.DataFile, content)
}

// ReadItems loads the item store, failing the test on error.
func ReadItems(t testing.TB, cfg *config.Config) []*store.Item {
	t.Helper()
	items, err := store.Load(cfg.Paths.DataFile)
	if err != nil {
		t.Fatalf("store.Load: %v", err)
	}
	return items
}
