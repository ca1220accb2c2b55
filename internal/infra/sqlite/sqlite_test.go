package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/hearth-app/hearth/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "hearth.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoad_EmptyDatabaseIsColdStart(t *testing.T) {
	db := openTestDB(t)
	snap, err := db.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap != nil {
		t.Errorf("Load on empty db = %+v, want nil", snap)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	db := openTestDB(t)

	capturedAt := time.Date(2026, 3, 14, 8, 30, 0, 0, time.UTC)
	in := domain.EngineSnapshot{
		Balance:               125,
		LifetimeEarned:        300,
		ProfileLifetimeEarned: 280,
		AccrualRate:           6,
		OwnedUpgrades:         map[string]int64{"ember": 2, "candle": 1},
		Inventory:             map[string]bool{"itm-aaa": true},
		Catalog: []domain.CatalogEntry{
			{ID: "itm-aaa", Seed: "fern", Cost: 240, Tags: []string{"plant"}, ImageRef: "img/fern.png"},
			{ID: "itm-bbb", Seed: "oak", Cost: 310},
		},
		DirtyExit: true,
		Suspend: &domain.SuspendSnapshot{
			Timestamp:   capturedAt,
			Balance:     125,
			AccrualRate: 6,
		},
		SavedAt: capturedAt.Add(time.Second),
	}

	if err := db.Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, err := db.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out == nil {
		t.Fatal("Load returned nil after Save")
	}

	if out.Balance != in.Balance || out.LifetimeEarned != in.LifetimeEarned ||
		out.ProfileLifetimeEarned != in.ProfileLifetimeEarned {
		t.Errorf("counters = %d/%d/%d, want %d/%d/%d",
			out.Balance, out.LifetimeEarned, out.ProfileLifetimeEarned,
			in.Balance, in.LifetimeEarned, in.ProfileLifetimeEarned)
	}
	if !out.DirtyExit {
		t.Error("dirty-exit marker lost")
	}
	if len(out.OwnedUpgrades) != 2 || out.OwnedUpgrades["ember"] != 2 {
		t.Errorf("OwnedUpgrades = %v", out.OwnedUpgrades)
	}
	if !out.Inventory["itm-aaa"] {
		t.Errorf("Inventory = %v, missing itm-aaa", out.Inventory)
	}
	if len(out.Catalog) != 2 {
		t.Fatalf("Catalog len = %d, want 2", len(out.Catalog))
	}
	if out.Catalog[0].ID != "itm-aaa" || out.Catalog[1].ID != "itm-bbb" {
		t.Errorf("catalog order = %q, %q", out.Catalog[0].ID, out.Catalog[1].ID)
	}
	if got := out.Catalog[0]; got.Seed != "fern" || got.Cost != 240 ||
		len(got.Tags) != 1 || got.ImageRef != "img/fern.png" {
		t.Errorf("catalog entry = %+v", got)
	}
	if out.Suspend == nil {
		t.Fatal("suspend snapshot lost")
	}
	if !out.Suspend.Timestamp.Equal(capturedAt) {
		t.Errorf("suspend timestamp = %v, want %v", out.Suspend.Timestamp, capturedAt)
	}
	if out.Suspend.AccrualRate != 6 {
		t.Errorf("suspend rate = %d, want 6", out.Suspend.AccrualRate)
	}
	if !out.SavedAt.Equal(in.SavedAt) {
		t.Errorf("SavedAt = %v, want %v", out.SavedAt, in.SavedAt)
	}
}

func TestSave_LatestWins(t *testing.T) {
	db := openTestDB(t)

	first := domain.EngineSnapshot{Balance: 10, DirtyExit: true,
		Suspend: &domain.SuspendSnapshot{Timestamp: time.Now(), AccrualRate: 1}}
	if err := db.Save(first); err != nil {
		t.Fatalf("Save first: %v", err)
	}

	// A clean save must clear the marker and drop the suspend row.
	second := domain.EngineSnapshot{Balance: 20}
	if err := db.Save(second); err != nil {
		t.Fatalf("Save second: %v", err)
	}

	out, err := db.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.Balance != 20 {
		t.Errorf("Balance = %d, want 20", out.Balance)
	}
	if out.DirtyExit {
		t.Error("dirty-exit marker survived a clean save")
	}
	if out.Suspend != nil {
		t.Error("suspend snapshot survived a clean save")
	}
}

func TestLoad_PartialRowUsesDefaults(t *testing.T) {
	db := openTestDB(t)

	// An older writer may have persisted only part of the wallet row.
	if _, err := db.db.Exec(`INSERT INTO wallet (id, balance) VALUES (1, 42)`); err != nil {
		t.Fatalf("insert partial row: %v", err)
	}

	out, err := db.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out == nil {
		t.Fatal("Load returned nil for partial row")
	}
	if out.Balance != 42 {
		t.Errorf("Balance = %d, want 42", out.Balance)
	}
	if out.LifetimeEarned != 0 || out.AccrualRate != 0 || out.DirtyExit {
		t.Errorf("defaults not applied: %+v", out)
	}
	if len(out.OwnedUpgrades) != 0 || len(out.Inventory) != 0 || len(out.Catalog) != 0 {
		t.Errorf("expected empty collections, got %+v", out)
	}
	if out.Suspend != nil {
		t.Errorf("Suspend = %+v, want nil", out.Suspend)
	}
}

func TestLoad_MalformedTagsDegradeToNone(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.db.Exec(`
		INSERT INTO wallet (id) VALUES (1)
	`); err != nil {
		t.Fatalf("insert wallet: %v", err)
	}
	if _, err := db.db.Exec(`
		INSERT INTO catalog_entries (id, seed, cost, tags_json) VALUES ('itm-x', 'x', 5, 'not-json')
	`); err != nil {
		t.Fatalf("insert entry: %v", err)
	}

	out, err := db.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out.Catalog) != 1 {
		t.Fatalf("Catalog len = %d, want 1", len(out.Catalog))
	}
	if out.Catalog[0].Tags != nil {
		t.Errorf("Tags = %v, want nil for malformed payload", out.Catalog[0].Tags)
	}
}

func TestClear(t *testing.T) {
	db := openTestDB(t)
	if err := db.Save(domain.EngineSnapshot{Balance: 99,
		OwnedUpgrades: map[string]int64{"ember": 1}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := db.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	out, err := db.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out != nil {
		t.Errorf("Load after Clear = %+v, want nil", out)
	}
}
