package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hearth-app/hearth/internal/domain"
)

// DB implements domain.Store.
var _ domain.Store = (*DB)(nil)

// Save persists the full engine snapshot in one transaction.
func (db *DB) Save(snap domain.EngineSnapshot) error {
	tx, err := db.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	dirty := 0
	if snap.DirtyExit {
		dirty = 1
	}
	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	if _, err := tx.Exec(`
		INSERT INTO wallet (id, balance, lifetime_earned, profile_lifetime_earned, accrual_rate, dirty_exit, saved_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			balance                 = excluded.balance,
			lifetime_earned         = excluded.lifetime_earned,
			profile_lifetime_earned = excluded.profile_lifetime_earned,
			accrual_rate            = excluded.accrual_rate,
			dirty_exit              = excluded.dirty_exit,
			saved_at                = excluded.saved_at
	`, snap.Balance, snap.LifetimeEarned, snap.ProfileLifetimeEarned, snap.AccrualRate,
		dirty, savedAt.Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("upsert wallet: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM owned_upgrades`); err != nil {
		return fmt.Errorf("clear owned_upgrades: %w", err)
	}
	for id, count := range snap.OwnedUpgrades {
		if _, err := tx.Exec(`INSERT INTO owned_upgrades (upgrade_id, owned) VALUES (?, ?)`, id, count); err != nil {
			return fmt.Errorf("insert owned upgrade: %w", err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM inventory`); err != nil {
		return fmt.Errorf("clear inventory: %w", err)
	}
	for id, owned := range snap.Inventory {
		ownedInt := 0
		if owned {
			ownedInt = 1
		}
		if _, err := tx.Exec(`INSERT INTO inventory (item_id, owned) VALUES (?, ?)`, id, ownedInt); err != nil {
			return fmt.Errorf("insert inventory flag: %w", err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM catalog_entries`); err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}
	for i, entry := range snap.Catalog {
		tags, err := json.Marshal(entry.Tags)
		if err != nil {
			tags = []byte("[]")
		}
		if _, err := tx.Exec(`
			INSERT INTO catalog_entries (id, seed, cost, tags_json, image_ref, position)
			VALUES (?, ?, ?, ?, ?, ?)
		`, entry.ID, entry.Seed, entry.Cost, string(tags), entry.ImageRef, i); err != nil {
			return fmt.Errorf("insert catalog entry: %w", err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM suspend_snapshot`); err != nil {
		return fmt.Errorf("clear suspend snapshot: %w", err)
	}
	if s := snap.Suspend; s != nil {
		if _, err := tx.Exec(`
			INSERT INTO suspend_snapshot (id, captured_at, balance, lifetime_earned, profile_lifetime_earned, accrual_rate)
			VALUES (1, ?, ?, ?, ?, ?)
		`, s.Timestamp.Format(time.RFC3339Nano), s.Balance, s.LifetimeEarned,
			s.ProfileLifetimeEarned, s.AccrualRate); err != nil {
			return fmt.Errorf("insert suspend snapshot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load restores the last persisted snapshot, treating every field as
// optional. Returns nil when no wallet row exists (cold first start).
func (db *DB) Load() (*domain.EngineSnapshot, error) {
	var (
		snap                     domain.EngineSnapshot
		balance, lifetime, prof  sql.NullInt64
		rate, dirty              sql.NullInt64
		savedAt                  sql.NullString
	)
	err := db.db.QueryRow(`
		SELECT balance, lifetime_earned, profile_lifetime_earned, accrual_rate, dirty_exit, saved_at
		FROM wallet WHERE id = 1
	`).Scan(&balance, &lifetime, &prof, &rate, &dirty, &savedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load wallet: %w", err)
	}
	snap.Balance = balance.Int64
	snap.LifetimeEarned = lifetime.Int64
	snap.ProfileLifetimeEarned = prof.Int64
	snap.AccrualRate = rate.Int64
	snap.DirtyExit = dirty.Int64 == 1
	if savedAt.Valid {
		snap.SavedAt, _ = time.Parse(time.RFC3339Nano, savedAt.String)
	}

	snap.OwnedUpgrades, err = db.loadOwnedUpgrades()
	if err != nil {
		return nil, err
	}
	snap.Inventory, err = db.loadInventory()
	if err != nil {
		return nil, err
	}
	snap.Catalog, err = db.loadCatalog()
	if err != nil {
		return nil, err
	}
	snap.Suspend, err = db.loadSuspend()
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (db *DB) loadOwnedUpgrades() (map[string]int64, error) {
	rows, err := db.db.Query(`SELECT upgrade_id, owned FROM owned_upgrades`)
	if err != nil {
		return nil, fmt.Errorf("load owned upgrades: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var id string
		var owned sql.NullInt64
		if err := rows.Scan(&id, &owned); err != nil {
			return nil, fmt.Errorf("scan owned upgrade: %w", err)
		}
		if owned.Int64 > 0 {
			out[id] = owned.Int64
		}
	}
	return out, rows.Err()
}

func (db *DB) loadInventory() (map[string]bool, error) {
	rows, err := db.db.Query(`SELECT item_id, owned FROM inventory`)
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var id string
		var owned sql.NullInt64
		if err := rows.Scan(&id, &owned); err != nil {
			return nil, fmt.Errorf("scan inventory flag: %w", err)
		}
		if owned.Int64 == 1 {
			out[id] = true
		}
	}
	return out, rows.Err()
}

func (db *DB) loadCatalog() ([]domain.CatalogEntry, error) {
	rows, err := db.db.Query(`
		SELECT id, seed, cost, tags_json, image_ref
		FROM catalog_entries ORDER BY position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	defer rows.Close()

	var out []domain.CatalogEntry
	for rows.Next() {
		var entry domain.CatalogEntry
		var seed, tagsJSON, imageRef sql.NullString
		var cost sql.NullInt64
		if err := rows.Scan(&entry.ID, &seed, &cost, &tagsJSON, &imageRef); err != nil {
			return nil, fmt.Errorf("scan catalog entry: %w", err)
		}
		entry.Seed = seed.String
		entry.Cost = cost.Int64
		entry.ImageRef = imageRef.String
		if tagsJSON.Valid && tagsJSON.String != "" {
			// Malformed tag payloads degrade to no tags.
			json.Unmarshal([]byte(tagsJSON.String), &entry.Tags)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (db *DB) loadSuspend() (*domain.SuspendSnapshot, error) {
	var (
		s          domain.SuspendSnapshot
		capturedAt sql.NullString
	)
	err := db.db.QueryRow(`
		SELECT captured_at, balance, lifetime_earned, profile_lifetime_earned, accrual_rate
		FROM suspend_snapshot WHERE id = 1
	`).Scan(&capturedAt, &s.Balance, &s.LifetimeEarned, &s.ProfileLifetimeEarned, &s.AccrualRate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load suspend snapshot: %w", err)
	}
	if capturedAt.Valid {
		s.Timestamp, _ = time.Parse(time.RFC3339Nano, capturedAt.String)
	}
	return &s, nil
}

// Clear deletes all persisted state (full engine reset).
func (db *DB) Clear() error {
	tx, err := db.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"wallet", "owned_upgrades", "inventory", "catalog_entries", "suspend_snapshot"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}
