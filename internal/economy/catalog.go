package economy

import (
	"strings"
	"sync"
	"unicode"

	"github.com/hearth-app/hearth/internal/domain"
)

// ─── Catalog Registry ───────────────────────────────────────────────────────
// Deduplicated registration of dynamically-discovered purchasable entries.
// The entry id is derived from the normalized seed, so registering the same
// logical item twice always resolves to the existing entry.

// RegisterOptions carries optional fields for catalog registration.
type RegisterOptions struct {
	ID       string   // explicit id, used only when the seed derives none
	Cost     int64    // cost override; 0 means use the cost model
	Tags     []string
	ImageRef string
}

// Registry holds the catalog entry set. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*domain.CatalogEntry
	order   []string // registration order, for stable enumeration
}

// NewRegistry creates an empty catalog registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*domain.CatalogEntry)}
}

// NormalizeSeed strips cosmetic variant markers from an identity seed so
// that visual variants of the same item share one identity: whitespace,
// Unicode variation selectors, skin-tone modifiers, and zero-width joiners
// are removed; ASCII letters are lowercased.
func NormalizeSeed(seed string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(seed) {
		switch {
		case r == 0xFE0E || r == 0xFE0F: // variation selectors
		case r >= 0x1F3FB && r <= 0x1F3FF: // skin-tone modifiers
		case r == 0x200D: // zero-width joiner
		case unicode.IsSpace(r):
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// DeriveID computes the stable catalog id for a normalized seed.
func DeriveID(normalized string) string {
	return "itm-" + domain.SHA256Hex([]byte(normalized))[:12]
}

// Register normalizes the seed, derives a stable id, and inserts the entry
// if absent. Re-registering the same identity is idempotent: the existing
// entry is returned, with any previously-absent optional fields merged in
// rather than overwritten. If no id can be derived (empty normalized seed)
// and no explicit id is supplied, ErrInvalidIdentity is returned.
func (r *Registry) Register(seed string, opts *RegisterOptions) (domain.CatalogEntry, error) {
	norm := NormalizeSeed(seed)

	var id string
	switch {
	case norm != "":
		id = DeriveID(norm)
	case opts != nil && opts.ID != "":
		id = opts.ID
	default:
		return domain.CatalogEntry{}, domain.ErrInvalidIdentity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[id]; ok {
		mergeOptions(existing, opts)
		return *existing, nil
	}

	entry := &domain.CatalogEntry{ID: id, Seed: norm, Cost: Cost(norm)}
	if opts != nil {
		if opts.Cost > 0 {
			entry.Cost = opts.Cost
		}
		entry.Tags = append([]string(nil), opts.Tags...)
		entry.ImageRef = opts.ImageRef
	}
	r.entries[id] = entry
	r.order = append(r.order, id)
	return *entry, nil
}

// mergeOptions fills previously-absent optional fields on an existing entry.
func mergeOptions(entry *domain.CatalogEntry, opts *RegisterOptions) {
	if opts == nil {
		return
	}
	if entry.ImageRef == "" {
		entry.ImageRef = opts.ImageRef
	}
	for _, tag := range opts.Tags {
		if !containsTag(entry.Tags, tag) {
			entry.Tags = append(entry.Tags, tag)
		}
	}
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Lookup returns the entry with the given id, if present.
func (r *Registry) Lookup(id string) (domain.CatalogEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok {
		return domain.CatalogEntry{}, false
	}
	return *entry, true
}

// Entries returns all entries in registration order.
func (r *Registry) Entries() []domain.CatalogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.CatalogEntry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.entries[id])
	}
	return out
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// restore replaces the entry set with persisted entries.
func (r *Registry) restore(entries []domain.CatalogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]*domain.CatalogEntry, len(entries))
	r.order = r.order[:0]
	for i := range entries {
		e := entries[i]
		if e.ID == "" {
			continue
		}
		if _, ok := r.entries[e.ID]; ok {
			continue
		}
		r.entries[e.ID] = &e
		r.order = append(r.order, e.ID)
	}
}

// reset clears the registry.
func (r *Registry) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]*domain.CatalogEntry)
	r.order = nil
}
