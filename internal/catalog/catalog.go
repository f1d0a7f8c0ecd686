// Package catalog implements the file-backed product catalog: the single
// source of truth mapping known item names (and their aliases) to
// purchasable products. The backing file is plain JSON, human-readable
// and hand-editable by design; every mutation reloads from disk first so
// concurrent hand edits between runs are tolerated.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	domain "github.com/donaldgifford/grocery-autopilot/pkg/types"
)

const documentVersion = "1.0"

// Document is the on-disk catalog layout.
type Document struct {
	Version     string                           `json:"version"`
	LastUpdated time.Time                        `json:"last_updated,omitzero"`
	Notes       string                           `json:"notes,omitempty"`
	Products    map[string]*domain.ProductRecord `json:"products"`
}

// Keys returns the canonical keys in sorted order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.Products))
	for k := range d.Products {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Store owns the catalog file. All mutation goes through a
// load→modify→save cycle under an in-process mutex; cross-process safety
// comes from idempotent, re-verifying callers rather than file locking.
type Store struct {
	path    string
	log     *slog.Logger
	nowFunc func() time.Time
	mu      sync.Mutex
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) Option {
	return func(s *Store) {
		s.nowFunc = f
	}
}

// NewStore creates a Store backed by the JSON file at path. The file is
// not required to exist yet.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:    path,
		log:     slog.Default(),
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the catalog from disk. A missing file yields an empty
// catalog, not an error. Each record's canonical key is synced from its
// map key so hand-edited files stay consistent.
func (s *Store) Load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &Document{Version: documentVersion, Products: map[string]*domain.ProductRecord{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parsing catalog file %s: %w", s.path, err)
	}
	if doc.Version == "" {
		doc.Version = documentVersion
	}
	if doc.Products == nil {
		doc.Products = map[string]*domain.ProductRecord{}
	}
	for key, rec := range doc.Products {
		rec.CanonicalKey = key
	}
	return doc, nil
}

// Save writes the full catalog atomically (write to a temp file in the
// same directory, then rename) and stamps last_updated.
func (s *Store) Save(doc *Document) error {
	if doc.Version == "" {
		doc.Version = documentVersion
	}
	doc.LastUpdated = s.nowFunc()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating catalog directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".catalog-*.json")
	if err != nil {
		return fmt.Errorf("creating temp catalog file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing temp catalog file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp catalog file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing catalog file: %w", err)
	}
	return nil
}

// Lookup finds the product for text: canonical key first, then aliases,
// case-insensitively. It returns nil when nothing matches. When the same
// alias appears under multiple products the first in key order wins and
// the inconsistency is logged, not fatal.
func (s *Store) Lookup(text string) (*domain.ProductRecord, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	return lookupIn(doc, text, s.log), nil
}

func lookupIn(doc *Document, text string, log *slog.Logger) *domain.ProductRecord {
	key := domain.NormalizeKey(text)
	if rec, ok := doc.Products[key]; ok {
		return rec
	}

	var found *domain.ProductRecord
	for _, k := range doc.Keys() {
		rec := doc.Products[k]
		if !rec.HasAlias(key) {
			continue
		}
		if found != nil {
			log.Warn("alias mapped to multiple products, first match wins",
				"alias", key,
				"kept", found.CanonicalKey,
				"ignored", rec.CanonicalKey,
			)
			continue
		}
		found = rec
	}
	return found
}

// Upsert merges rec into the catalog under key: new non-empty fields
// overwrite, alias lists are unioned (case-insensitive), and the creation
// timestamp is set once. An optional alias records the original free-text
// phrasing that led to this mapping.
func (s *Store) Upsert(key string, rec domain.ProductRecord, alias string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.Load()
	if err != nil {
		return err
	}

	normKey := domain.NormalizeKey(key)
	if normKey == "" {
		return errors.New("catalog: empty product key")
	}

	existing, ok := doc.Products[normKey]
	if !ok {
		existing = &domain.ProductRecord{
			CanonicalKey: normKey,
			AddedAt:      s.nowFunc(),
		}
		doc.Products[normKey] = existing
	}

	if rec.DisplayName != "" {
		existing.DisplayName = rec.DisplayName
	}
	if rec.ExternalID != "" {
		existing.ExternalID = rec.ExternalID
	}
	if rec.URL != "" {
		existing.URL = rec.URL
	}
	for _, a := range rec.Aliases {
		appendAlias(existing, a)
	}
	if alias != "" {
		appendAlias(existing, alias)
	}

	return s.Save(doc)
}

// AddAlias appends alias to the product identified by productKey and
// persists. It reports false without error when the product is unknown or
// the alias is already present case-insensitively. This is how
// human-confirmed fuzzy matches become permanent exact matches.
func (s *Store) AddAlias(productKey, alias string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.Load()
	if err != nil {
		return false, err
	}

	rec, ok := doc.Products[domain.NormalizeKey(productKey)]
	if !ok {
		return false, nil
	}
	if !appendAlias(rec, alias) {
		return false, nil
	}

	if err := s.Save(doc); err != nil {
		return false, err
	}
	return true, nil
}

// appendAlias adds alias to rec unless blank or already present,
// preserving the caller's original casing for display.
func appendAlias(rec *domain.ProductRecord, alias string) bool {
	if domain.NormalizeKey(alias) == "" || rec.HasAlias(alias) {
		return false
	}
	rec.Aliases = append(rec.Aliases, alias)
	return true
}

// VerifyAllMapped splits texts into (mapped, unmapped) against the
// current catalog, preserving input order and original casing.
func (s *Store) VerifyAllMapped(texts []string) (mapped, unmapped []string, err error) {
	doc, err := s.Load()
	if err != nil {
		return nil, nil, err
	}

	for _, text := range texts {
		if lookupIn(doc, text, s.log) != nil {
			mapped = append(mapped, text)
		} else {
			unmapped = append(unmapped, text)
		}
	}
	return mapped, unmapped, nil
}
