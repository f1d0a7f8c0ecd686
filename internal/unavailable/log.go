// Package unavailable keeps the append-only record of items that could
// not be resolved or added to the cart, for later human follow-up. The
// backing file is plain JSON; entries are only ever appended.
package unavailable

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/donaldgifford/grocery-autopilot/pkg/types"
)

// document is the on-disk layout: a single ordered list of entries.
type document struct {
	Items []domain.UnavailabilityRecord `json:"items"`
}

// Log is the append-only unavailability log.
type Log struct {
	path    string
	nowFunc func() time.Time
	idFunc  func() string
	mu      sync.Mutex
}

// Option configures the Log.
type Option func(*Log)

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) Option {
	return func(l *Log) {
		l.nowFunc = f
	}
}

// WithIDFunc overrides record ID generation for testing.
func WithIDFunc(f func() string) Option {
	return func(l *Log) {
		l.idFunc = f
	}
}

// NewLog creates a Log backed by the JSON file at path.
func NewLog(path string, opts ...Option) *Log {
	l := &Log{
		path:    path,
		nowFunc: time.Now,
		idFunc:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append records one unavailable item. Existing entries are never
// touched; the file is re-read first so entries appended by other runs
// survive.
func (l *Log) Append(item string, reason domain.UnavailabilityReason, searchTerm string) (domain.UnavailabilityRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	doc, err := l.load()
	if err != nil {
		return domain.UnavailabilityRecord{}, err
	}

	rec := domain.UnavailabilityRecord{
		ID:         l.idFunc(),
		Item:       item,
		Reason:     reason,
		Timestamp:  l.nowFunc(),
		SearchTerm: searchTerm,
	}
	doc.Items = append(doc.Items, rec)

	if err := l.save(doc); err != nil {
		return domain.UnavailabilityRecord{}, err
	}
	return rec, nil
}

// List returns all entries in append order.
func (l *Log) List() ([]domain.UnavailabilityRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	doc, err := l.load()
	if err != nil {
		return nil, err
	}
	return doc.Items, nil
}

func (l *Log) load() (*document, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return &document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading unavailability log: %w", err)
	}

	doc := &document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parsing unavailability log %s: %w", l.path, err)
	}
	return doc, nil
}

func (l *Log) save(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding unavailability log: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".unavailable-*.json")
	if err != nil {
		return fmt.Errorf("creating temp log file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing temp log file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp log file: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing log file: %w", err)
	}
	return nil
}
