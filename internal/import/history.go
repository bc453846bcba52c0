// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package accessimport

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/accessboard/internal/models"
)

// historyKeyPrefix prefixes every import run stored in BadgerDB. Keys sort by
// start time because the nanosecond timestamp is zero-padded.
const historyKeyPrefix = "import:history:"

// HistoryStore keeps the most recent import attempts.
type HistoryStore interface {
	// Record appends a run and drops runs beyond the store's limit.
	Record(ctx context.Context, run models.ImportRun) error

	// Recent returns up to limit runs, newest first. limit <= 0 returns all.
	Recent(ctx context.Context, limit int) ([]models.ImportRun, error)
}

// BadgerHistory implements HistoryStore on BadgerDB so the history survives
// restarts.
type BadgerHistory struct {
	db    *badger.DB
	limit int
	owned bool
}

// OpenBadgerHistory opens (or creates) a BadgerDB at path that keeps the
// newest limit runs. Close releases the database.
func OpenBadgerHistory(path string, limit int) (*BadgerHistory, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.ValueLogFileSize = 16 << 20
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for import history: %w", err)
	}
	h := NewBadgerHistory(db, limit)
	h.owned = true
	return h, nil
}

// NewBadgerHistory wraps an already open BadgerDB. The caller keeps
// ownership of db.
func NewBadgerHistory(db *badger.DB, limit int) *BadgerHistory {
	return &BadgerHistory{db: db, limit: limit}
}

func historyKey(run models.ImportRun) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", historyKeyPrefix, run.StartedAt.UnixNano(), run.ID))
}

// Record persists run and prunes the oldest runs beyond the limit.
func (h *BadgerHistory) Record(_ context.Context, run models.ImportRun) error {
	if run.ID == "" {
		return errors.New("import run id cannot be empty")
	}
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal import run: %w", err)
	}

	if err := h.db.Update(func(txn *badger.Txn) error {
		return txn.Set(historyKey(run), data)
	}); err != nil {
		return fmt.Errorf("store import run: %w", err)
	}
	return h.prune()
}

// keys returns every history key in ascending (oldest first) order.
func (h *BadgerHistory) keys() ([][]byte, error) {
	var keys [][]byte
	err := h.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(historyKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}

func (h *BadgerHistory) prune() error {
	if h.limit <= 0 {
		return nil
	}
	keys, err := h.keys()
	if err != nil {
		return fmt.Errorf("list import history: %w", err)
	}
	if len(keys) <= h.limit {
		return nil
	}

	stale := keys[:len(keys)-h.limit]
	return h.db.Update(func(txn *badger.Txn) error {
		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("prune import run: %w", err)
			}
		}
		return nil
	})
}

// Recent returns the newest runs first.
func (h *BadgerHistory) Recent(_ context.Context, limit int) ([]models.ImportRun, error) {
	var runs []models.ImportRun

	err := h.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(historyKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var run models.ImportRun
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &run)
			}); err != nil {
				return err
			}
			runs = append(runs, run)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load import history: %w", err)
	}

	return newestFirst(runs, limit), nil
}

// Close closes the database if OpenBadgerHistory opened it.
func (h *BadgerHistory) Close() error {
	if !h.owned {
		return nil
	}
	return h.db.Close()
}

// newestFirst reverses an oldest-first slice and truncates it to limit.
func newestFirst(runs []models.ImportRun, limit int) []models.ImportRun {
	out := make([]models.ImportRun, 0, len(runs))
	for i := len(runs) - 1; i >= 0; i-- {
		out = append(out, runs[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// InMemoryHistory implements HistoryStore in memory. It is used when no
// history path is configured and in tests.
type InMemoryHistory struct {
	mu    sync.RWMutex
	runs  []models.ImportRun
	limit int
}

// NewInMemoryHistory creates an in-memory history keeping the newest limit runs.
func NewInMemoryHistory(limit int) *InMemoryHistory {
	return &InMemoryHistory{limit: limit}
}

// Record appends run.
func (h *InMemoryHistory) Record(_ context.Context, run models.ImportRun) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.runs = append(h.runs, run)
	if h.limit > 0 && len(h.runs) > h.limit {
		h.runs = append([]models.ImportRun(nil), h.runs[len(h.runs)-h.limit:]...)
	}
	return nil
}

// Recent returns the newest runs first.
func (h *InMemoryHistory) Recent(_ context.Context, limit int) ([]models.ImportRun, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return newestFirst(h.runs, limit), nil
}
