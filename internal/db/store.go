package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hpungsan/lectio/internal/config"
	"github.com/hpungsan/lectio/internal/errors"
)

// errNotOpen is returned by Store methods called before Open or after Close.
var errNotOpen = stderrors.New("store is not open")

// Entry is one key/value pair written by PutMany.
type Entry struct {
	Key   string
	Value []byte
}

// EntryInfo describes a stored value without decoding it.
type EntryInfo struct {
	Key       string `json:"key"`
	Encoding  string `json:"encoding"`
	Size      int    `json:"size"`
	Stored    int    `json:"stored_bytes"`
	UpdatedAt int64  `json:"updated_at"`
}

// Store is a durable key-value store backed by the kv table.
// It is constructed closed; callers own the Open/Close lifecycle.
type Store struct {
	baseDir     string
	cfg         *config.Config
	compressMin int

	mu sync.RWMutex
	db *sql.DB
}

// NewStore creates a Store rooted at baseDir. Nothing touches disk until Open.
func NewStore(baseDir string, cfg *config.Config) *Store {
	compressMin := config.DefaultCompressMinBytes
	if cfg != nil && cfg.CompressMinBytes != 0 {
		compressMin = cfg.CompressMinBytes
	}
	return &Store{baseDir: baseDir, cfg: cfg, compressMin: compressMin}
}

// Open initializes the database. Calling Open on an open store is a no-op.
func (s *Store) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return nil
	}
	database, err := Init(s.baseDir)
	if err != nil {
		return err
	}
	ConfigurePool(database, s.cfg)
	s.db = database
	return nil
}

// Close releases the database handle. Calling Close twice is safe.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// DB exposes the underlying handle (nil when closed).
func (s *Store) DB() *sql.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

func (s *Store) handle() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, errors.NewInternal(errNotOpen)
	}
	return s.db, nil
}

// Get returns the value stored under key, or (nil, nil) when the key is absent.
// A value that fails decompression or checksum verification yields ErrParseFailed.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	database, err := s.handle()
	if err != nil {
		return nil, err
	}

	var (
		stored   []byte
		encoding string
		checksum string
	)
	err = database.QueryRowContext(ctx,
		`SELECT value, encoding, checksum FROM kv WHERE key = ?`, key,
	).Scan(&stored, &encoding, &checksum)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	data, err := decodeValue(stored, encoding, checksum)
	if err != nil {
		return nil, errors.NewParseFailed(key, err)
	}
	return data, nil
}

// Put stores a single value.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	return s.PutMany(ctx, Entry{Key: key, Value: value})
}

// PutMany stores all entries in one transaction: either every entry is written or none is.
func (s *Store) PutMany(ctx context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	keys := entryKeys(entries)

	database, err := s.handle()
	if err != nil {
		return errors.NewPersistFailed(keys, err)
	}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewPersistFailed(keys, err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()
	for _, e := range entries {
		encoded, encoding, err := encodeValue(e.Value, s.compressMin)
		if err != nil {
			return errors.NewPersistFailed(e.Key, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO kv (key, value, encoding, checksum, size, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
				value = excluded.value,
				encoding = excluded.encoding,
				checksum = excluded.checksum,
				size = excluded.size,
				updated_at = excluded.updated_at
		`, e.Key, encoded, encoding, Checksum(e.Value), len(e.Value), now)
		if err != nil {
			return errors.NewPersistFailed(e.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewPersistFailed(keys, err)
	}
	return nil
}

// Delete removes the given keys. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	database, err := s.handle()
	if err != nil {
		return err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	query := fmt.Sprintf(`DELETE FROM kv WHERE key IN (%s)`, placeholders)
	if _, err := database.ExecContext(ctx, query, args...); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// Clear removes every stored value.
func (s *Store) Clear(ctx context.Context) error {
	database, err := s.handle()
	if err != nil {
		return err
	}
	if _, err := database.ExecContext(ctx, `DELETE FROM kv`); err != nil {
		return errors.NewInternal(err)
	}
	// Reclaim space held by the body blob (best-effort)
	_, _ = database.ExecContext(ctx, `VACUUM`)
	return nil
}

// Stat lists metadata for every stored key, ordered by key.
func (s *Store) Stat(ctx context.Context) ([]EntryInfo, error) {
	database, err := s.handle()
	if err != nil {
		return nil, err
	}

	rows, err := database.QueryContext(ctx,
		`SELECT key, encoding, size, length(value), updated_at FROM kv ORDER BY key`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var infos []EntryInfo
	for rows.Next() {
		var info EntryInfo
		if err := rows.Scan(&info.Key, &info.Encoding, &info.Size, &info.Stored, &info.UpdatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return infos, nil
}

func entryKeys(entries []Entry) string {
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return strings.Join(keys, ", ")
}
