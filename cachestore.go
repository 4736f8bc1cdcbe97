package videocourse

import (
	"context"
	"encoding/json"
	"fmt"
)

// Table names one logical cache tier
type Table string

const (
	TableTranscripts Table = "transcriptions"
	TableModules     Table = "course_modules"
	TableQuizzes     Table = "module_questions"
)

// Tables lists every cache tier in pipeline order
var Tables = []Table{TableTranscripts, TableModules, TableQuizzes}

func (t Table) valid() bool {
	for _, known := range Tables {
		if t == known {
			return true
		}
	}
	return false
}

// KV is the persistence contract every cache backend satisfies. Put must
// replace any existing value for the key atomically.
type KV interface {
	Get(ctx context.Context, table Table, key string) ([]byte, bool, error)
	Put(ctx context.Context, table Table, key string, value []byte) error
	Delete(ctx context.Context, table Table, key string) error
	Close() error
}

// Tier stores JSON-encoded values of one type in one table
type Tier[T any] struct {
	kv    KV
	table Table
}

// NewTier binds a table of kv to the value type T
func NewTier[T any](kv KV, table Table) *Tier[T] {
	return &Tier[T]{kv: kv, table: table}
}

// Get returns the cached value for key and whether it was present
func (t *Tier[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var value T
	data, ok, err := t.kv.Get(ctx, t.table, key)
	if err != nil || !ok {
		return value, false, err
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, false, fmt.Errorf("failed to decode %s entry %q: %w", t.table, key, err)
	}
	return value, true, nil
}

// Put stores value under key, replacing any previous value
func (t *Tier[T]) Put(ctx context.Context, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s entry %q: %w", t.table, key, err)
	}
	return t.kv.Put(ctx, t.table, key, data)
}

// Delete evicts key
func (t *Tier[T]) Delete(ctx context.Context, key string) error {
	return t.kv.Delete(ctx, t.table, key)
}

// Caches groups the three tiers the pipeline reads and writes
type Caches struct {
	Transcripts *Tier[VideoInfo]
	Modules     *Tier[[]Module]
	Quizzes     *Tier[[]QuizQuestion]
}

// NewCaches builds all tiers on top of one backend
func NewCaches(kv KV) *Caches {
	return &Caches{
		Transcripts: NewTier[VideoInfo](kv, TableTranscripts),
		Modules:     NewTier[[]Module](kv, TableModules),
		Quizzes:     NewTier[[]QuizQuestion](kv, TableQuizzes),
	}
}

// QuizKey is the quiz tier key for a video, module title and difficulty.
// Encoding the triple as a JSON array keeps titles containing any separator
// unambiguous.
func QuizKey(videoID, moduleTitle string, difficulty Difficulty) string {
	data, _ := json.Marshal([]string{videoID, moduleTitle, string(difficulty)})
	return string(data)
}

// OpenCacheStore connects to the backend selected in the config and makes
// sure its tables exist
func OpenCacheStore(ctx context.Context, cfg *Config) (KV, error) {
	switch cfg.CacheBackend {
	case BackendSQLite, "":
		db, err := OpenDB(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := db.CreateTables(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	case BackendRedis:
		return ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPrefix)
	case BackendCassandra:
		store, err := ConnectCassandra(cfg.CassandraHosts, cfg.CassandraKeyspace)
		if err != nil {
			return nil, err
		}
		if err := store.CreateTables(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
}
