package videocourse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"
)

// CassandraStore keeps cache tiers in Cassandra tables. INSERT is an upsert
// there, which gives the overwrite-by-key semantics the pipeline relies on.
type CassandraStore struct {
	session *gocql.Session
}

// ConnectCassandra establishes a connection to Cassandra
func ConnectCassandra(hosts []string, keyspace string) (*CassandraStore, error) {
	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = 10 * time.Second
	cluster.ConnectTimeout = 10 * time.Second

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Cassandra: %w", err)
	}

	return &CassandraStore{session: session}, nil
}

// CreateTables creates the cache tables in the session keyspace
func (c *CassandraStore) CreateTables(ctx context.Context) error {
	for _, table := range Tables {
		query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			cache_key text PRIMARY KEY,
			value text,
			created_at timestamp
		)`, table)
		if err := c.session.Query(query).WithContext(ctx).Exec(); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// Get retrieves the value stored under key
func (c *CassandraStore) Get(ctx context.Context, table Table, key string) ([]byte, bool, error) {
	if !table.valid() {
		return nil, false, fmt.Errorf("unknown cache table %q", table)
	}

	var value string
	err := c.session.Query(
		fmt.Sprintf(`SELECT value FROM %s WHERE cache_key = ?`, table),
		key,
	).WithContext(ctx).Scan(&value)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("error fetching %s entry: %w", table, err)
	}
	return []byte(value), true, nil
}

// Put upserts the value stored under key
func (c *CassandraStore) Put(ctx context.Context, table Table, key string, value []byte) error {
	if !table.valid() {
		return fmt.Errorf("unknown cache table %q", table)
	}

	query := fmt.Sprintf(`INSERT INTO %s (cache_key, value, created_at) VALUES (?, ?, ?)`, table)
	if err := c.session.Query(query, key, string(value), time.Now()).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("failed to upsert %s entry: %w", table, err)
	}
	return nil
}

// Delete removes the value stored under key
func (c *CassandraStore) Delete(ctx context.Context, table Table, key string) error {
	if !table.valid() {
		return fmt.Errorf("unknown cache table %q", table)
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE cache_key = ?`, table)
	if err := c.session.Query(query, key).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("failed to delete %s entry: %w", table, err)
	}
	return nil
}

// Close closes the Cassandra session
func (c *CassandraStore) Close() error {
	c.session.Close()
	return nil
}
