package store

import (
	"database/sql"
	"fmt"

	"github.com/gocontext/retrieval/internal/embedcache"
	"github.com/gocontext/retrieval/internal/graph"
)

// SQLiteStore persists one Graph snapshot per root path as a JSON blob.
// It shares embedcache's driver selection (DriverName resolves to
// mattn/go-sqlite3 under CGO or modernc.org/sqlite in pure-Go builds) since
// both packages persist build artifacts to the same kind of local database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens or creates a store database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open(embedcache.DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS graph_snapshots (
		root TEXT PRIMARY KEY,
		data BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(root string) (*graph.Graph, bool, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM graph_snapshots WHERE root = ?`, root).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: load %s: %w", root, err)
	}
	g, err := graph.FromJSON(data)
	if err != nil {
		return nil, false, fmt.Errorf("store: decode %s: %w", root, err)
	}
	return g, true, nil
}

func (s *SQLiteStore) Save(root string, g *graph.Graph) error {
	data, err := g.ToJSON()
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", root, err)
	}
	_, err = s.db.Exec(`INSERT INTO graph_snapshots (root, data) VALUES (?, ?)
		ON CONFLICT(root) DO UPDATE SET data = excluded.data`, root, data)
	if err != nil {
		return fmt.Errorf("store: save %s: %w", root, err)
	}
	return nil
}

func (s *SQLiteStore) Clear(root string) error {
	_, err := s.db.Exec(`DELETE FROM graph_snapshots WHERE root = ?`, root)
	return err
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }
