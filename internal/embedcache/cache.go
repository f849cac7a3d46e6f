package embedcache

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
)

// Cache is a SQLite-backed, content-hash-keyed vector store. Writes are
// buffered in memory and written in one transaction on Flush, matching the
// Builder's "flush cache after a successful build" contract.
type Cache struct {
	db *sql.DB

	mu      sync.Mutex
	pending map[string][]float32
}

// Open creates or opens a cache database at path (use ":memory:" for an
// ephemeral cache) and ensures its schema exists.
func Open(path string) (*Cache, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("embedcache: open %s: %w", path, err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS embeddings (
		hash TEXT PRIMARY KEY,
		vector BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("embedcache: create schema: %w", err)
	}
	return &Cache{db: db, pending: make(map[string][]float32)}, nil
}

// Get returns the cached vector for hash, if present. It consults pending
// writes before falling through to the database.
func (c *Cache) Get(hash string) ([]float32, bool) {
	c.mu.Lock()
	if v, ok := c.pending[hash]; ok {
		c.mu.Unlock()
		return v, true
	}
	c.mu.Unlock()

	var blob []byte
	err := c.db.QueryRow(`SELECT vector FROM embeddings WHERE hash = ?`, hash).Scan(&blob)
	if err != nil {
		return nil, false
	}
	return deserializeVector(blob), true
}

// Set buffers a vector for hash; it is not durable until Flush.
func (c *Cache) Set(hash string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[hash] = vector
}

// Flush writes every pending vector in one transaction and clears the
// pending buffer.
func (c *Cache) Flush() error {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[string][]float32)
	c.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("embedcache: begin flush: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO embeddings (hash, vector) VALUES (?, ?)
		ON CONFLICT(hash) DO UPDATE SET vector = excluded.vector`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("embedcache: prepare flush: %w", err)
	}
	defer stmt.Close()

	for hash, vec := range pending {
		if _, err := stmt.Exec(hash, serializeVector(vec)); err != nil {
			tx.Rollback()
			return fmt.Errorf("embedcache: write %s: %w", hash, err)
		}
	}
	return tx.Commit()
}

// Clear removes every cached vector, matching the Builder's "clear the
// embedding cache if disabled" failure mode.
func (c *Cache) Clear() error {
	c.mu.Lock()
	c.pending = make(map[string][]float32)
	c.mu.Unlock()
	_, err := c.db.Exec(`DELETE FROM embeddings`)
	return err
}

// Close releases the underlying database handle.
func (c *Cache) Close() error { return c.db.Close() }

func serializeVector(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

func deserializeVector(blob []byte) []float32 {
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vector[i] = math.Float32frombits(bits)
	}
	return vector
}
