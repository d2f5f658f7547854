// Package store persists named whole-sketch snapshots for the export and
// import actions. Two backends share one front: a JSON file for local use
// and Postgres when a DSN is configured. Loads from Postgres go through a
// small LRU cache keyed by sketch name; saves invalidate the entry.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"

	"sketchbook/internal/sketch"
)

type Store struct {
	path string
	db   *sql.DB

	loadOnce sync.Once
	loadErr  error
	mu       sync.RWMutex
	byName   map[string]sketch.SketchData

	schemaOnce sync.Once
	schemaErr  error

	cache *lru.Cache[string, sketch.SketchData]
}

// New opens a file-backed store at path. The file is read lazily on first
// use; a missing file is an empty store.
func New(path string) *Store {
	return &Store{
		path:   path,
		byName: make(map[string]sketch.SketchData),
	}
}

// NewPostgres opens a Postgres-backed store and verifies the connection.
func NewPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	cache, err := lru.New[string, sketch.SketchData](256)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, cache: cache}, nil
}

// NewFromEnv picks the backend: Postgres when SKETCH_STORE_PG_DSN is set
// and reachable, the file at path otherwise.
func NewFromEnv(path string) *Store {
	dsn := strings.TrimSpace(os.Getenv("SKETCH_STORE_PG_DSN"))
	if dsn == "" {
		return New(path)
	}
	s, err := NewPostgres(dsn)
	if err != nil {
		return New(path)
	}
	return s
}

// Load returns the sketch saved under name.
func (s *Store) Load(name string) (sketch.SketchData, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return sketch.SketchData{}, fmt.Errorf("empty sketch name")
	}
	if s.db != nil {
		if cached, ok := s.cache.Get(name); ok {
			return cached, nil
		}
		data, err := s.loadDB(name)
		if err != nil {
			return sketch.SketchData{}, err
		}
		s.cache.Add(name, data)
		return data, nil
	}
	return s.loadFile(name)
}

// Save stores data under name, replacing any previous snapshot.
func (s *Store) Save(name string, data sketch.SketchData) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("empty sketch name")
	}
	if s.db != nil {
		if err := s.saveDB(name, data); err != nil {
			return err
		}
		s.cache.Remove(name)
		return nil
	}
	return s.saveFile(name, data)
}

// List returns the names of all saved sketches, sorted.
func (s *Store) List() ([]string, error) {
	if s.db != nil {
		return s.listDB()
	}
	return s.listFile()
}

// Delete removes the snapshot saved under name. Deleting a missing name is
// not an error.
func (s *Store) Delete(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("empty sketch name")
	}
	if s.db != nil {
		if err := s.deleteDB(name); err != nil {
			return err
		}
		s.cache.Remove(name)
		return nil
	}
	return s.deleteFile(name)
}

// Close releases the database connection, if any.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
