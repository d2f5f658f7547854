package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"sketchbook/internal/sketch"
)

func (s *Store) ensureSchema() error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS sketches (
  name TEXT PRIMARY KEY,
  data JSONB NOT NULL,
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`)
	})
	return s.schemaErr
}

func (s *Store) loadDB(name string) (sketch.SketchData, error) {
	if err := s.ensureSchema(); err != nil {
		return sketch.SketchData{}, err
	}
	var raw []byte
	err := s.db.QueryRow(`SELECT data FROM sketches WHERE name = $1`, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return sketch.SketchData{}, fmt.Errorf("no sketch named %q", name)
	}
	if err != nil {
		return sketch.SketchData{}, err
	}
	var data sketch.SketchData
	if err := json.Unmarshal(raw, &data); err != nil {
		return sketch.SketchData{}, fmt.Errorf("decoding sketch %q: %w", name, err)
	}
	return data, nil
}

func (s *Store) saveDB(name string, data sketch.SketchData) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding sketch %q: %w", name, err)
	}
	_, err = s.db.Exec(`
INSERT INTO sketches (name, data, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (name)
DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`, name, raw)
	return err
}

func (s *Store) listDB() ([]string, error) {
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT name FROM sketches ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) deleteDB(name string) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM sketches WHERE name = $1`, name)
	return err
}
