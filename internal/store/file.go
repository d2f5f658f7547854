package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"sketchbook/internal/sketch"
)

func (s *Store) ensureLoadedFile() error {
	s.loadOnce.Do(func() {
		b, err := os.ReadFile(s.path)
		if err != nil {
			if !os.IsNotExist(err) {
				s.loadErr = fmt.Errorf("reading sketch store %s: %w", s.path, err)
			}
			return
		}
		var rows map[string]sketch.SketchData
		if err := json.Unmarshal(b, &rows); err != nil {
			s.loadErr = fmt.Errorf("parsing sketch store %s: %w", s.path, err)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for name, data := range rows {
			if name == "" {
				continue
			}
			s.byName[name] = data
		}
	})
	return s.loadErr
}

func (s *Store) flushFile() error {
	s.mu.RLock()
	rows := make(map[string]sketch.SketchData, len(s.byName))
	for name, data := range s.byName {
		rows[name] = data
	}
	s.mu.RUnlock()

	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding sketch store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}

func (s *Store) loadFile(name string) (sketch.SketchData, error) {
	if err := s.ensureLoadedFile(); err != nil {
		return sketch.SketchData{}, err
	}
	s.mu.RLock()
	data, ok := s.byName[name]
	s.mu.RUnlock()
	if !ok {
		return sketch.SketchData{}, fmt.Errorf("no sketch named %q", name)
	}
	return data, nil
}

func (s *Store) saveFile(name string, data sketch.SketchData) error {
	if err := s.ensureLoadedFile(); err != nil {
		return err
	}
	s.mu.Lock()
	s.byName[name] = data
	s.mu.Unlock()
	return s.flushFile()
}

func (s *Store) listFile() ([]string, error) {
	if err := s.ensureLoadedFile(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	s.mu.RUnlock()
	sort.Strings(names)
	return names, nil
}

func (s *Store) deleteFile(name string) error {
	if err := s.ensureLoadedFile(); err != nil {
		return err
	}
	s.mu.Lock()
	_, ok := s.byName[name]
	delete(s.byName, name)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return s.flushFile()
}
