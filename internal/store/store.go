// Package store persists the canonical schema model as a JSON artifact and
// reloads it. The artifact is the one durable output a run guarantees, so
// write failures are fatal and loud.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schemapilot/schemapilot/internal/schema"
)

type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("artifact directory is required")
	}
	return &Store{dir: dir}, nil
}

// Save writes the database to its artifact path. The write goes through a
// temp file and a rename so a run never leaves a half-written artifact.
func (s *Store) Save(db schema.Database) (string, error) {
	if err := db.Validate(); err != nil {
		return "", fmt.Errorf("refusing to save invalid schema: %w", err)
	}

	location, err := ArtifactPath(s.dir, db.Backend, db.Name)
	if err != nil {
		return "", err
	}

	payload, err := Marshal(db)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, filepath.Base(location)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create artifact temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("close artifact temp file: %w", err)
	}
	if err := os.Rename(tmpName, location); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("publish artifact: %w", err)
	}

	return location, nil
}

// Marshal renders the artifact document. Key names and array ordering are
// stable, so the same database always marshals to identical bytes.
func Marshal(db schema.Database) ([]byte, error) {
	payload, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return append(payload, '\n'), nil
}

// Load is the exact inverse of Save.
func Load(location string) (schema.Database, error) {
	payload, err := os.ReadFile(location)
	if err != nil {
		return schema.Database{}, fmt.Errorf("read artifact: %w", err)
	}

	var db schema.Database
	if err := json.Unmarshal(payload, &db); err != nil {
		return schema.Database{}, fmt.Errorf("decode artifact %s: %w", location, err)
	}
	if err := db.Validate(); err != nil {
		return schema.Database{}, fmt.Errorf("artifact %s: %w", location, err)
	}
	return db, nil
}
