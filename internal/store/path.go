package store

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/schemapilot/schemapilot/internal/schema"
)

var pathComponentPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)

// ArtifactPath derives the artifact location from the backend kind and the
// database name, so runs against different databases never collide.
func ArtifactPath(dir string, backend schema.Backend, database string) (string, error) {
	if !backend.Valid() {
		return "", fmt.Errorf("unknown backend kind: %q", backend)
	}
	if err := validatePathComponent(database, "database name"); err != nil {
		return "", err
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s_schema.json", backend, database)), nil
}

// ArtifactKey is the object-store form of the artifact path, always
// slash-separated.
func ArtifactKey(backend schema.Backend, database string) (string, error) {
	if !backend.Valid() {
		return "", fmt.Errorf("unknown backend kind: %q", backend)
	}
	if err := validatePathComponent(database, "database name"); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s_schema.json", backend, database), nil
}

func validatePathComponent(value, field string) error {
	if !pathComponentPattern.MatchString(value) {
		return fmt.Errorf("invalid %s: %q", field, value)
	}
	return nil
}
