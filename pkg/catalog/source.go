package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dukex/flowgen/pkg/models"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for seed files that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported catalog file format")

// FileSource reads definitions from a JSON or YAML file on every load.
type FileSource struct {
	path string
}

// NewFileSource creates a source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// ListNodeTypes implements Source.
func (s *FileSource) ListNodeTypes(_ context.Context) ([]*models.NodeTypeDefinition, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", s.path, err)
	}

	return Decode(filepath.Ext(s.path), data)
}

// Decode parses a catalog document. ext selects the format (".json", ".yaml", ".yml").
// The result is checked with struct validation and ValidateCatalog.
func Decode(ext string, data []byte) ([]*models.NodeTypeDefinition, error) {
	var defs []*models.NodeTypeDefinition

	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &defs); err != nil {
			return nil, fmt.Errorf("failed to decode catalog JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &defs); err != nil {
			return nil, fmt.Errorf("failed to decode catalog YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if err := Validate(defs); err != nil {
		return nil, err
	}

	return defs, nil
}

// Validate runs struct validation on every definition and the catalog-wide invariants.
func Validate(defs []*models.NodeTypeDefinition) error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	for _, def := range defs {
		if err := validate.Struct(def); err != nil {
			return fmt.Errorf("invalid node type %q: %w", def.TypeID, err)
		}
	}

	return models.ValidateCatalog(defs)
}
