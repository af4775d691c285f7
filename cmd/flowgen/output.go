package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dukex/flowgen/pkg/models"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var errUnknownFormat = errors.New("unknown output format")

// writeOutput encodes v as indented JSON or as YAML. YAML keys follow the
// JSON field names so exported documents stay importable.
func writeOutput(w io.Writer, format string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	switch format {
	case formatJSON, "":
		_, err = fmt.Fprintln(w, string(data))

		return err
	case formatYAML:
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}

		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)

		if err := encoder.Encode(generic); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}

		return encoder.Close()
	default:
		return fmt.Errorf("%w: %s", errUnknownFormat, format)
	}
}

// readDocument loads a workflow document from a JSON or YAML file; "-" reads stdin as JSON.
func readDocument(path string, stdin io.Reader) (*models.WorkflowDocument, error) {
	var (
		data []byte
		err  error
	)

	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read workflow %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var generic any
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("failed to decode workflow YAML: %w", err)
		}

		data, err = json.Marshal(generic)
		if err != nil {
			return nil, fmt.Errorf("failed to decode workflow YAML: %w", err)
		}
	}

	var doc models.WorkflowDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode workflow: %w", err)
	}

	return &doc, nil
}
