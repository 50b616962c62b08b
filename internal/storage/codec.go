package storage

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/valter-silva-au/todo/pkg/models"
	"gopkg.in/yaml.v3"
)

// Export formats accepted by ExportTasks.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// EncodeTasks serializes the collection as a JSON array of
// {id, text, completed} records, preserving order. A nil collection
// encodes as an empty array.
func EncodeTasks(tasks []models.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []models.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("encoding tasks: %w", err)
	}
	return data, nil
}

// DecodeTasks parses a value written by EncodeTasks. A JSON null decodes to
// an empty collection.
func DecodeTasks(data []byte) ([]models.Task, error) {
	var tasks []models.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("decoding tasks: %w", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// ExportTasks writes the collection to w in the given format.
func ExportTasks(w io.Writer, tasks []models.Task, format string) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(tasks); err != nil {
			return fmt.Errorf("exporting tasks as JSON: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tasks); err != nil {
			return fmt.Errorf("exporting tasks as YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("exporting tasks as YAML: %w", err)
		}
	default:
		return fmt.Errorf("exporting tasks: unsupported format %q (use json or yaml)", format)
	}
	return nil
}
