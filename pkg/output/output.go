// Package output reads and writes the images JSON file.
package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/pve-planner/pvescrape/pkg/image"
)

// DefaultPath is where the planner UI expects its image list.
const DefaultPath = "src/images.json"

// Marshal encodes entries as an indented JSON array.
func Marshal(entries []image.Entry) ([]byte, error) {
	if entries == nil {
		entries = []image.Entry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return nil, errors.Wrap(err, "failed to encode entries")
	}
	return buf.Bytes(), nil
}

// Write replaces the file at path with entries. The content goes to a
// temporary file first, so an existing file is never left half written.
func Write(path string, entries []image.Entry) error {
	data, err := Marshal(entries)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create output directory %s", dir)
	}

	tmpFile, err := os.CreateTemp(dir, ".images-*.json")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary file")
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)
	defer tmpFile.Close()

	if _, err := tmpFile.Write(data); err != nil {
		return errors.Wrap(err, "failed to write temporary file")
	}
	if err := tmpFile.Chmod(0644); err != nil {
		return errors.Wrap(err, "failed to set file permissions")
	}
	if err := tmpFile.Close(); err != nil {
		return errors.Wrap(err, "failed to close temporary file")
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Wrapf(err, "failed to move output to %s", path)
	}
	return nil
}

// Read loads entries from an images JSON file.
func Read(path string) ([]image.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	var entries []image.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return entries, nil
}
