package persistence

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"
)

func Encode(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses and validates a document.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	if !slices.Contains(supportedVersions, doc.Version) {
		return nil, fmt.Errorf("parse state: unsupported version %q", doc.Version)
	}
	if doc.Holds == nil {
		doc.Holds = make(map[string]Hold)
	}
	if err := Validate(&doc); err != nil {
		return nil, fmt.Errorf("validate state: %w", err)
	}
	return &doc, nil
}

func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	return Decode(data)
}

// Save writes doc next to path and renames it into place, so a failed save
// leaves any existing file untouched.
func Save(path string, doc *Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".cled-*.yaml")
	if err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// Validate reports every broken reference in doc at once.
func Validate(doc *Document) error {
	el := errors.NewErrorList()

	for id, h := range doc.Holds {
		if h.BlueprintID == "" {
			el.Add(fmt.Errorf("hold %s: BlueprintId is required", id))
		}
	}

	owner := make(map[string]int)
	for i, r := range doc.Routes {
		if len(r.HoldIDs) == 0 {
			el.Add(fmt.Errorf("route %d: no holds", i))
		}
		for _, id := range r.HoldIDs {
			if !hasHold(doc, id) {
				el.Add(fmt.Errorf("route %d: unknown hold %s", i, id))
			}
			if prev, ok := owner[id]; ok && prev != i {
				el.Add(fmt.Errorf("route %d: hold %s already belongs to route %d", i, id, prev))
			}
			owner[id] = i
		}
	}

	for _, id := range doc.StartingHoldIDs {
		if !hasHold(doc, id) {
			el.Add(fmt.Errorf("starting hold %s: unknown hold", id))
		}
		if slices.Contains(doc.EndingHoldIDs, id) {
			el.Add(fmt.Errorf("hold %s is both starting and ending", id))
		}
	}
	for _, id := range doc.EndingHoldIDs {
		if !hasHold(doc, id) {
			el.Add(fmt.Errorf("ending hold %s: unknown hold", id))
		}
	}

	return el.Err()
}
