// Package catalog loads the hold library: a directory holding holds.yaml
// plus one model/material pair and optional previews per blueprint.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"
)

const CatalogFile = "holds.yaml"

var (
	previewImageExts = []string{".png", ".jpg", ".jpeg"}
	previewVideoExts = []string{".mp4", ".webm"}
)

// Color is stored as a [name, hex] pair.
type Color struct {
	Name string
	Hex  string
}

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	var pair []string
	if err := value.Decode(&pair); err != nil {
		return fmt.Errorf("color: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("color: expected [name, hex], got %d values", len(pair))
	}
	c.Name, c.Hex = pair[0], pair[1]
	return nil
}

func (c Color) MarshalYAML() (any, error) {
	return []string{c.Name, c.Hex}, nil
}

// RGBA parses Hex as #rrggbb or #rrggbbaa.
func (c Color) RGBA() (rl.Color, error) {
	h := strings.TrimPrefix(c.Hex, "#")
	if len(h) != 6 && len(h) != 8 {
		return rl.White, fmt.Errorf("invalid hex color %q", c.Hex)
	}
	if len(h) == 6 {
		h += "ff"
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return rl.White, fmt.Errorf("invalid hex color %q", c.Hex)
	}
	return rl.NewColor(uint8(v>>24), uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

// Blueprint is an immutable catalog entry shared by every hold made from it.
type Blueprint struct {
	ID           string
	Color        Color
	Type         string
	Manufacturer string
	Labels       []string
	Volume       float64
	Date         string

	ModelPath        string
	MaterialPath     string
	PreviewImagePath string // empty when no preview exists
	PreviewVideoPath string
}

func (b *Blueprint) HasLabel(label string) bool {
	for _, l := range b.Labels {
		if strings.EqualFold(l, label) {
			return true
		}
	}
	return false
}

type blueprintDef struct {
	Color        Color    `yaml:"color"`
	Type         string   `yaml:"type"`
	Manufacturer string   `yaml:"manufacturer"`
	Labels       []string `yaml:"labels"`
	Volume       float64  `yaml:"volume"`
	Date         string   `yaml:"date"`
}

type Library struct {
	Dir        string
	blueprints map[string]*Blueprint
	ids        []string
}

// Load reads dir/holds.yaml and resolves every blueprint's files. All
// problems are collected and returned together.
func Load(dir string) (*Library, error) {
	data, err := os.ReadFile(filepath.Join(dir, CatalogFile))
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var defs map[string]blueprintDef
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("parse catalog: %s lists no holds", CatalogFile)
	}

	lib := &Library{
		Dir:        dir,
		blueprints: make(map[string]*Blueprint, len(defs)),
	}

	el := errors.NewErrorList()
	for id, def := range defs {
		bp := &Blueprint{
			ID:           id,
			Color:        def.Color,
			Type:         def.Type,
			Manufacturer: def.Manufacturer,
			Labels:       def.Labels,
			Volume:       def.Volume,
			Date:         def.Date,
			ModelPath:    filepath.Join(dir, id+".obj"),
			MaterialPath: filepath.Join(dir, id+".mtl"),
		}
		bp.PreviewImagePath = firstExisting(dir, id, previewImageExts)
		bp.PreviewVideoPath = firstExisting(dir, id, previewVideoExts)

		el.Add(validateBlueprint(bp))
		lib.blueprints[id] = bp
		lib.ids = append(lib.ids, id)
	}
	if err := el.Err(); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}

	slices.Sort(lib.ids)
	return lib, nil
}

func validateBlueprint(bp *Blueprint) error {
	el := errors.NewErrorList()
	if strings.TrimSpace(bp.ID) == "" {
		el.Add(fmt.Errorf("blueprint with empty id"))
	}
	if _, err := os.Stat(bp.ModelPath); err != nil {
		el.Add(fmt.Errorf("%s: model: %w", bp.ID, err))
	}
	if _, err := os.Stat(bp.MaterialPath); err != nil {
		el.Add(fmt.Errorf("%s: material: %w", bp.ID, err))
	}
	if bp.Color.Hex != "" {
		if _, err := bp.Color.RGBA(); err != nil {
			el.Add(fmt.Errorf("%s: %w", bp.ID, err))
		}
	}
	if bp.Volume < 0 {
		el.Add(fmt.Errorf("%s: negative volume %v", bp.ID, bp.Volume))
	}
	return el.Err()
}

func firstExisting(dir, id string, exts []string) string {
	for _, ext := range exts {
		p := filepath.Join(dir, id+ext)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// NewLibrary builds a library from blueprints already in memory. Later
// duplicates of an id are dropped.
func NewLibrary(dir string, bps ...*Blueprint) *Library {
	lib := &Library{Dir: dir, blueprints: make(map[string]*Blueprint, len(bps))}
	for _, bp := range bps {
		if _, dup := lib.blueprints[bp.ID]; dup {
			continue
		}
		lib.blueprints[bp.ID] = bp
		lib.ids = append(lib.ids, bp.ID)
	}
	slices.Sort(lib.ids)
	return lib
}

func (l *Library) Blueprint(id string) (*Blueprint, bool) {
	bp, ok := l.blueprints[id]
	return bp, ok
}

// IDs returns blueprint ids in sorted order.
func (l *Library) IDs() []string {
	return slices.Clone(l.ids)
}

func (l *Library) Len() int {
	return len(l.ids)
}

// Filter narrows the palette. Empty fields match everything; comparisons
// ignore case.
type Filter struct {
	Type         string
	Manufacturer string
	Color        string
	Label        string
}

func (f Filter) Match(bp *Blueprint) bool {
	if f.Type != "" && !strings.EqualFold(f.Type, bp.Type) {
		return false
	}
	if f.Manufacturer != "" && !strings.EqualFold(f.Manufacturer, bp.Manufacturer) {
		return false
	}
	if f.Color != "" && !strings.EqualFold(f.Color, bp.Color.Name) {
		return false
	}
	if f.Label != "" && !bp.HasLabel(f.Label) {
		return false
	}
	return true
}

func (l *Library) Filter(f Filter) []*Blueprint {
	var out []*Blueprint
	for _, id := range l.ids {
		if bp := l.blueprints[id]; f.Match(bp) {
			out = append(out, bp)
		}
	}
	return out
}
