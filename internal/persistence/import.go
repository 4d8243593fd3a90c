package persistence

import (
	"fmt"
	"slices"

	"cled/internal/catalog"
	"cled/internal/holds"
	"cled/internal/routes"

	"go.uber.org/zap"
)

type Stage int

const (
	StageClear Stage = iota
	StageWall
	StageLibrary
	StageHolds
	StageRoutes
	StageLights
	StagePlayer
)

func (s Stage) String() string {
	switch s {
	case StageClear:
		return "clear"
	case StageWall:
		return "wall"
	case StageLibrary:
		return "library"
	case StageHolds:
		return "holds"
	case StageRoutes:
		return "routes"
	case StageLights:
		return "lights"
	case StagePlayer:
		return "player"
	default:
		return "stage(?)"
	}
}

// StageError is returned by Import when a stage fails. By the time it is
// returned the editor has been cleared to empty.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("import %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Loader owns the scene resources an import replaces.
type Loader interface {
	Clear()
	LoadWall(path string) error
	LoadLibrary(path string) (*catalog.Library, error)
	ApplyLights(l Lights)
	ApplyPlayer(p Player)
}

// Result is what the caller still has to apply after a successful import.
type Result struct {
	Library         *catalog.Library
	HoldIDs         map[string]uint64 // document ID -> scene handle
	Selection       []string
	CaptureSettings CaptureSettings
}

type Importer struct {
	Loader Loader
	Holds  *holds.Manager
	Routes *routes.Book
	// Progress runs before each stage. Optional.
	Progress func(Stage)
	Logger   *zap.Logger
}

// Import replaces the editor state with doc, one stage at a time. Any
// failure clears everything and returns a *StageError.
func (im *Importer) Import(doc *Document) (*Result, error) {
	log := im.Logger
	if log == nil {
		log = zap.NewNop()
	}
	res := &Result{HoldIDs: make(map[string]uint64, len(doc.Holds))}

	stages := []struct {
		stage Stage
		run   func() error
	}{
		{StageClear, func() error { im.clear(); return nil }},
		{StageWall, func() error { return im.Loader.LoadWall(doc.WallModelPath) }},
		{StageLibrary, func() error {
			lib, err := im.Loader.LoadLibrary(doc.HoldModelsPath)
			res.Library = lib
			return err
		}},
		{StageHolds, func() error { return im.importHolds(doc, res) }},
		{StageRoutes, func() error { return im.importRoutes(doc, res) }},
		{StageLights, func() error { im.Loader.ApplyLights(doc.Lights); return nil }},
		{StagePlayer, func() error { im.Loader.ApplyPlayer(doc.Player); return nil }},
	}

	for _, s := range stages {
		if im.Progress != nil {
			im.Progress(s.stage)
		}
		if err := s.run(); err != nil {
			log.Warn("Import failed", zap.Stringer("stage", s.stage), zap.Error(err))
			im.clear()
			return nil, &StageError{Stage: s.stage, Err: err}
		}
		log.Debug("Import stage done", zap.Stringer("stage", s.stage))
	}

	res.Selection = slices.DeleteFunc(slices.Clone(doc.SelectedHoldBlueprintIDs), func(id string) bool {
		_, ok := res.Library.Blueprint(id)
		return !ok
	})
	res.CaptureSettings = doc.CaptureSettings
	log.Info("Imported state",
		zap.Int("holds", len(res.HoldIDs)),
		zap.Int("routes", len(im.Routes.Routes())))
	return res, nil
}

func (im *Importer) clear() {
	im.Holds.Clear()
	im.Routes.Clear()
	im.Loader.Clear()
}

func (im *Importer) importHolds(doc *Document, res *Result) error {
	ids := make([]string, 0, len(doc.Holds))
	for id := range doc.Holds {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		dh := doc.Holds[id]
		bp, ok := res.Library.Blueprint(dh.BlueprintID)
		if !ok {
			return fmt.Errorf("hold %s: blueprint %q is not in the library", id, dh.BlueprintID)
		}
		h := im.Holds.Spawn(bp)
		im.Holds.Place(h, dh.Position.Vector3(), dh.Normal.Vector3(), dh.State)
		res.HoldIDs[id] = h.UID()
	}
	return nil
}

// importRoutes replays membership and marker toggles so the book's own
// invariants hold for whatever the document contained.
func (im *Importer) importRoutes(doc *Document, res *Result) error {
	lookup := func(id string) (uint64, error) {
		uid, ok := res.HoldIDs[id]
		if !ok {
			return 0, fmt.Errorf("unknown hold %s", id)
		}
		return uid, nil
	}

	for i, dr := range doc.Routes {
		r := im.Routes.NewRoute()
		for _, id := range dr.HoldIDs {
			uid, err := lookup(id)
			if err != nil {
				return fmt.Errorf("route %d: %w", i, err)
			}
			if !r.Contains(uid) {
				im.Routes.ToggleHold(r, uid)
			}
		}
		r.Name, r.Grade, r.Zone, r.Setter = dr.Name, dr.Grade, dr.Zone, dr.Setter
	}

	for _, id := range doc.StartingHoldIDs {
		uid, err := lookup(id)
		if err != nil {
			return fmt.Errorf("starting holds: %w", err)
		}
		if !im.Routes.IsStarting(uid) {
			im.Routes.ToggleStarting(uid)
		}
	}
	for _, id := range doc.EndingHoldIDs {
		uid, err := lookup(id)
		if err != nil {
			return fmt.Errorf("ending holds: %w", err)
		}
		if !im.Routes.IsEnding(uid) {
			im.Routes.ToggleEnding(uid)
		}
	}
	return nil
}
