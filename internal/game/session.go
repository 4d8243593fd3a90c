package game

import (
	"fmt"
	"slices"

	"cled/internal/catalog"
	"cled/internal/highlight"
	"cled/internal/holds"
	"cled/internal/interaction"
	"cled/internal/mode"
	"cled/internal/persistence"
	"cled/internal/routes"
	"cled/internal/world"

	"github.com/pixil98/go-errors"
	"go.uber.org/zap"
)

// Session is the editor without a window: all editing state plus the file
// operations the menus run on it.
type Session struct {
	Mode       *mode.Machine
	Highlights *highlight.State
	Holds      *holds.Manager
	Routes     *routes.Book
	World      *world.World
	Dispatcher *interaction.Dispatcher
	Selection  *catalog.Selection

	Capture persistence.CaptureSettings
	// StatePath is the document last opened or saved.
	StatePath string

	log      *zap.Logger
	importer *persistence.Importer
}

type SessionConfig struct {
	Input  interaction.Input
	Logger *zap.Logger
	World  world.Options
}

func NewSession(cfg SessionConfig) *Session {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.World.Logger == nil {
		cfg.World.Logger = log.Named("world")
	}

	s := &Session{
		Mode:       mode.NewMachine(),
		Highlights: highlight.New(),
		Routes:     routes.NewBook(),
		Selection:  &catalog.Selection{},
		log:        log,
	}
	s.World = world.New(s.Routes, s.Highlights, cfg.World)
	s.World.OnLibraryReload = s.libraryReloaded
	s.Holds = holds.NewManager(s.World, log.Named("holds"))
	s.Dispatcher = interaction.NewDispatcher(interaction.Config{
		Mode:       s.Mode,
		Highlights: s.Highlights,
		Holds:      s.Holds,
		Routes:     s.Routes,
		Raycaster:  s.World.Physics,
		Input:      cfg.Input,
		Blueprint:  s.Blueprint,
		LookAt:     s.World.Player.LookAt,
		Logger:     log.Named("interaction"),
	})
	s.importer = &persistence.Importer{
		Loader: s.World,
		Holds:  s.Holds,
		Routes: s.Routes,
		Logger: log.Named("import"),
	}
	return s
}

// SetProgress installs a callback run before every import stage.
func (s *Session) SetProgress(fn func(persistence.Stage)) {
	s.importer.Progress = fn
}

// Blueprint is the palette's current blueprint, or nil.
func (s *Session) Blueprint() *catalog.Blueprint {
	return s.Selection.Current(s.World.Library)
}

// Tick runs the dispatcher for one frame along the player's view.
func (s *Session) Tick(dt float32) interaction.Outcome {
	return s.Dispatcher.Tick(s.World.Player.ViewRay(), dt)
}

func (s *Session) Export() *persistence.Document {
	return persistence.Export(persistence.Snapshot{
		Player:          s.World.PlayerRecord(),
		WallModelPath:   s.World.WallPath,
		HoldModelsPath:  s.World.LibraryDir(),
		Holds:           s.Holds,
		Routes:          s.Routes,
		Selection:       s.Selection.IDs(),
		Lights:          s.World.LightSettings(),
		CaptureSettings: s.Capture,
	})
}

// Import replaces everything with doc. On failure the editor is left empty
// and the error is a *persistence.StageError.
func (s *Session) Import(doc *persistence.Document) error {
	s.Mode.Set(mode.Normal)
	s.Highlights.ClearAll()

	res, err := s.importer.Import(doc)
	if err != nil {
		s.Selection.Set(nil)
		s.StatePath = ""
		return err
	}
	s.Selection.Set(res.Selection)
	if res.CaptureSettings.ImagePath != "" {
		s.Capture = res.CaptureSettings
	}
	return nil
}

// Open loads and imports the document at path. A file that cannot be read
// or decoded leaves the current state untouched.
func (s *Session) Open(path string) error {
	doc, err := persistence.Load(path)
	if err != nil {
		return err
	}
	if err := s.Import(doc); err != nil {
		return err
	}
	s.StatePath = path
	s.log.Info("Opened state", zap.String("path", path))
	return nil
}

func (s *Session) Save(path string) error {
	if err := persistence.Save(path, s.Export()); err != nil {
		return err
	}
	s.StatePath = path
	s.log.Info("Saved state", zap.String("path", path), zap.Int("holds", s.Holds.Len()))
	return nil
}

// NewState starts an empty wall from a wall model and a hold library.
func (s *Session) NewState(wallPath, libraryDir string, lights persistence.Lights) error {
	doc := &persistence.Document{
		Version:         persistence.Version,
		Player:          s.World.PlayerRecord(),
		WallModelPath:   wallPath,
		HoldModelsPath:  libraryDir,
		Holds:           map[string]persistence.Hold{},
		Lights:          lights,
		CaptureSettings: s.Capture,
	}
	if err := s.Import(doc); err != nil {
		return err
	}
	s.StatePath = ""
	return nil
}

// ChangeWall swaps the wall model and keeps every hold and route. A model
// that cannot serve as a wall leaves the state untouched.
func (s *Session) ChangeWall(path string) error {
	if err := s.World.CheckWall(path); err != nil {
		return err
	}
	doc := s.Export()
	doc.WallModelPath = path
	return s.Import(doc)
}

// ChangeLibrary swaps the hold library. It refuses a library that lacks a
// blueprint some hold uses, leaving the state untouched.
func (s *Session) ChangeLibrary(dir string) error {
	lib, err := catalog.Load(dir)
	if err != nil {
		return err
	}

	doc := s.Export()
	var missing []string
	for _, h := range doc.Holds {
		if _, ok := lib.Blueprint(h.BlueprintID); !ok && !slices.Contains(missing, h.BlueprintID) {
			missing = append(missing, h.BlueprintID)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		el := errors.NewErrorList()
		for _, id := range missing {
			el.Add(fmt.Errorf("blueprint %q is used on the wall", id))
		}
		return fmt.Errorf("library %s: %w", dir, el.Err())
	}

	doc.HoldModelsPath = dir
	return s.Import(doc)
}

// libraryReloaded points holds at the reloaded blueprints and drops palette
// entries that vanished.
func (s *Session) libraryReloaded(lib *catalog.Library) {
	all := s.Holds.Placed()
	if h := s.Holds.Held(); h != nil {
		all = append(all, h)
	}
	for _, h := range all {
		if bp, ok := lib.Blueprint(h.Blueprint.ID); ok {
			h.Blueprint = bp
		}
	}
	s.Selection.Prune(lib)
}

func (s *Session) Close() {
	s.Dispatcher.Close()
	s.World.Unload()
}
