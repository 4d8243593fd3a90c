package game

import (
	"errors"
	"fmt"
	"path/filepath"

	"cled/internal/persistence"
	"cled/internal/world"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/sqweek/dialog"
	"go.uber.org/zap"
)

func chooseStateToOpen() (string, error) {
	return dialog.File().Filter("Cled state", "yaml", "yml").Title("Open wall").Load()
}

func chooseStateToSave() (string, error) {
	return dialog.File().Filter("Cled state", "yaml", "yml").Title("Save wall").Save()
}

func chooseWallModel() (string, error) {
	return dialog.File().Filter("Wall model", "obj", "glb", "gltf").Title("Select wall model").Load()
}

func chooseLibraryDir() (string, error) {
	return dialog.Directory().Title("Select hold library").Browse()
}

// report logs err and shows it in a modal. Cancelled dialogs are silent.
func (g *Game) report(what string, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, dialog.ErrCancelled) {
		return true
	}
	g.log.Error(what, zap.Error(err))
	dialog.Message("%s", err.Error()).Title(what).Error()
	return true
}

func (g *Game) openState() {
	path, err := chooseStateToOpen()
	if g.report("Open failed", err) {
		return
	}
	g.open(path)
}

// open imports path and remembers it for the next start. A document that
// fails midway leaves an empty wall.
func (g *Game) open(path string) {
	if g.report("Open failed", g.Session.Open(path)) {
		return
	}
	g.Prefs.LastStatePath = path
	g.savePrefs()
}

func (g *Game) saveState(as bool) {
	path := g.Session.StatePath
	if as || path == "" {
		var err error
		path, err = chooseStateToSave()
		if g.report("Save failed", err) {
			return
		}
		if filepath.Ext(path) == "" {
			path += ".yaml"
		}
	}
	if g.report("Save failed", g.Session.Save(path)) {
		return
	}
	g.Prefs.LastStatePath = path
	g.savePrefs()
}

// newState starts an empty wall from the last used wall and library.
func (g *Game) newState() {
	p := g.Prefs
	if p.WallModelPath == "" || p.HoldModelsPath == "" {
		g.chooseWall()
		return
	}
	lights := world.DefaultLights(p.LightIntensity, p.ShadowStrength)
	g.report("New wall failed", g.Session.NewState(p.WallModelPath, p.HoldModelsPath, lights))
}

// chooseWall swaps the wall model, or starts a new wall when nothing is
// loaded yet.
func (g *Game) chooseWall() {
	path, err := chooseWallModel()
	if g.report("Wall failed", err) {
		return
	}
	g.Prefs.WallModelPath = path
	g.savePrefs()

	if g.Session.World.Library == nil {
		if g.Prefs.HoldModelsPath == "" {
			g.chooseLibrary()
			return
		}
		g.newState()
		return
	}
	g.report("Wall failed", g.Session.ChangeWall(path))
}

func (g *Game) chooseLibrary() {
	dir, err := chooseLibraryDir()
	if g.report("Library failed", err) {
		return
	}
	g.Prefs.HoldModelsPath = dir
	g.savePrefs()

	if g.Session.World.WallPath == "" {
		if g.Prefs.WallModelPath != "" {
			g.newState()
		}
		return
	}
	g.report("Library failed", g.Session.ChangeLibrary(dir))
}

func (g *Game) savePrefs() {
	if g.prefsPath == "" {
		return
	}
	if err := g.Prefs.Save(g.prefsPath); err != nil {
		g.log.Warn("Failed to save preferences", zap.String("path", g.prefsPath), zap.Error(err))
	}
}

// drawProgress paints one frame naming the import stage about to run, so
// slow model loads do not look like a hang.
func drawProgress(stage persistence.Stage) {
	if !rl.IsWindowReady() {
		return
	}
	text := fmt.Sprintf("Loading %s...", stage)
	w := int32(rl.GetScreenWidth())
	h := int32(rl.GetScreenHeight())

	rl.BeginDrawing()
	rl.ClearBackground(colorBgDark)
	tw := rl.MeasureText(text, 20)
	rl.DrawText(text, (w-tw)/2, h/2-10, 20, colorTextPrimary)
	rl.EndDrawing()
}
