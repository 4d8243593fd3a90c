package game

import (
	"fmt"
	"path/filepath"

	"cled/internal/persistence"
	"cled/internal/prefs"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"
)

// capturePath resolves a capture image path. Relative paths sit next to the
// open state file, or in the working directory when nothing is saved yet.
func capturePath(cs persistence.CaptureSettings, statePath string) string {
	if filepath.IsAbs(cs.ImagePath) || statePath == "" {
		return cs.ImagePath
	}
	return filepath.Join(filepath.Dir(statePath), cs.ImagePath)
}

// capture renders the view at ImageSupersize times the window size and
// writes it to disk. The GUI is not part of the image.
func (g *Game) capture() {
	cs := g.Session.Capture
	if err := prefs.ValidateCapture(cs); err != nil {
		g.report("Capture failed", err)
		return
	}
	path := capturePath(cs, g.Session.StatePath)

	width := int32(rl.GetScreenWidth() * cs.ImageSupersize)
	height := int32(rl.GetScreenHeight() * cs.ImageSupersize)
	target := rl.LoadRenderTexture(width, height)
	defer rl.UnloadRenderTexture(target)

	g.Session.World.DrawShadows()

	rl.BeginTextureMode(target)
	rl.ClearBackground(colorBgDark)
	cam := g.Session.World.Player.Camera3D()
	rl.BeginMode3D(cam)
	g.Session.World.Draw(cam, float32(width)/float32(height))
	rl.EndMode3D()
	rl.EndTextureMode()

	img := rl.LoadImageFromTexture(target.Texture)
	defer rl.UnloadImage(img)
	rl.ImageFlipVertical(img)
	if !rl.ExportImage(*img, path) {
		g.report("Capture failed", fmt.Errorf("could not write %s", path))
		return
	}

	g.Session.Capture = cs
	g.Prefs.CaptureSettings = cs
	g.savePrefs()
	g.log.Info("Captured view", zap.String("path", path), zap.Int32("width", width), zap.Int32("height", height))
}
