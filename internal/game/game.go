package game

import (
	"fmt"
	"time"

	"cled/internal/interaction"
	"cled/internal/prefs"
	"cled/internal/world"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"
)

type Game struct {
	Session   *Session
	Prefs     *prefs.Prefs
	DebugMode bool

	prefsPath string
	log       *zap.Logger
	input     *keyboardInput
	ui        uiState

	// looking is true while the mouse steers the view; false shows the menus.
	looking bool
	outcome interaction.Outcome
	// pending runs at the start of the next Update, outside the frame that
	// queued it.
	pending []func()

	// Debug timing (ms)
	updateMs float64
	shadowMs float64
	drawMs   float64
}

// New builds the editor. Preferences are written back to prefsPath.
func New(p *prefs.Prefs, prefsPath string, log *zap.Logger) *Game {
	if log == nil {
		log = zap.NewNop()
	}
	input := &keyboardInput{}
	s := NewSession(SessionConfig{
		Input:  input,
		Logger: log,
		World:  world.Options{Logger: log.Named("world"), Watch: true},
	})
	s.Capture = p.CaptureSettings
	s.World.Player.MoveSpeed = p.CameraMoveSpeed
	s.SetProgress(drawProgress)

	return &Game{
		Session:   s,
		Prefs:     p,
		prefsPath: prefsPath,
		log:       log,
		input:     input,
	}
}

// Run opens the window and blocks until it is closed. statePath, or the
// last opened state, is loaded first.
func (g *Game) Run(statePath string) {
	rl.SetConfigFlags(rl.FlagWindowHighdpi | rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(g.Prefs.WindowWidth), int32(g.Prefs.WindowHeight), "Cled")
	defer rl.CloseWindow()

	rl.SetTargetFPS(120)
	rl.SetExitKey(0)
	initRayguiStyle()

	// Initialize world after OpenGL context is created
	g.Session.World.Initialize()
	defer g.Session.Close()

	g.startup(statePath)
	g.setLooking(true)

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()
	}

	g.Prefs.WindowWidth = rl.GetScreenWidth()
	g.Prefs.WindowHeight = rl.GetScreenHeight()
	g.Prefs.CaptureSettings = g.Session.Capture
	g.Prefs.CameraMoveSpeed = g.Session.World.Player.MoveSpeed
	l := g.Session.World.LightSettings()
	g.Prefs.LightIntensity, g.Prefs.ShadowStrength = l.Intensity, l.ShadowStrength
	g.savePrefs()
}

func (g *Game) startup(statePath string) {
	if statePath == "" {
		statePath = g.Prefs.LastStatePath
	}
	if statePath != "" {
		err := g.Session.Open(statePath)
		if err == nil {
			g.Prefs.LastStatePath = statePath
			return
		}
		g.log.Warn("Could not open state", zap.String("path", statePath), zap.Error(err))
	}
	if g.Prefs.WallModelPath != "" && g.Prefs.HoldModelsPath != "" {
		lights := world.DefaultLights(g.Prefs.LightIntensity, g.Prefs.ShadowStrength)
		if err := g.Session.NewState(g.Prefs.WallModelPath, g.Prefs.HoldModelsPath, lights); err != nil {
			g.log.Warn("Could not start a new wall", zap.Error(err))
		}
	}
}

func (g *Game) setLooking(on bool) {
	g.looking = on
	g.input.enabled = on
	if on {
		rl.DisableCursor()
	} else {
		rl.EnableCursor()
	}
}

func (g *Game) later(fn func()) {
	g.pending = append(g.pending, fn)
}

func (g *Game) Update() {
	updateStart := time.Now()
	deltaTime := rl.GetFrameTime()

	for _, fn := range g.pending {
		fn()
	}
	g.pending = g.pending[:0]

	if rl.IsKeyPressed(rl.KeyEscape) {
		g.setLooking(!g.looking)
	}
	if rl.IsKeyPressed(rl.KeyF1) {
		g.DebugMode = !g.DebugMode
	}
	if rl.IsKeyPressed(rl.KeyF5) {
		g.saveState(false)
	}
	if rl.IsKeyPressed(rl.KeyF9) {
		g.openState()
	}
	if rl.IsKeyPressed(rl.KeyF12) {
		g.capture()
	}

	if g.looking {
		g.Session.World.Player.Update(deltaTime)
		if wheel := rl.GetMouseWheelMove(); wheel > 0 {
			g.Session.Selection.Next()
		} else if wheel < 0 {
			g.Session.Selection.Prev()
		}
	}

	g.Session.World.Update(deltaTime)
	g.outcome = g.Session.Tick(deltaTime)

	g.updateMs = float64(time.Since(updateStart).Microseconds()) / 1000.0
}

func (g *Game) Draw() {
	camera := g.Session.World.Player.Camera3D()
	aspect := float32(rl.GetScreenWidth()) / float32(max(rl.GetScreenHeight(), 1))

	// Shadow pass
	shadowStart := time.Now()
	g.Session.World.DrawShadows()
	g.shadowMs = float64(time.Since(shadowStart).Microseconds()) / 1000.0

	// Main render
	rl.BeginDrawing()
	rl.ClearBackground(colorBgDark)

	drawStart := time.Now()
	rl.BeginMode3D(camera)
	g.Session.World.Draw(camera, aspect)
	rl.EndMode3D()
	g.drawMs = float64(time.Since(drawStart).Microseconds()) / 1000.0

	g.DrawUI()
	rl.EndDrawing()
}

func (g *Game) DrawUI() {
	if g.Session.World.Wall == nil {
		msg := "Open a wall (F9) or pick a wall model and hold library (Esc)"
		tw := rl.MeasureText(msg, 20)
		rl.DrawText(msg, (int32(rl.GetScreenWidth())-tw)/2, int32(rl.GetScreenHeight())/2-40, 20, colorTextMuted)
	}

	if g.looking {
		g.drawCrosshair()
	} else {
		g.drawPanels()
	}
	g.drawHUD()

	if g.DebugMode {
		r := g.Session.World.Renderer
		previewSize := int32(256)
		screenW := int32(rl.GetScreenWidth())
		rl.DrawTexturePro(
			r.ShadowMap.Depth,
			rl.Rectangle{X: 0, Y: 0, Width: float32(r.ShadowMap.Depth.Width), Height: float32(-r.ShadowMap.Depth.Height)},
			rl.Rectangle{X: float32(screenW - previewSize - 10), Y: 10, Width: float32(previewSize), Height: float32(previewSize)},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(screenW-previewSize-10, 10, previewSize, previewSize, rl.Green)
		rl.DrawText("Shadow Map", screenW-previewSize-10, previewSize+15, 16, rl.Green)

		p := g.Session.World.Player.Position
		rl.DrawText(fmt.Sprintf("Eye: (%.2f, %.2f, %.2f)  %s", p.X, p.Y, p.Z, g.outcome.Kind), padding, 115, 15, rl.Yellow)
		rl.DrawText(fmt.Sprintf("Total:   %.2f ms", g.updateMs+g.shadowMs+g.drawMs), padding, 135, 15, rl.Lime)
	}
}
