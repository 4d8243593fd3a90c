package game

import (
	"fmt"
	"math"
	"strings"

	"cled/internal/assets"
	"cled/internal/catalog"
	"cled/internal/interaction"
	"cled/internal/mode"
	"cled/internal/persistence"
	"cled/internal/prefs"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Theme colors, indigo on dark.
var (
	colorBgDark    = rl.NewColor(10, 10, 15, 255)
	colorBgPanel   = rl.NewColor(18, 18, 24, 235)
	colorBgElement = rl.NewColor(28, 28, 38, 255)
	colorBgHover   = rl.NewColor(38, 38, 52, 255)

	colorAccent        = rl.NewColor(108, 99, 255, 255)
	colorTextPrimary   = rl.NewColor(255, 255, 255, 255)
	colorTextSecondary = rl.NewColor(200, 200, 208, 255)
	colorTextMuted     = rl.NewColor(119, 119, 119, 255)

	colorStart = rl.NewColor(40, 200, 90, 255)
	colorEnd   = rl.NewColor(220, 50, 50, 255)
)

const (
	panelWidth = 260
	rowHeight  = 24
	padding    = 8
)

func initRayguiStyle() {
	gui.SetStyle(gui.DEFAULT, gui.BACKGROUND_COLOR, gui.NewColorPropertyValue(colorBgDark))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_NORMAL, gui.NewColorPropertyValue(colorBgElement))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_FOCUSED, gui.NewColorPropertyValue(colorBgHover))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_PRESSED, gui.NewColorPropertyValue(colorAccent))

	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_NORMAL, gui.NewColorPropertyValue(colorTextSecondary))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_FOCUSED, gui.NewColorPropertyValue(colorTextPrimary))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_PRESSED, gui.NewColorPropertyValue(colorTextPrimary))

	gui.SetStyle(gui.DEFAULT, gui.BORDER_COLOR_NORMAL, gui.NewColorPropertyValue(rl.NewColor(50, 50, 65, 255)))
	gui.SetStyle(gui.DEFAULT, gui.BORDER_COLOR_FOCUSED, gui.NewColorPropertyValue(colorAccent))
	gui.SetStyle(gui.DEFAULT, gui.LINE_COLOR, gui.NewColorPropertyValue(rl.NewColor(40, 40, 55, 255)))

	gui.SetStyle(gui.DEFAULT, gui.TEXT_SIZE, 15)
}

// textField remembers whether a raygui text box has focus.
type textField struct {
	editing bool
}

func (f *textField) draw(bounds rl.Rectangle, value *string) {
	if gui.TextBox(bounds, value, 64, f.editing) {
		f.editing = !f.editing
	}
}

type uiState struct {
	name, grade, zone, setter textField
	filterType, filterColor   textField
	capturePath               textField

	filter        catalog.Filter
	paletteScroll int32
}

// column lays widgets out top to bottom.
type column struct {
	x, y, w float32
}

func (c *column) next(h float32) rl.Rectangle {
	r := rl.Rectangle{X: c.x, Y: c.y, Width: c.w, Height: h}
	c.y += h + 4
	return r
}

func (c *column) half(h float32) (rl.Rectangle, rl.Rectangle) {
	r := c.next(h)
	w := (r.Width - 4) / 2
	return rl.Rectangle{X: r.X, Y: r.Y, Width: w, Height: h}, rl.Rectangle{X: r.X + w + 4, Y: r.Y, Width: w, Height: h}
}

func (g *Game) drawCrosshair() {
	cx := int32(rl.GetScreenWidth() / 2)
	cy := int32(rl.GetScreenHeight() / 2)
	color := colorTextSecondary
	if g.outcome.Kind == interaction.HoldHit {
		color = rl.Yellow
	}
	rl.DrawLine(cx-8, cy, cx+8, cy, color)
	rl.DrawLine(cx, cy-8, cx, cy+8, color)
}

// drawHUD is the always-visible status line.
func (g *Game) drawHUD() {
	s := g.Session
	status := fmt.Sprintf("%s | %d holds | %d routes", s.Mode.Current(), s.Holds.Len(), len(s.Routes.Routes()))
	if bp := s.Blueprint(); bp != nil {
		status += " | " + bp.ID
	}
	if h := s.Holds.Held(); h != nil {
		status += fmt.Sprintf(" | rotation %.0f°", h.State.Rotation*180/math.Pi)
	}
	if r := s.Routes.Selected(); r != nil && s.Mode.Is(mode.Route) {
		status += fmt.Sprintf(" | route %q (%d)", r.Name, r.Len())
	}
	if s.StatePath != "" {
		status += " | " + s.StatePath
	}

	h := int32(rl.GetScreenHeight())
	rl.DrawRectangle(0, h-rowHeight, int32(rl.GetScreenWidth()), rowHeight, colorBgPanel)
	rl.DrawText(status, padding, h-rowHeight+5, 15, colorTextSecondary)

	if g.outcome.Kind == interaction.HoldHit {
		g.drawHoverInfo(g.outcome.Hold)
	}

	if g.looking {
		rl.DrawText("Esc: menu  Tab: hold  LMB: place/pick  RMB: route  B/T: start/end  X: delete  Q/E: rotate", padding, padding, 15, colorTextMuted)
	}

	if g.DebugMode {
		rl.DrawFPS(padding, 30)
		rl.DrawText(fmt.Sprintf("Update:  %.2f ms", g.updateMs), padding, 55, 15, rl.Green)
		rl.DrawText(fmt.Sprintf("Shadows: %.2f ms", g.shadowMs), padding, 75, 15, rl.Green)
		rl.DrawText(fmt.Sprintf("Draw:    %.2f ms", g.drawMs), padding, 95, 15, rl.Green)
	}
}

func (g *Game) drawHoverInfo(uid uint64) {
	s := g.Session
	h, ok := s.Holds.Get(uid)
	if !ok {
		return
	}
	lines := []string{h.Blueprint.ID}
	if t := h.Blueprint.Type; t != "" {
		lines = append(lines, t)
	}
	if s.Routes.IsStarting(uid) {
		lines = append(lines, "start")
	}
	if s.Routes.IsEnding(uid) {
		lines = append(lines, "end")
	}
	if r := s.Routes.RouteWithHold(uid); r != nil && r.Name != "" {
		lines = append(lines, "route "+r.Name)
	}

	x := int32(rl.GetScreenWidth()/2) + 16
	y := int32(rl.GetScreenHeight()/2) + 16
	for i, line := range lines {
		color := colorTextPrimary
		if line == "start" {
			color = colorStart
		} else if line == "end" {
			color = colorEnd
		}
		rl.DrawText(line, x, y+int32(i)*16, 14, color)
	}
}

// drawPanels is the menu shown while the cursor is free.
func (g *Game) drawPanels() {
	sh := float32(rl.GetScreenHeight() - rowHeight)
	sw := float32(rl.GetScreenWidth())

	rl.DrawRectangle(0, 0, panelWidth, int32(sh), colorBgPanel)
	left := column{x: padding, y: padding, w: panelWidth - 2*padding}
	g.drawFilePanel(&left)
	g.drawLightPanel(&left)
	g.drawCapturePanel(&left)

	rl.DrawRectangle(int32(sw)-panelWidth, 0, panelWidth, int32(sh), colorBgPanel)
	right := column{x: sw - panelWidth + padding, y: padding, w: panelWidth - 2*padding}
	if g.Session.Mode.Is(mode.Route) && g.Session.Routes.Selected() != nil {
		g.drawRoutePanel(&right)
	}
	g.drawPalette(&right, sh)
}

func (g *Game) drawFilePanel(c *column) {
	gui.Label(c.next(rowHeight), "FILE")
	a, b := c.half(rowHeight)
	if gui.Button(a, "Open") {
		g.later(g.openState)
	}
	if gui.Button(b, "Save") {
		g.later(func() { g.saveState(false) })
	}
	a, b = c.half(rowHeight)
	if gui.Button(a, "Save as") {
		g.later(func() { g.saveState(true) })
	}
	if gui.Button(b, "New") {
		g.later(g.newState)
	}
	a, b = c.half(rowHeight)
	if gui.Button(a, "Wall") {
		g.later(g.chooseWall)
	}
	if gui.Button(b, "Library") {
		g.later(g.chooseLibrary)
	}
	c.next(padding)
}

func (g *Game) drawLightPanel(c *column) {
	w := g.Session.World
	gui.Label(c.next(rowHeight), "LIGHTS")

	l := w.LightSettings()
	gui.Label(c.next(rowHeight), "Intensity")
	if v := gui.Slider(c.next(rowHeight), "", fmt.Sprintf("%.2f", l.Intensity), l.Intensity, 0, 3); v != l.Intensity {
		w.SetIntensity(v)
	}
	gui.Label(c.next(rowHeight), "Shadow strength")
	if v := gui.Slider(c.next(rowHeight), "", fmt.Sprintf("%.2f", l.ShadowStrength), l.ShadowStrength, 0, 1); v != l.ShadowStrength {
		w.SetShadowStrength(v)
	}

	a, b := c.half(rowHeight)
	if gui.Button(a, "Light here") && len(l.Positions) < 4 {
		l.Positions = append(l.Positions, persistence.ToVec3(w.Player.Position))
		w.ApplyLights(l)
	}
	if gui.Button(b, "Remove light") && len(l.Positions) > 0 {
		l.Positions = l.Positions[:len(l.Positions)-1]
		w.ApplyLights(l)
	}
	w.Player.Light = gui.CheckBox(c.next(16), "Headlamp", w.Player.Light)
	c.next(padding)
}

func (g *Game) drawCapturePanel(c *column) {
	cs := &g.Session.Capture
	gui.Label(c.next(rowHeight), "CAPTURE")
	g.ui.capturePath.draw(c.next(rowHeight), &cs.ImagePath)

	size := float32(cs.ImageSupersize)
	size = gui.Slider(c.next(rowHeight), "", fmt.Sprintf("%dx", cs.ImageSupersize), size, prefs.MinSupersize, prefs.MaxSupersize)
	cs.ImageSupersize = int(size + 0.5)

	if gui.Button(c.next(rowHeight), "Capture (F12)") {
		g.later(g.capture)
	}
}

func (g *Game) drawRoutePanel(c *column) {
	r := g.Session.Routes.Selected()
	gui.Label(c.next(rowHeight), fmt.Sprintf("ROUTE (%d holds)", r.Len()))

	fields := []struct {
		label string
		field *textField
		value *string
	}{
		{"Name", &g.ui.name, &r.Name},
		{"Grade", &g.ui.grade, &r.Grade},
		{"Zone", &g.ui.zone, &r.Zone},
		{"Setter", &g.ui.setter, &r.Setter},
	}
	for _, f := range fields {
		a, b := c.half(rowHeight)
		gui.Label(a, f.label)
		f.field.draw(b, f.value)
	}
	if !g.Session.Routes.IsUsable(r) {
		gui.Label(c.next(rowHeight), "Not saved until it has a name,")
		gui.Label(c.next(rowHeight), "two holds or a marker")
	}
	c.next(padding)
}

func (g *Game) drawPalette(c *column, bottom float32) {
	s := g.Session
	gui.Label(c.next(rowHeight), fmt.Sprintf("PALETTE (%d selected)", s.Selection.Len()))
	if s.World.Library == nil {
		gui.Label(c.next(rowHeight), "No hold library loaded")
		return
	}

	a, b := c.half(rowHeight)
	g.ui.filterType.draw(a, &g.ui.filter.Type)
	g.ui.filterColor.draw(b, &g.ui.filter.Color)

	bps := s.World.Library.Filter(g.ui.filter)
	items := make([]string, len(bps))
	for i, bp := range bps {
		mark := "  "
		if s.Selection.Contains(bp.ID) {
			mark = "* "
		}
		if bp.ID == s.Selection.CurrentID() {
			mark = "> "
		}
		items[i] = mark + bp.ID
	}

	if bp := s.Blueprint(); bp != nil && bp.PreviewImagePath != "" {
		drawPreview(c.next(c.w/2), assets.LoadTexture(bp.PreviewImagePath))
	}

	list := c.next(bottom - c.y - padding)
	active := gui.ListView(list, strings.Join(items, ";"), &g.ui.paletteScroll, -1)
	if active >= 0 && int(active) < len(bps) {
		s.Selection.Toggle(bps[active].ID)
	}
}

// drawPreview fits tex into bounds, keeping its aspect ratio.
func drawPreview(bounds rl.Rectangle, tex rl.Texture2D) {
	if tex.ID == 0 || tex.Width == 0 || tex.Height == 0 {
		return
	}
	scale := min(bounds.Width/float32(tex.Width), bounds.Height/float32(tex.Height))
	w, h := float32(tex.Width)*scale, float32(tex.Height)*scale
	dst := rl.Rectangle{X: bounds.X + (bounds.Width-w)/2, Y: bounds.Y + (bounds.Height-h)/2, Width: w, Height: h}
	src := rl.Rectangle{Width: float32(tex.Width), Height: float32(tex.Height)}
	rl.DrawTexturePro(tex, src, dst, rl.Vector2{}, 0, rl.White)
}
