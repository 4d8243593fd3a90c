package game

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cled/internal/catalog"
	"cled/internal/interaction"
	"cled/internal/mode"
	"cled/internal/persistence"
	"cled/internal/routes"
	"cled/internal/world"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testCatalog = `
crimp-01:
  color: [Red, "#ff0000"]
  type: crimp
jug-02:
  color: [Blue, "#0000ff"]
  type: jug
`

// quad is a square of half-size s in the local plane z, built in Go memory.
func quad(s, z float32) rl.Model {
	verts := []float32{
		-s, -s, z, s, -s, z, s, s, z,
		-s, -s, z, s, s, z, -s, s, z,
	}
	mesh := &rl.Mesh{VertexCount: 6, TriangleCount: 2, Vertices: &verts[0]}
	return rl.Model{MeshCount: 1, Meshes: mesh}
}

// loadModel gives walls a 2x2 quad and holds a small one standing off the
// surface, so a view ray meets the hold before the wall behind it. Files
// named broken* load as an empty model.
func loadModel(path string) rl.Model {
	if strings.HasPrefix(filepath.Base(path), "broken") {
		return rl.Model{}
	}
	if strings.Contains(filepath.Base(path), "wall") {
		return quad(1, 0)
	}
	return quad(0.2, 0.1)
}

type scriptedInput struct {
	pressed map[interaction.Action]bool
	down    map[interaction.Action]bool
}

func (s *scriptedInput) Pressed(a interaction.Action) bool { return s.pressed[a] }
func (s *scriptedInput) Down(a interaction.Action) bool    { return s.down[a] }

type fixture struct {
	s    *Session
	in   *scriptedInput
	dir  string
	wall string
	lib  string
}

func writeLibrary(t *testing.T, dir, cat string, ids ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, catalog.CatalogFile), []byte(cat), 0o644))
	for _, id := range ids {
		for _, ext := range []string{".obj", ".mtl"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, id+ext), nil, 0o644))
		}
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		in:  &scriptedInput{pressed: map[interaction.Action]bool{}, down: map[interaction.Action]bool{}},
		dir: t.TempDir(),
	}
	f.wall = filepath.Join(f.dir, "wall.obj")
	f.lib = filepath.Join(f.dir, "holds")
	require.NoError(t, os.WriteFile(f.wall, nil, 0o644))
	writeLibrary(t, f.lib, testCatalog, "crimp-01", "jug-02")

	f.s = newSession(t, f.in)
	return f
}

func newSession(t *testing.T, in interaction.Input) *Session {
	log := zaptest.NewLogger(t)
	s := NewSession(SessionConfig{
		Input:  in,
		Logger: log,
		World:  world.Options{Logger: log, LoadModel: loadModel},
	})
	t.Cleanup(s.Close)
	return s
}

// tick presses the given actions for exactly one frame.
func (f *fixture) tick(pressed ...interaction.Action) interaction.Outcome {
	for _, a := range pressed {
		f.in.pressed[a] = true
	}
	out := f.s.Tick(1.0 / 60)
	clear(f.in.pressed)
	return out
}

func (f *fixture) aim(x, y float32) {
	f.s.World.Player.Position = rl.Vector3{X: x, Y: y, Z: 6}
	f.s.World.Player.LookAt(rl.Vector3{X: x, Y: y, Z: 0})
}

// place holds blueprint id at (x, y) on the wall and returns its handle.
func (f *fixture) place(t *testing.T, id string, x, y float32) uint64 {
	t.Helper()
	f.s.Selection.Set([]string{id})
	f.aim(x, y)
	f.tick(interaction.ToggleMode)
	require.True(t, f.s.Mode.Is(mode.Holding))
	f.tick()
	f.tick(interaction.Place)
	require.True(t, f.s.Mode.Is(mode.Normal))

	out := f.tick()
	require.Equal(t, interaction.HoldHit, out.Kind)
	return out.Hold
}

func (f *fixture) newState(t *testing.T) {
	t.Helper()
	require.NoError(t, f.s.NewState(f.wall, f.lib, world.DefaultLights(1, 0.5)))
}

func TestNewState(t *testing.T) {
	f := newFixture(t)
	f.newState(t)

	w := f.s.World
	require.NotNil(t, w.Wall)
	assert.Equal(t, f.wall, w.WallPath)
	require.NotNil(t, w.Library)
	assert.Equal(t, 2, w.Library.Len())
	assert.Len(t, w.Lights, 1)
	assert.Empty(t, f.s.StatePath)
	assert.Nil(t, f.s.Blueprint())
}

func TestPlaceHoldOnWall(t *testing.T) {
	f := newFixture(t)
	f.newState(t)

	uid := f.place(t, "crimp-01", 0.3, 0.2)
	h, ok := f.s.Holds.Get(uid)
	require.True(t, ok)
	assert.Equal(t, "crimp-01", h.Blueprint.ID)
	assert.InDelta(t, 0.3, h.Position().X, 1e-4)
	assert.InDelta(t, 0.2, h.Position().Y, 1e-4)
	assert.InDelta(t, 0, h.Position().Z, 1e-4)
}

func TestSaveAndOpenRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.newState(t)

	a := f.place(t, "crimp-01", 0.5, 0.5)
	b := f.place(t, "jug-02", -0.5, -0.5)
	f.tick(interaction.ToggleStart)
	require.True(t, f.s.Routes.IsStarting(b))
	f.tick(interaction.SelectRoute)
	require.True(t, f.s.Mode.Is(mode.Route))
	f.s.Routes.Selected().Name = "Arete"
	f.aim(0.5, 0.5)
	f.in.down[interaction.RouteModifier] = true
	f.tick(interaction.Place)
	f.in.down[interaction.RouteModifier] = false
	require.True(t, f.s.Routes.Selected().Contains(a))
	f.s.Selection.Set([]string{"jug-02", "crimp-01"})

	path := filepath.Join(f.dir, "state.yaml")
	require.NoError(t, f.s.Save(path))
	assert.Equal(t, path, f.s.StatePath)

	g := newSession(t, &scriptedInput{})
	require.NoError(t, g.Open(path))
	assert.Equal(t, path, g.StatePath)
	assert.Equal(t, 2, g.Holds.Len())
	assert.Equal(t, []string{"jug-02", "crimp-01"}, g.Selection.IDs())
	assert.True(t, g.Mode.Is(mode.Normal))

	rs := g.Routes.Routes()
	require.Len(t, rs, 1)
	assert.Equal(t, "Arete", rs[0].Name)
	assert.Equal(t, 2, rs[0].Len())
	require.Len(t, g.Routes.StartingHolds(), 1)

	start, ok := g.Holds.Get(g.Routes.StartingHolds()[0])
	require.True(t, ok)
	assert.Equal(t, "jug-02", start.Blueprint.ID)
	assert.InDelta(t, -0.5, start.Position().X, 1e-4)
	assert.NotNil(t, g.World.Marker(start.UID(), routes.Starting))

	assert.InDelta(t, f.s.World.Player.Position.X, g.World.Player.Position.X, 1e-4)
}

func TestOpenFailureClearsEditor(t *testing.T) {
	f := newFixture(t)
	f.newState(t)
	f.place(t, "crimp-01", 0, 0)

	doc := f.s.Export()
	doc.WallModelPath = filepath.Join(f.dir, "gone.obj")
	path := filepath.Join(f.dir, "broken.yaml")
	require.NoError(t, persistence.Save(path, doc))

	err := f.s.Open(path)
	var se *persistence.StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, persistence.StageWall, se.Stage)

	assert.Zero(t, f.s.Holds.Len())
	assert.Empty(t, f.s.Routes.Routes())
	assert.Nil(t, f.s.World.Wall)
	assert.Zero(t, f.s.Selection.Len())
	assert.Empty(t, f.s.StatePath)
}

func TestOpenUnreadableFileKeepsState(t *testing.T) {
	f := newFixture(t)
	f.newState(t)
	f.place(t, "crimp-01", 0, 0)

	require.Error(t, f.s.Open(filepath.Join(f.dir, "missing.yaml")))

	garbage := filepath.Join(f.dir, "garbage.yaml")
	require.NoError(t, os.WriteFile(garbage, []byte("Version: [nope"), 0o644))
	require.Error(t, f.s.Open(garbage))

	assert.Equal(t, 1, f.s.Holds.Len())
	assert.NotNil(t, f.s.World.Wall)
}

func TestChangeWallKeepsHolds(t *testing.T) {
	f := newFixture(t)
	f.newState(t)
	uid := f.place(t, "crimp-01", 0.3, 0.2)
	_, ok := f.s.Holds.Get(uid)
	require.True(t, ok)

	other := filepath.Join(f.dir, "wall-b.obj")
	require.NoError(t, os.WriteFile(other, nil, 0o644))
	require.NoError(t, f.s.ChangeWall(other))

	assert.Equal(t, other, f.s.World.WallPath)
	require.Equal(t, 1, f.s.Holds.Len())
	assert.InDelta(t, 0.3, f.s.Holds.Placed()[0].Position().X, 1e-4)

	assert.Error(t, f.s.ChangeWall(filepath.Join(f.dir, "nope.obj")))
	assert.Equal(t, other, f.s.World.WallPath)
}

func TestChangeWallRejectsEmptyModel(t *testing.T) {
	f := newFixture(t)
	f.newState(t)
	a := f.place(t, "crimp-01", -0.4, 0)
	b := f.place(t, "jug-02", 0.4, 0)
	f.s.Routes.ToggleHold(f.s.Routes.GetOrCreateRouteWithHold(a), b)
	f.s.Routes.ToggleStarting(a)

	broken := filepath.Join(f.dir, "broken-wall.obj")
	require.NoError(t, os.WriteFile(broken, nil, 0o644))

	err := f.s.ChangeWall(broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no triangles")

	assert.Equal(t, f.wall, f.s.World.WallPath)
	assert.Equal(t, 2, f.s.Holds.Len())
	require.Len(t, f.s.Routes.Routes(), 1)
	assert.Len(t, f.s.Routes.Routes()[0].Holds(), 2)
	assert.Equal(t, []uint64{a}, f.s.Routes.StartingHolds())
	assert.NotNil(t, f.s.World.Marker(a, routes.Starting))
}

func TestChangeLibraryRefusesMissingBlueprints(t *testing.T) {
	f := newFixture(t)
	f.newState(t)
	f.place(t, "jug-02", 0, 0)

	small := filepath.Join(f.dir, "small")
	writeLibrary(t, small, "crimp-01:\n  color: [Red, \"#ff0000\"]\n", "crimp-01")

	err := f.s.ChangeLibrary(small)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"jug-02"`)
	assert.Equal(t, f.lib, f.s.World.LibraryDir())
	assert.Equal(t, 1, f.s.Holds.Len())

	full := filepath.Join(f.dir, "full")
	writeLibrary(t, full, testCatalog, "crimp-01", "jug-02")
	require.NoError(t, f.s.ChangeLibrary(full))
	assert.Equal(t, full, f.s.World.LibraryDir())
	assert.Equal(t, 1, f.s.Holds.Len())
}

func TestLibraryReloadUpdatesHoldsAndSelection(t *testing.T) {
	f := newFixture(t)
	f.newState(t)
	uid := f.place(t, "crimp-01", 0, 0)
	f.s.Selection.Set([]string{"crimp-01", "jug-02"})

	writeLibrary(t, f.lib, "crimp-01:\n  color: [Green, \"#00ff00\"]\n  type: pinch\n", "crimp-01")
	require.NoError(t, f.s.World.ReloadLibrary())

	h, ok := f.s.Holds.Get(uid)
	require.True(t, ok)
	assert.Equal(t, "pinch", h.Blueprint.Type)
	assert.Same(t, h.Blueprint, f.s.Blueprint())
	assert.Equal(t, []string{"crimp-01"}, f.s.Selection.IDs())
}

func TestCapturePath(t *testing.T) {
	cs := persistence.CaptureSettings{ImagePath: "shot.png", ImageSupersize: 2}
	assert.Equal(t, "shot.png", capturePath(cs, ""))
	assert.Equal(t, filepath.Join("walls", "shot.png"), capturePath(cs, filepath.Join("walls", "a.yaml")))

	abs := filepath.Join(t.TempDir(), "shot.png")
	cs.ImagePath = abs
	assert.Equal(t, abs, capturePath(cs, filepath.Join("walls", "a.yaml")))
}

func TestEveryActionIsBound(t *testing.T) {
	for a := interaction.Place; a <= interaction.RotateRight; a++ {
		b, ok := bindings[a]
		require.True(t, ok, a.String())
		assert.True(t, len(b.keys)+len(b.buttons) > 0, a.String())
	}

	var k keyboardInput
	assert.False(t, k.Pressed(interaction.Place))
	assert.False(t, k.Down(interaction.Slow))
}
