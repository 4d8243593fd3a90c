package persistence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"cled/internal/catalog"
	"cled/internal/engine"
	"cled/internal/holds"
	"cled/internal/routes"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubSpawner struct{}

func (stubSpawner) Spawn(bp *catalog.Blueprint) *engine.GameObject {
	return engine.NewGameObject(bp.ID)
}
func (stubSpawner) Despawn(*engine.GameObject) {}

type stubLoader struct {
	lib     *catalog.Library
	wallErr error
	cleared int
	wall    string
	lights  Lights
	player  Player
}

func (l *stubLoader) Clear() { l.cleared++ }

func (l *stubLoader) LoadWall(path string) error {
	l.wall = path
	return l.wallErr
}

func (l *stubLoader) LoadLibrary(path string) (*catalog.Library, error) {
	if l.lib == nil {
		return nil, fmt.Errorf("no library at %s", path)
	}
	return l.lib, nil
}

func (l *stubLoader) ApplyLights(lights Lights) { l.lights = lights }
func (l *stubLoader) ApplyPlayer(p Player)      { l.player = p }

var testLibrary = catalog.NewLibrary("holds",
	&catalog.Blueprint{ID: "crimp"},
	&catalog.Blueprint{ID: "jug"},
	&catalog.Blueprint{ID: "sloper"},
)

func blueprint(t *testing.T, id string) *catalog.Blueprint {
	t.Helper()
	bp, ok := testLibrary.Blueprint(id)
	require.True(t, ok)
	return bp
}

type editor struct {
	holds  *holds.Manager
	routes *routes.Book
}

func newEditor(t *testing.T) *editor {
	return &editor{
		holds:  holds.NewManager(stubSpawner{}, zaptest.NewLogger(t)),
		routes: routes.NewBook(),
	}
}

func (e *editor) place(t *testing.T, id string, pos rl.Vector3, rot float32) uint64 {
	h := e.holds.Spawn(blueprint(t, id))
	e.holds.Place(h, pos, rl.Vector3{Z: 1}, holds.State{Rotation: rot})
	return h.UID()
}

func (e *editor) snapshot() Snapshot {
	return Snapshot{
		Player:          Player{Position: Vec3{1, 2, 3}, Orientation: [2]float32{0.1, 1.2}, Flying: true},
		WallModelPath:   "wall.obj",
		HoldModelsPath:  "holds",
		Holds:           e.holds,
		Routes:          e.routes,
		Selection:       []string{"jug", "crimp"},
		Lights:          Lights{Positions: []Vec3{{0, 5, 0}}, Intensity: 0.8, ShadowStrength: 0.3},
		CaptureSettings: CaptureSettings{ImagePath: "shot.png", ImageSupersize: 2},
	}
}

// buildWall places four holds: a and b share a named route, a starts it and
// b ends it, c sits alone in a throwaway route and d was picked up off the
// wall and is held.
func buildWall(t *testing.T) (e *editor, a, b, c, d uint64) {
	e = newEditor(t)
	a = e.place(t, "crimp", rl.Vector3{X: 1}, 0.5)
	b = e.place(t, "jug", rl.Vector3{X: 2, Y: 1}, 0)
	c = e.place(t, "sloper", rl.Vector3{X: 3}, 1)

	r := e.routes.NewRoute()
	e.routes.ToggleHold(r, a)
	e.routes.ToggleHold(r, b)
	r.Name, r.Grade, r.Zone, r.Setter = "Arete", "6b", "North", "kim"
	e.routes.GetOrCreateRouteWithHold(c)
	e.routes.ToggleStarting(a)
	e.routes.ToggleEnding(b)

	d = e.place(t, "jug", rl.Vector3{Y: 1}, 2)
	e.holds.PickUp(d)
	e.holds.InterpolateToHit(rl.Vector3{Y: 4}, rl.Vector3{X: 1}, 0)
	return e, a, b, c, d
}

func TestExport(t *testing.T) {
	e, a, b, c, d := buildWall(t)

	doc := Export(e.snapshot())

	assert.Equal(t, Version, doc.Version)
	require.Len(t, doc.Holds, 4)
	assert.Equal(t, Hold{
		BlueprintID: "crimp",
		Position:    Vec3{1, 0, 0},
		Normal:      Vec3{0, 0, 1},
		State:       holds.State{Rotation: 0.5},
	}, doc.Holds[HoldID(a)])
	assert.Equal(t, "sloper", doc.Holds[HoldID(c)].BlueprintID)
	assert.Equal(t, Vec3{0, 4, 0}, doc.Holds[HoldID(d)].Position, "held hold is saved at its current pose")
	assert.Equal(t, Vec3{1, 0, 0}, doc.Holds[HoldID(d)].Normal)

	require.Len(t, doc.Routes, 1, "lone unmarked route is not usable")
	assert.Equal(t, Route{
		HoldIDs: []string{HoldID(a), HoldID(b)},
		Name:    "Arete", Grade: "6b", Zone: "North", Setter: "kim",
	}, doc.Routes[0])
	assert.Equal(t, []string{HoldID(a)}, doc.StartingHoldIDs)
	assert.Equal(t, []string{HoldID(b)}, doc.EndingHoldIDs)
	assert.Equal(t, []string{"jug", "crimp"}, doc.SelectedHoldBlueprintIDs)
	assert.NoError(t, Validate(doc))
}

func TestExportSkipsHoldNeverPutDown(t *testing.T) {
	e := newEditor(t)
	a := e.place(t, "crimp", rl.Vector3{X: 1}, 0)
	e.routes.ToggleStarting(a)

	fresh := e.holds.SetHeld(blueprint(t, "jug"), holds.State{})
	e.holds.HideHeld()

	doc := Export(e.snapshot())
	require.Len(t, doc.Holds, 1)
	assert.Contains(t, doc.Holds, HoldID(a))
	assert.NotContains(t, doc.Holds, HoldID(fresh.UID()))
	assert.Equal(t, []string{HoldID(a)}, doc.StartingHoldIDs)

	e.holds.InterpolateToHit(rl.Vector3{Y: 2}, rl.Vector3{Z: 1}, 0)
	e.holds.PutDown()
	e.holds.PickUp(fresh.UID())

	doc = Export(e.snapshot())
	require.Len(t, doc.Holds, 2, "once put down, a held hold is saved")
	assert.Equal(t, Vec3{0, 2, 0}, doc.Holds[HoldID(fresh.UID())].Position)
}

func TestHoldIDIsDeterministic(t *testing.T) {
	assert.Equal(t, HoldID(7), HoldID(7))
	assert.NotEqual(t, HoldID(7), HoldID(8))
	assert.Len(t, HoldID(7), 36)
}

// canonical replaces session-bound hold IDs with blueprint and position so
// documents from different sessions compare equal.
func canonical(doc *Document) map[string]any {
	key := func(id string) string {
		h := doc.Holds[id]
		return fmt.Sprintf("%s@%.3f,%.3f,%.3f", h.BlueprintID, h.Position[0], h.Position[1], h.Position[2])
	}
	keys := func(ids []string) []string {
		out := make([]string, 0, len(ids))
		for _, id := range ids {
			out = append(out, key(id))
		}
		slices.Sort(out)
		return out
	}

	holdsByKey := make(map[string]Hold)
	for id, h := range doc.Holds {
		holdsByKey[key(id)] = h
	}
	var rs []string
	for _, r := range doc.Routes {
		rs = append(rs, fmt.Sprintf("%v|%s|%s|%s|%s", keys(r.HoldIDs), r.Name, r.Grade, r.Zone, r.Setter))
	}
	slices.Sort(rs)

	return map[string]any{
		"version":   doc.Version,
		"player":    doc.Player,
		"wall":      doc.WallModelPath,
		"library":   doc.HoldModelsPath,
		"holds":     holdsByKey,
		"routes":    rs,
		"starting":  keys(doc.StartingHoldIDs),
		"ending":    keys(doc.EndingHoldIDs),
		"selection": doc.SelectedHoldBlueprintIDs,
		"lights":    doc.Lights,
		"capture":   doc.CaptureSettings,
	}
}

func TestRoundTrip(t *testing.T) {
	e, _, _, _, _ := buildWall(t)
	first := Export(e.snapshot())

	data, err := Encode(first)
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)

	fresh := newEditor(t)
	loader := &stubLoader{lib: testLibrary}
	var stages []Stage
	im := &Importer{
		Loader:   loader,
		Holds:    fresh.holds,
		Routes:   fresh.routes,
		Progress: func(s Stage) { stages = append(stages, s) },
		Logger:   zaptest.NewLogger(t),
	}
	res, err := im.Import(decoded)
	require.NoError(t, err)

	assert.Equal(t, []Stage{StageClear, StageWall, StageLibrary, StageHolds, StageRoutes, StageLights, StagePlayer}, stages)
	assert.Equal(t, "wall.obj", loader.wall)
	assert.Equal(t, first.Lights, loader.lights)
	assert.Equal(t, first.Player, loader.player)
	assert.Equal(t, []string{"jug", "crimp"}, res.Selection)
	assert.Equal(t, first.CaptureSettings, res.CaptureSettings)
	assert.Len(t, res.HoldIDs, 4)
	assert.Nil(t, fresh.holds.Held(), "the held hold comes back placed")

	snap := fresh.snapshot()
	snap.Player = loader.player
	snap.Selection = res.Selection
	snap.Lights = loader.lights
	snap.CaptureSettings = res.CaptureSettings
	second := Export(snap)

	if diff := cmp.Diff(canonical(first), canonical(second)); diff != "" {
		t.Errorf("round trip changed the wall (-first +second):\n%s", diff)
	}
}

func TestImportedRouteReplaysMarkers(t *testing.T) {
	e, a, _, _, _ := buildWall(t)
	doc := Export(e.snapshot())

	fresh := newEditor(t)
	res, err := (&Importer{Loader: &stubLoader{lib: testLibrary}, Holds: fresh.holds, Routes: fresh.routes}).Import(doc)
	require.NoError(t, err)

	uid := res.HoldIDs[HoldID(a)]
	assert.True(t, fresh.routes.IsStarting(uid))
	r := fresh.routes.RouteWithHold(uid)
	require.NotNil(t, r)
	assert.Equal(t, "Arete", r.Name)
	assert.Equal(t, 2, r.Len())
	h, ok := fresh.holds.Get(uid)
	require.True(t, ok)
	assert.InDelta(t, 0.5, h.State.Rotation, 1e-6)
}

func TestImportFailureClearsEverything(t *testing.T) {
	e, _, _, _, _ := buildWall(t)
	doc := Export(e.snapshot())

	fresh := newEditor(t)
	fresh.place(t, "jug", rl.Vector3{}, 0)
	fresh.routes.GetOrCreateRouteWithHold(fresh.holds.Placed()[0].UID())
	loader := &stubLoader{lib: catalog.NewLibrary("holds", &catalog.Blueprint{ID: "crimp"})}

	_, err := (&Importer{Loader: loader, Holds: fresh.holds, Routes: fresh.routes}).Import(doc)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageHolds, se.Stage)
	assert.Contains(t, err.Error(), "import holds")
	assert.Zero(t, fresh.holds.Len())
	assert.Empty(t, fresh.routes.Routes())
	assert.Equal(t, 2, loader.cleared)
}

func TestImportWallFailure(t *testing.T) {
	wallErr := errors.New("no such mesh")
	fresh := newEditor(t)
	loader := &stubLoader{lib: testLibrary, wallErr: wallErr}

	_, err := (&Importer{Loader: loader, Holds: fresh.holds, Routes: fresh.routes}).Import(&Document{Version: Version})

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageWall, se.Stage)
	assert.ErrorIs(t, err, wallErr)
}

func TestValidateCollectsProblems(t *testing.T) {
	doc := &Document{
		Version: Version,
		Holds: map[string]Hold{
			"a": {BlueprintID: "jug"},
			"b": {},
		},
		Routes: []Route{
			{HoldIDs: []string{"a", "ghost"}},
			{HoldIDs: []string{"a"}},
			{},
		},
		StartingHoldIDs: []string{"a", "nope"},
		EndingHoldIDs:   []string{"a"},
	}

	err := Validate(doc)
	require.Error(t, err)
	for _, want := range []string{
		"hold b: BlueprintId is required",
		"route 0: unknown hold ghost",
		"route 1: hold a already belongs to route 0",
		"route 2: no holds",
		"starting hold nope: unknown hold",
		"hold a is both starting and ending",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestDecodeRejectsBadDocuments(t *testing.T) {
	_, err := Decode([]byte("Version: \"9.0\"\n"))
	assert.ErrorContains(t, err, "unsupported version")

	_, err = Decode([]byte("Version: [\n"))
	assert.ErrorContains(t, err, "parse state")

	_, err = Decode([]byte("Version: \"1.1\"\nRoutes:\n  - HoldIDs: [x]\n"))
	assert.ErrorContains(t, err, "validate state")
}

func TestDecodeLegacyDocument(t *testing.T) {
	doc, err := Decode([]byte(`
Version: "1.0"
WallModelPath: wall.obj
HoldModelsPath: holds
Holds:
  h1: {BlueprintId: jug, State: {Rotation: 1.5}}
`))
	require.NoError(t, err)
	assert.Equal(t, Vec3{}, doc.Holds["h1"].Position)
	assert.InDelta(t, 1.5, doc.Holds["h1"].State.Rotation, 1e-6)
}

func TestSaveAndLoad(t *testing.T) {
	e, _, _, _, _ := buildWall(t)
	doc := Export(e.snapshot())
	path := filepath.Join(t.TempDir(), "state.yaml")

	require.NoError(t, Save(path, doc))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp file is left behind")
}

func TestSaveFailureLeavesTargetUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "blocked.yaml"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blocked.yaml", "x"), nil, 0o644))

	err := Save(filepath.Join(dir, "blocked.yaml"), &Document{Version: Version})
	assert.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	_, err = Load(filepath.Join(dir, "missing", "state.yaml"))
	assert.ErrorContains(t, err, "read state")
}
