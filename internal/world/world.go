// Package world owns the scene: the wall, hold objects, their start and end
// markers, and the lights. It spawns hold objects for the hold manager and
// loads the resources a saved state names.
package world

import (
	"fmt"
	"os"

	"cled/internal/assets"
	"cled/internal/camera"
	"cled/internal/catalog"
	"cled/internal/components"
	"cled/internal/engine"
	"cled/internal/highlight"
	"cled/internal/persistence"
	"cled/internal/physics"
	"cled/internal/routes"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"
)

const (
	WallTag  = "wall"
	HoldTag  = "hold"
	LightTag = "light"
)

var (
	wallColor = rl.NewColor(220, 215, 205, 255)
	dimTint   = rl.NewColor(150, 150, 150, 255)

	startColor = rl.NewColor(40, 200, 90, 255)
	endColor   = rl.NewColor(220, 50, 50, 255)

	// holdBoxSize stands in for a hold model with no triangles.
	holdBoxSize = rl.Vector3{X: 0.2, Y: 0.2, Z: 0.2}
)

type Options struct {
	Logger *zap.Logger
	// LoadModel defaults to the shared asset cache.
	LoadModel func(path string) rl.Model
	// Watch restarts a library watcher on every LoadLibrary.
	Watch bool
}

type World struct {
	Scene    *engine.Scene
	Physics  *physics.PhysicsWorld
	Renderer *Renderer
	Player   *camera.Player
	Library  *catalog.Library

	Wall     *engine.GameObject
	WallPath string
	Lights   []*engine.GameObject

	// OnLibraryReload runs after a hot reload replaced Library.
	OnLibraryReload func(lib *catalog.Library)

	highlights *highlight.State
	log        *zap.Logger
	loadModel  func(path string) rl.Model
	watch      bool
	watcher    *catalog.Watcher

	intensity      float32
	shadowStrength float32

	spawned map[uint64]string // hold object UID -> blueprint ID
	markers map[uint64]map[routes.MarkerKind]*engine.GameObject
	shapes  map[string]*components.MeshCollider
	subs    []engine.Subscription
}

// New builds an empty world. It follows book's marker changes until Unload.
func New(book *routes.Book, highlights *highlight.State, opts Options) *World {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	load := opts.LoadModel
	if load == nil {
		load = assets.LoadModel
	}

	w := &World{
		Scene:          engine.NewScene("Wall"),
		Physics:        physics.NewPhysicsWorld(),
		Renderer:       NewRenderer(),
		Player:         camera.New(rl.Vector3{X: 0, Y: 1.7, Z: 6}),
		highlights:     highlights,
		log:            log,
		loadModel:      load,
		watch:          opts.Watch,
		intensity:      1,
		shadowStrength: 0.5,
		spawned:        make(map[uint64]string),
		markers:        make(map[uint64]map[routes.MarkerKind]*engine.GameObject),
		shapes:         make(map[string]*components.MeshCollider),
	}
	w.subs = append(w.subs, book.OnMarker(w.markerChanged))
	return w
}

// Initialize needs a GL context.
func (w *World) Initialize() {
	w.Renderer.Initialize()
	w.syncRenderer()
}

// Spawn creates the scene object for one hold of bp.
func (w *World) Spawn(bp *catalog.Blueprint) *engine.GameObject {
	obj := engine.NewGameObject(bp.ID)
	obj.Tags = []string{HoldTag}

	color, err := bp.Color.RGBA()
	if err != nil {
		color = rl.White
	}
	model := w.model(bp.ModelPath)
	obj.AddComponent(components.NewModelRenderer(model, color))
	obj.AddComponent(w.holdCollider(bp, model))

	w.Scene.AddGameObject(obj)
	w.Physics.AddObject(obj)
	w.spawned[obj.UID] = bp.ID
	return obj
}

func (w *World) Despawn(obj *engine.GameObject) {
	delete(w.spawned, obj.UID)
	delete(w.markers, obj.UID)
	w.Physics.RemoveObject(obj)
	w.Scene.RemoveGameObject(obj)
}

// LibraryDir is empty when no library is loaded.
func (w *World) LibraryDir() string {
	if w.Library == nil {
		return ""
	}
	return w.Library.Dir
}

// Holds returns every spawned hold object.
func (w *World) Holds() []*engine.GameObject {
	return w.Scene.FindByTag(HoldTag)
}

func (w *World) model(path string) rl.Model {
	model := w.loadModel(path)
	w.Renderer.Apply(model)
	return model
}

// collider shares one triangle set and BVH between every object built from
// the same model file.
func (w *World) collider(path string, model rl.Model) *components.MeshCollider {
	shape, ok := w.shapes[path]
	if !ok {
		shape = components.NewMeshCollider()
		shape.BuildFromModel(model)
		w.shapes[path] = shape
	}
	return &components.MeshCollider{Triangles: shape.Triangles, Root: shape.Root}
}

// holdCollider is the shared mesh shape, or a small box when the model has
// nothing to hit so the hold can still be picked.
func (w *World) holdCollider(bp *catalog.Blueprint, model rl.Model) components.Collider {
	mc := w.collider(bp.ModelPath, model)
	if mc.Root != nil {
		return mc
	}
	w.log.Warn("Hold model has no triangles", zap.String("blueprint", bp.ID), zap.String("model", bp.ModelPath))
	return components.NewBoxCollider(holdBoxSize)
}

func (w *World) markerChanged(ch routes.MarkerChange) {
	if !ch.On {
		if m := w.markers[ch.Hold][ch.Kind]; m != nil {
			if m.Parent != nil {
				m.Parent.RemoveChild(m)
			}
			w.Physics.RemoveObject(m)
			w.Scene.RemoveGameObject(m)
			delete(w.markers[ch.Hold], ch.Kind)
		}
		return
	}

	hold := w.Scene.FindByUID(ch.Hold)
	if hold == nil {
		w.log.Warn("Marker for unknown hold", zap.Uint64("hold", ch.Hold), zap.Stringer("kind", ch.Kind))
		return
	}
	if w.markers[ch.Hold] == nil {
		w.markers[ch.Hold] = make(map[routes.MarkerKind]*engine.GameObject)
	}
	if w.markers[ch.Hold][ch.Kind] != nil {
		return
	}

	color := startColor
	if ch.Kind == routes.Ending {
		color = endColor
	}
	m := engine.NewGameObject(fmt.Sprintf("%s marker", ch.Kind))
	marker := components.NewMarker(color)
	m.AddComponent(marker)
	// Aiming at the ring counts as aiming at its hold.
	m.AddComponent(components.NewSphereCollider(marker.Radius + marker.Offset))
	hold.AddChild(m)
	w.Scene.AddGameObject(m)
	w.Physics.AddObject(m)
	w.markers[ch.Hold][ch.Kind] = m
}

// Marker returns the marker object of kind attached to hold, if any.
func (w *World) Marker(hold uint64, kind routes.MarkerKind) *engine.GameObject {
	return w.markers[hold][kind]
}

// Clear drops everything the last import loaded.
func (w *World) Clear() {
	w.Scene.Clear()
	w.Physics.Clear()
	w.Wall = nil
	w.WallPath = ""
	w.Lights = nil
	w.Library = nil
	w.spawned = make(map[uint64]string)
	w.markers = make(map[uint64]map[routes.MarkerKind]*engine.GameObject)
	w.shapes = make(map[string]*components.MeshCollider)
	w.stopWatching()
	w.syncRenderer()
}

// CheckWall reports whether path holds a usable wall model without touching
// the current wall.
func (w *World) CheckWall(path string) error {
	_, _, err := w.wallShape(path)
	return err
}

func (w *World) wallShape(path string) (rl.Model, *components.MeshCollider, error) {
	if path == "" {
		return rl.Model{}, nil, fmt.Errorf("no wall model given")
	}
	if _, err := os.Stat(path); err != nil {
		return rl.Model{}, nil, fmt.Errorf("wall model: %w", err)
	}

	model := w.model(path)
	mc := w.collider(path, model)
	if mc.TriangleCount() == 0 {
		return rl.Model{}, nil, fmt.Errorf("wall model %s has no triangles", path)
	}
	return model, mc, nil
}

func (w *World) LoadWall(path string) error {
	model, mc, err := w.wallShape(path)
	if err != nil {
		return err
	}

	if w.Wall != nil {
		w.Physics.RemoveObject(w.Wall)
		w.Scene.RemoveGameObject(w.Wall)
	}
	obj := engine.NewGameObject("Wall")
	obj.Tags = []string{WallTag}
	obj.AddComponent(components.NewModelRenderer(model, wallColor))
	obj.AddComponent(mc)
	w.Scene.AddGameObject(obj)
	w.Physics.AddObject(obj)
	w.Wall = obj
	w.WallPath = path

	w.log.Info("Loaded wall", zap.String("path", path), zap.Int("triangles", mc.TriangleCount()))
	w.syncRenderer()
	return nil
}

func (w *World) LoadLibrary(path string) (*catalog.Library, error) {
	lib, err := catalog.Load(path)
	if err != nil {
		return nil, err
	}
	assets.Evict(path)
	w.shapes = make(map[string]*components.MeshCollider)
	w.Library = lib
	w.log.Info("Loaded hold library", zap.String("dir", path), zap.Int("blueprints", lib.Len()))

	if w.watch {
		w.stopWatching()
		watcher, err := catalog.NewWatcher(path)
		if err != nil {
			w.log.Warn("Library hot reload disabled", zap.String("dir", path), zap.Error(err))
		} else {
			w.watcher = watcher
		}
	}
	return lib, nil
}

// PollLibrary reloads the library when the watcher saw a change. Meant to
// be called once per frame.
func (w *World) PollLibrary() bool {
	if w.watcher == nil {
		return false
	}
	changed, err := w.watcher.Poll()
	if err != nil {
		w.log.Warn("Library watch error", zap.Error(err))
	}
	if !changed {
		return false
	}
	return w.ReloadLibrary() == nil
}

// ReloadLibrary re-reads the current library directory. Spawned holds whose
// blueprint still exists pick up its new model and color; holds whose
// blueprint vanished keep what they had. A library that fails to load
// leaves the old one in place.
func (w *World) ReloadLibrary() error {
	if w.Library == nil {
		return fmt.Errorf("no library loaded")
	}
	lib, err := catalog.Load(w.Library.Dir)
	if err != nil {
		w.log.Warn("Keeping previous hold library", zap.String("dir", w.Library.Dir), zap.Error(err))
		return err
	}

	for _, id := range lib.IDs() {
		bp, _ := lib.Blueprint(id)
		assets.EvictModel(bp.ModelPath)
		delete(w.shapes, bp.ModelPath)
	}
	for _, obj := range w.Holds() {
		bp, ok := lib.Blueprint(w.spawned[obj.UID])
		if !ok {
			continue
		}
		model := w.model(bp.ModelPath)
		if r := engine.GetComponent[*components.ModelRenderer](obj); r != nil {
			r.Model = model
			if c, err := bp.Color.RGBA(); err == nil {
				r.Color = c
			}
		}
		if old := engine.GetComponent[components.Collider](obj); old != nil {
			obj.RemoveComponent(old)
		}
		obj.AddComponent(w.holdCollider(bp, model))
	}

	w.Library = lib
	w.log.Info("Reloaded hold library", zap.String("dir", lib.Dir), zap.Int("blueprints", lib.Len()))
	if w.OnLibraryReload != nil {
		w.OnLibraryReload(lib)
	}
	return nil
}

func (w *World) stopWatching() {
	if w.watcher != nil {
		_ = w.watcher.Close()
		w.watcher = nil
	}
}

// DefaultLights is one light above and in front of the origin.
func DefaultLights(intensity, shadowStrength float32) persistence.Lights {
	return persistence.Lights{
		Positions:      []persistence.Vec3{{0, 8, 6}},
		Intensity:      intensity,
		ShadowStrength: shadowStrength,
	}
}

func (w *World) ApplyLights(l persistence.Lights) {
	for _, obj := range w.Lights {
		w.Scene.RemoveGameObject(obj)
	}
	w.Lights = w.Lights[:0]
	w.intensity = l.Intensity
	w.shadowStrength = min(max(l.ShadowStrength, 0), 1)

	for i, p := range l.Positions {
		obj := engine.NewGameObject(fmt.Sprintf("Light %d", i))
		obj.Tags = []string{LightTag}
		obj.Transform.Position = p.Vector3()
		light := components.NewPointLight()
		light.Intensity = l.Intensity
		obj.AddComponent(light)
		w.Scene.AddGameObject(obj)
		w.Lights = append(w.Lights, obj)
	}
	w.syncRenderer()
}

// LightSettings is the current lighting as persisted.
func (w *World) LightSettings() persistence.Lights {
	l := persistence.Lights{Intensity: w.intensity, ShadowStrength: w.shadowStrength}
	for _, obj := range w.Lights {
		l.Positions = append(l.Positions, persistence.ToVec3(obj.Transform.Position))
	}
	return l
}

func (w *World) SetIntensity(v float32) {
	w.intensity = max(v, 0)
	for _, obj := range w.Lights {
		if light := engine.GetComponent[*components.PointLight](obj); light != nil {
			light.Intensity = w.intensity
		}
	}
	w.syncRenderer()
}

func (w *World) SetShadowStrength(v float32) {
	w.shadowStrength = min(max(v, 0), 1)
	w.syncRenderer()
}

func (w *World) syncRenderer() {
	positions := make([]rl.Vector3, 0, len(w.Lights))
	for _, obj := range w.Lights {
		if light := engine.GetComponent[*components.PointLight](obj); light != nil {
			positions = append(positions, light.GetPosition())
		}
	}
	w.Renderer.SetLights(positions, w.intensity, w.shadowStrength, w.wallCenter())
}

func (w *World) wallCenter() rl.Vector3 {
	if w.Wall == nil {
		return rl.Vector3Zero()
	}
	mc := engine.GetComponent[*components.MeshCollider](w.Wall)
	b := mc.GetBounds()
	center := rl.Vector3Scale(rl.Vector3Add(b.Min, b.Max), 0.5)
	return rl.Vector3Transform(center, w.Wall.WorldMatrix())
}

func (w *World) ApplyPlayer(p persistence.Player) {
	w.Player.ApplyPose(PoseFromRecord(p))
}

// PlayerRecord is the player as persisted.
func (w *World) PlayerRecord() persistence.Player {
	return RecordFromPose(w.Player.Pose())
}

func (w *World) Update(deltaTime float32) {
	w.Scene.Update(deltaTime)
	w.PollLibrary()
	w.Renderer.SetHeadlamp(w.Player.Light)
}

// DrawShadows renders the shadow map. Call it outside any 3D mode.
func (w *World) DrawShadows() {
	if !w.Renderer.Ready() {
		return
	}
	w.Renderer.DrawShadowMap(func() { w.drawObjects(nil) })
}

// Draw renders the scene from cam. Call it inside BeginMode3D.
func (w *World) Draw(cam rl.Camera3D, aspect float32) {
	frustum := ExtractFrustum(cam, aspect)
	w.applyHighlights()
	w.Renderer.DrawWithShadows(cam.Position, func() { w.drawObjects(&frustum) })

	for _, obj := range w.Holds() {
		level := w.highlights.Level(obj.UID)
		if level == highlight.None || !w.visible(obj, &frustum) {
			continue
		}
		if r := engine.GetComponent[*components.ModelRenderer](obj); r != nil {
			r.DrawWires(highlightColor(level))
		}
	}
	for _, obj := range w.Scene.GameObjects {
		if m := engine.GetComponent[*components.Marker](obj); m != nil {
			m.Draw()
		}
	}
	w.Renderer.DrawLightGizmos()
}

func (w *World) drawObjects(f *Frustum) {
	if w.Wall != nil {
		if r := engine.GetComponent[*components.ModelRenderer](w.Wall); r != nil {
			r.Draw()
		}
	}
	for _, obj := range w.Holds() {
		if !w.visible(obj, f) {
			continue
		}
		if r := engine.GetComponent[*components.ModelRenderer](obj); r != nil {
			r.Draw()
		}
	}
}

func (w *World) visible(obj *engine.GameObject, f *Frustum) bool {
	if f == nil {
		return true
	}
	mc := engine.GetComponent[*components.MeshCollider](obj)
	if mc == nil || mc.Root == nil {
		return f.ContainsPoint(obj.WorldPosition())
	}
	b := mc.GetBounds()
	center := rl.Vector3Transform(rl.Vector3Scale(rl.Vector3Add(b.Min, b.Max), 0.5), obj.WorldMatrix())
	s := obj.WorldScale()
	radius := rl.Vector3Distance(b.Min, b.Max) / 2 * max(s.X, s.Y, s.Z)
	return f.ContainsSphere(center, radius)
}

// applyHighlights dims unhighlighted holds while any route is emphasized.
func (w *World) applyHighlights() {
	emphasized := len(w.highlights.Highlighted(highlight.Secondary)) > 0
	for _, obj := range w.Holds() {
		r := engine.GetComponent[*components.ModelRenderer](obj)
		if r == nil {
			continue
		}
		r.Tint = rl.White
		if emphasized && w.highlights.Level(obj.UID) == highlight.None {
			r.Tint = dimTint
		}
	}
}

func highlightColor(level highlight.Level) rl.Color {
	switch level {
	case highlight.Primary:
		return rl.Yellow
	case highlight.Secondary:
		return rl.Orange
	default:
		return rl.LightGray
	}
}

func (w *World) Unload() {
	for _, s := range w.subs {
		s.Unsubscribe()
	}
	w.subs = nil
	w.stopWatching()
	w.Renderer.Unload()
	assets.Unload()
}
