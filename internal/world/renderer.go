package world

import (
	_ "embed"
	"math"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const ShadowMapResolution = 2048

const (
	ShadowNear float32 = 0.5
	ShadowFar  float32 = 100.0
	// MaxLights matches MAX_LIGHTS in the fragment shader.
	MaxLights = 4
)

var (
	//go:embed shaders/lighting.vs
	lightingVS string
	//go:embed shaders/lighting.fs
	lightingFS string
)

var ambientColor = []float32{0.18, 0.18, 0.2, 1.0}

// Renderer lights the wall and holds with point lights. The first light
// casts the only shadow.
type Renderer struct {
	Shader      rl.Shader
	ShadowMap   rl.RenderTexture2D
	LightCamera rl.Camera3D
	MatLightVP  rl.Matrix

	lights         []rl.Vector3
	intensity      float32
	shadowStrength float32
	headlamp       bool
}

func NewRenderer() *Renderer {
	return &Renderer{intensity: 1}
}

func (r *Renderer) Initialize() {
	r.Shader = rl.LoadShaderFromMemory(lightingVS, lightingFS)
	r.ShadowMap = loadShadowmapRenderTexture(ShadowMapResolution, ShadowMapResolution)

	ambientLoc := rl.GetShaderLocation(r.Shader, "ambient")
	rl.SetShaderValue(r.Shader, ambientLoc, ambientColor, rl.ShaderUniformVec4)
}

// Ready reports whether Initialize ran, i.e. a GL context exists.
func (r *Renderer) Ready() bool {
	return r.Shader.ID > 0
}

// Apply makes every material of model use the lighting shader.
func (r *Renderer) Apply(model rl.Model) {
	if !r.Ready() || model.MaterialCount == 0 {
		return
	}
	mats := unsafe.Slice(model.Materials, model.MaterialCount)
	for i := range mats {
		mats[i].Shader = r.Shader
	}
}

// SetLights updates light positions and strength. The shadow camera sits
// at the first light and looks at target.
func (r *Renderer) SetLights(positions []rl.Vector3, intensity, shadowStrength float32, target rl.Vector3) {
	r.lights = positions[:min(len(positions), MaxLights)]
	r.intensity = intensity
	r.shadowStrength = shadowStrength
	if len(r.lights) > 0 {
		r.LightCamera = rl.Camera3D{
			Position:   r.lights[0],
			Target:     target,
			Up:         lightCameraUp(rl.Vector3Subtract(target, r.lights[0])),
			Fovy:       90,
			Projection: rl.CameraPerspective,
		}
	}
	if r.Ready() {
		r.updateShaderUniforms()
	}
}

func (r *Renderer) SetHeadlamp(on bool) {
	r.headlamp = on
}

func (r *Renderer) updateShaderUniforms() {
	flat := make([]float32, 0, MaxLights*3)
	for _, p := range r.lights {
		flat = append(flat, p.X, p.Y, p.Z)
	}
	if len(flat) > 0 {
		lightPosLoc := rl.GetShaderLocation(r.Shader, "lightPos")
		rl.SetShaderValueV(r.Shader, lightPosLoc, flat, rl.ShaderUniformVec3, int32(len(r.lights)))
	}

	intensityLoc := rl.GetShaderLocation(r.Shader, "intensity")
	rl.SetShaderValue(r.Shader, intensityLoc, []float32{r.intensity}, rl.ShaderUniformFloat)

	shadowLoc := rl.GetShaderLocation(r.Shader, "shadowStrength")
	rl.SetShaderValue(r.Shader, shadowLoc, []float32{r.shadowStrength}, rl.ShaderUniformFloat)
}

func (r *Renderer) DrawShadowMap(draw func()) {
	if len(r.lights) == 0 {
		return
	}
	rl.BeginTextureMode(r.ShadowMap)
	rl.ClearBackground(rl.White)

	rl.BeginMode3D(r.LightCamera)
	rl.SetMatrixProjection(rl.MatrixPerspective(r.LightCamera.Fovy*rl.Deg2rad, 1, ShadowNear, ShadowFar))

	lightView := rl.GetMatrixModelview()
	lightProj := rl.GetMatrixProjection()

	rl.SetCullFace(0)
	draw()
	rl.SetCullFace(1)

	rl.EndMode3D()
	rl.EndTextureMode()

	rl.Viewport(0, 0, int32(rl.GetRenderWidth()), int32(rl.GetRenderHeight()))

	r.MatLightVP = rl.MatrixMultiply(lightView, lightProj)
}

func (r *Renderer) DrawWithShadows(cameraPos rl.Vector3, draw func()) {
	viewPosLoc := rl.GetShaderLocation(r.Shader, "viewPos")
	rl.SetShaderValue(r.Shader, viewPosLoc, []float32{cameraPos.X, cameraPos.Y, cameraPos.Z}, rl.ShaderUniformVec3)

	lightVPLoc := rl.GetShaderLocation(r.Shader, "matLightVP")
	rl.SetShaderValueMatrix(r.Shader, lightVPLoc, r.MatLightVP)

	rl.EnableShader(r.Shader.ID)

	setUniformInt(rl.GetShaderLocation(r.Shader, "lightCount"), int32(len(r.lights)))

	headlamp := int32(0)
	if r.headlamp {
		headlamp = 1
	}
	setUniformInt(rl.GetShaderLocation(r.Shader, "headlamp"), headlamp)

	textureSlot := int32(10)
	rl.ActiveTextureSlot(textureSlot)
	rl.EnableTexture(r.ShadowMap.Depth.ID)
	setUniformInt(rl.GetShaderLocation(r.Shader, "shadowMap"), textureSlot)

	draw()
}

// DrawLightGizmos marks each light with a small sphere.
func (r *Renderer) DrawLightGizmos() {
	for i, p := range r.lights {
		c := rl.Yellow
		if i == 0 {
			c = rl.Orange
		}
		rl.DrawSphere(p, 0.15, c)
	}
}

func (r *Renderer) Unload() {
	if !r.Ready() {
		return
	}
	rl.UnloadShader(r.Shader)
	rl.UnloadRenderTexture(r.ShadowMap)
	r.Shader = rl.Shader{}
}

// setUniformInt sets an int uniform on the enabled shader. SetUniform only
// takes float slices, so the int travels as raw bits.
func setUniformInt(loc, v int32) {
	rl.SetUniform(loc, []float32{math.Float32frombits(uint32(v))}, int32(rl.ShaderUniformInt))
}

// lightCameraUp picks an up vector that is not parallel to dir.
func lightCameraUp(dir rl.Vector3) rl.Vector3 {
	up := rl.Vector3{Y: 1}
	if l := rl.Vector3Length(dir); l > 0 {
		if d := rl.Vector3DotProduct(rl.Vector3Scale(dir, 1/l), up); d > 0.99 || d < -0.99 {
			return rl.Vector3{Z: 1}
		}
	}
	return up
}

func loadShadowmapRenderTexture(width, height int32) rl.RenderTexture2D {
	target := rl.RenderTexture2D{}

	target.ID = rl.LoadFramebuffer()
	target.Texture.Width = width
	target.Texture.Height = height

	if target.ID > 0 {
		rl.EnableFramebuffer(target.ID)

		target.Depth.ID = rl.LoadTextureDepth(width, height, false)
		target.Depth.Width = width
		target.Depth.Height = height
		target.Depth.Format = 19
		target.Depth.Mipmaps = 1

		rl.FramebufferAttach(target.ID, target.Depth.ID, rl.AttachmentDepth, rl.AttachmentTexture2d, 0)

		rl.DisableFramebuffer()
	}

	return target
}
