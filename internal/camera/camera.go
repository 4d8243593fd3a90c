package camera

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const maxPitch = 89

// Player is the first-person viewer. Yaw and Pitch are in degrees.
type Player struct {
	Position  rl.Vector3
	Velocity  rl.Vector3
	Yaw       float32
	Pitch     float32
	MoveSpeed float32
	LookSpeed float32

	// Flying ignores gravity and moves along the view direction.
	Flying bool
	// Light is the headlamp.
	Light bool

	Gravity      float32
	JumpStrength float32
	Grounded     bool
	EyeHeight    float32 // floor is y=0; the eye rests this far above it
}

// Pose is the persisted part of a Player. Angles are in radians.
type Pose struct {
	Position rl.Vector3
	Pitch    float32
	Yaw      float32
	Flying   bool
	Light    bool
}

// Movement is one frame of movement intent, each axis in -1..1.
type Movement struct {
	Forward float32
	Right   float32
	Up      float32
	Jump    bool
	LookX   float32 // mouse delta in pixels
	LookY   float32
}

func New(pos rl.Vector3) *Player {
	return &Player{
		Position:     pos,
		Yaw:          -90,
		Pitch:        0,
		MoveSpeed:    4,
		LookSpeed:    0.1,
		Flying:       true,
		Gravity:      20,
		JumpStrength: 6,
		EyeHeight:    1.7,
	}
}

// Update reads keyboard and mouse and moves the player.
func (p *Player) Update(deltaTime float32) {
	var m Movement
	mouseDelta := rl.GetMouseDelta()
	m.LookX, m.LookY = mouseDelta.X, mouseDelta.Y

	if rl.IsKeyDown(rl.KeyW) {
		m.Forward++
	}
	if rl.IsKeyDown(rl.KeyS) {
		m.Forward--
	}
	if rl.IsKeyDown(rl.KeyD) {
		m.Right++
	}
	if rl.IsKeyDown(rl.KeyA) {
		m.Right--
	}
	if rl.IsKeyDown(rl.KeySpace) {
		m.Up++
	}
	if rl.IsKeyDown(rl.KeyLeftControl) {
		m.Up--
	}
	m.Jump = rl.IsKeyPressed(rl.KeySpace)
	if rl.IsKeyPressed(rl.KeyF) {
		p.Flying = !p.Flying
		p.Velocity = rl.Vector3{}
	}
	if rl.IsKeyPressed(rl.KeyL) {
		p.Light = !p.Light
	}

	p.Step(m, deltaTime)
}

// Step applies one frame of movement.
func (p *Player) Step(m Movement, deltaTime float32) {
	p.Yaw += m.LookX * p.LookSpeed
	p.Pitch = clampPitch(p.Pitch - m.LookY*p.LookSpeed)

	forward, right := p.directions()
	if p.Flying {
		forward = p.Forward()
	}

	move := rl.Vector3Add(rl.Vector3Scale(forward, m.Forward), rl.Vector3Scale(right, m.Right))
	if p.Flying {
		move.Y += m.Up
	}
	if l := rl.Vector3Length(move); l > 1 {
		move = rl.Vector3Scale(move, 1/l)
	}

	if p.Flying {
		p.Velocity = rl.Vector3Scale(move, p.MoveSpeed)
		p.Grounded = false
	} else {
		p.Velocity.X = move.X * p.MoveSpeed
		p.Velocity.Z = move.Z * p.MoveSpeed
		if m.Jump && p.Grounded {
			p.Velocity.Y = p.JumpStrength
			p.Grounded = false
		}
		if !p.Grounded {
			p.Velocity.Y -= p.Gravity * deltaTime
		}
	}

	p.Position = rl.Vector3Add(p.Position, rl.Vector3Scale(p.Velocity, deltaTime))

	if !p.Flying && p.Position.Y <= p.EyeHeight {
		p.Position.Y = p.EyeHeight
		p.Velocity.Y = 0
		p.Grounded = true
	}
}

// directions are the horizontal forward and right vectors.
func (p *Player) directions() (forward, right rl.Vector3) {
	yawRad := float64(p.Yaw) * math.Pi / 180
	forward = rl.Vector3{
		X: float32(math.Cos(yawRad)),
		Z: float32(math.Sin(yawRad)),
	}
	right = rl.Vector3{
		X: float32(-math.Sin(yawRad)),
		Z: float32(math.Cos(yawRad)),
	}
	return
}

// Forward is the unit view direction.
func (p *Player) Forward() rl.Vector3 {
	yawRad := float64(p.Yaw) * math.Pi / 180
	pitchRad := float64(p.Pitch) * math.Pi / 180
	return rl.Vector3{
		X: float32(math.Cos(yawRad) * math.Cos(pitchRad)),
		Y: float32(math.Sin(pitchRad)),
		Z: float32(math.Sin(yawRad) * math.Cos(pitchRad)),
	}
}

// ViewRay starts at the eye and goes through the center of the view.
func (p *Player) ViewRay() rl.Ray {
	return rl.Ray{Position: p.Position, Direction: p.Forward()}
}

// LookAt turns the view toward point. Looking at the eye position itself
// is a no-op.
func (p *Player) LookAt(point rl.Vector3) {
	d := rl.Vector3Subtract(point, p.Position)
	l := rl.Vector3Length(d)
	if l == 0 {
		return
	}
	d = rl.Vector3Scale(d, 1/l)
	p.Pitch = clampPitch(float32(math.Asin(float64(d.Y)) * 180 / math.Pi))
	if d.X != 0 || d.Z != 0 {
		p.Yaw = float32(math.Atan2(float64(d.Z), float64(d.X)) * 180 / math.Pi)
	}
}

func (p *Player) Pose() Pose {
	return Pose{
		Position: p.Position,
		Pitch:    p.Pitch * math.Pi / 180,
		Yaw:      p.Yaw * math.Pi / 180,
		Flying:   p.Flying,
		Light:    p.Light,
	}
}

func (p *Player) ApplyPose(pose Pose) {
	p.Position = pose.Position
	p.Pitch = clampPitch(pose.Pitch * 180 / math.Pi)
	p.Yaw = pose.Yaw * 180 / math.Pi
	p.Flying = pose.Flying
	p.Light = pose.Light
	p.Velocity = rl.Vector3{}
	p.Grounded = false
}

func (p *Player) Camera3D() rl.Camera3D {
	return rl.Camera3D{
		Position:   p.Position,
		Target:     rl.Vector3Add(p.Position, p.Forward()),
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       60,
		Projection: rl.CameraPerspective,
	}
}

func clampPitch(pitch float32) float32 {
	return min(max(pitch, -maxPitch), maxPitch)
}
