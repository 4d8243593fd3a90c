// Package persistence maps the editor state to a flat YAML document and
// rebuilds the state from one.
package persistence

import (
	"cled/internal/holds"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Version is written into every exported document.
const Version = "1.1"

// supportedVersions lists the document versions Decode accepts. 1.0
// documents carry no per-hold position and load with holds at the origin.
var supportedVersions = []string{"1.0", Version}

type Document struct {
	Version                  string          `yaml:"Version"`
	Player                   Player          `yaml:"Player"`
	WallModelPath            string          `yaml:"WallModelPath"`
	HoldModelsPath           string          `yaml:"HoldModelsPath"`
	Holds                    map[string]Hold `yaml:"Holds"`
	Routes                   []Route         `yaml:"Routes"`
	StartingHoldIDs          []string        `yaml:"StartingHoldIDs"`
	EndingHoldIDs            []string        `yaml:"EndingHoldIDs"`
	SelectedHoldBlueprintIDs []string        `yaml:"SelectedHoldBlueprintIDs"`
	Lights                   Lights          `yaml:"Lights"`
	CaptureSettings          CaptureSettings `yaml:"CaptureSettings"`
}

// Vec3 is stored as a flow sequence [x, y, z].
type Vec3 [3]float32

func ToVec3(v rl.Vector3) Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

func (v Vec3) Vector3() rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}

type Player struct {
	Position    Vec3       `yaml:"Position,flow"`
	Orientation [2]float32 `yaml:"Orientation,flow"` // pitch, yaw in radians
	Flying      bool       `yaml:"Flying"`
	Light       bool       `yaml:"Light"`
}

type Hold struct {
	BlueprintID string      `yaml:"BlueprintId"`
	Position    Vec3        `yaml:"Position,flow"`
	Normal      Vec3        `yaml:"Normal,flow"`
	State       holds.State `yaml:"State"`
}

type Route struct {
	HoldIDs []string `yaml:"HoldIDs"`
	Name    string   `yaml:"Name"`
	Grade   string   `yaml:"Grade"`
	Zone    string   `yaml:"Zone"`
	Setter  string   `yaml:"Setter"`
}

type Lights struct {
	Positions      []Vec3  `yaml:"Positions,flow"`
	Intensity      float32 `yaml:"Intensity"`
	ShadowStrength float32 `yaml:"ShadowStrength"`
}

type CaptureSettings struct {
	ImagePath      string `yaml:"ImagePath"`
	ImageSupersize int    `yaml:"ImageSupersize"`
}
