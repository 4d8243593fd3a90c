package world

import (
	"cled/internal/camera"
	"cled/internal/persistence"
)

func RecordFromPose(p camera.Pose) persistence.Player {
	return persistence.Player{
		Position:    persistence.ToVec3(p.Position),
		Orientation: [2]float32{p.Pitch, p.Yaw},
		Flying:      p.Flying,
		Light:       p.Light,
	}
}

func PoseFromRecord(p persistence.Player) camera.Pose {
	return camera.Pose{
		Position: p.Position.Vector3(),
		Pitch:    p.Orientation[0],
		Yaw:      p.Orientation[1],
		Flying:   p.Flying,
		Light:    p.Light,
	}
}
