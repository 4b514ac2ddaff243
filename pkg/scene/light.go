package scene

import "github.com/go-gl/mathgl/mgl32"

// HemisphereLight lights every surface with a blend of a sky color and a
// ground color, chosen by how much the surface normal faces the light's
// direction.
type HemisphereLight struct {
	SkyColor    mgl32.Vec3
	GroundColor mgl32.Vec3
	Intensity   float32
	Direction   mgl32.Vec3 // Points towards the sky, +Y by default
}

// NewHemisphereLight creates a light pointing up
func NewHemisphereLight(sky, ground mgl32.Vec3, intensity float32) *HemisphereLight {
	return &HemisphereLight{
		SkyColor:    sky,
		GroundColor: ground,
		Intensity:   intensity,
		Direction:   mgl32.Vec3{0, 1, 0},
	}
}

// Irradiance returns the light reaching a surface with the given unit normal,
// with the light direction taken from the light itself
func (l *HemisphereLight) Irradiance(normal mgl32.Vec3) mgl32.Vec3 {
	return l.IrradianceDir(normal, l.Direction.Normalize())
}

// IrradianceDir is Irradiance with an explicit world-space sky direction
func (l *HemisphereLight) IrradianceDir(normal, dir mgl32.Vec3) mgl32.Vec3 {
	t := 0.5*normal.Dot(dir) + 0.5 // Map [-1,1] to [0,1]
	return l.GroundColor.Mul(1 - t).Add(l.SkyColor.Mul(t)).Mul(l.Intensity)
}

// HexColor converts a 0xRRGGBB value into a linear [0,1] color vector
func HexColor(hex uint32) mgl32.Vec3 {
	return mgl32.Vec3{
		float32((hex>>16)&0xff) / 255,
		float32((hex>>8)&0xff) / 255,
		float32(hex&0xff) / 255,
	}
}
