// Package controls translates user input into camera movement.
package controls

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-scene-viewer/pkg/scene"
)

// poleEpsilon keeps the polar angle away from the poles, where the camera's
// up vector would become parallel to its view direction.
const poleEpsilon = 1e-6

// Orbit keeps a camera on a sphere around Target. Input methods may be called
// from any goroutine; they only accumulate deltas which Update applies to the
// camera on the render loop's goroutine.
type Orbit struct {
	Target        mgl32.Vec3
	RotateSpeed   float64 // Multiplier for pointer rotation
	ZoomSpeed     float64 // Multiplier for wheel zoom
	MinDistance   float64
	MaxDistance   float64
	MinPolarAngle float64 // Radians from +Y
	MaxPolarAngle float64
	EnableDamping bool
	DampingFactor float64 // Share of the delta applied per frame when damping

	mu         sync.Mutex
	camera     *scene.PerspectiveCamera
	dTheta     float64 // Pending azimuth change
	dPhi       float64 // Pending polar change
	dollyScale float64 // Pending radius multiplier
	reset      bool

	position0 mgl32.Vec3
	target0   mgl32.Vec3
}

// NewOrbit binds orbit controls to camera. The camera's current position and
// target become the reset state.
func NewOrbit(camera *scene.PerspectiveCamera) *Orbit {
	return &Orbit{
		Target:        camera.Target,
		RotateSpeed:   1,
		ZoomSpeed:     1,
		MinDistance:   0,
		MaxDistance:   math.Inf(1),
		MinPolarAngle: 0,
		MaxPolarAngle: math.Pi,
		DampingFactor: 0.05,
		camera:        camera,
		dollyScale:    1,
		position0:     camera.Position,
		target0:       camera.Target,
	}
}

// Camera returns the bound camera
func (o *Orbit) Camera() *scene.PerspectiveCamera {
	return o.camera
}

// Rotate queues an azimuth (around +Y) and polar angle change in radians.
// Positive dTheta orbits the camera to the left, positive dPhi moves it
// towards the top pole.
func (o *Orbit) Rotate(dTheta, dPhi float64) {
	o.mu.Lock()
	o.dTheta -= dTheta
	o.dPhi -= dPhi
	o.mu.Unlock()
}

// RotatePixels queues a rotation from a pointer drag of (dx, dy) pixels in a
// viewport of the given height. Dragging across the full height turns the
// camera by a full circle.
func (o *Orbit) RotatePixels(dx, dy float64, viewportHeight int) {
	if viewportHeight <= 0 {
		return
	}
	h := float64(viewportHeight)
	o.Rotate(2*math.Pi*dx/h*o.RotateSpeed, 2*math.Pi*dy/h*o.RotateSpeed)
}

// Zoom queues a dolly. Positive steps move the camera closer to the target.
func (o *Orbit) Zoom(steps float64) {
	scale := math.Pow(math.Pow(0.95, o.ZoomSpeed), steps)
	o.mu.Lock()
	o.dollyScale *= scale
	o.mu.Unlock()
}

// Reset queues a return to the state captured when the controls were bound
func (o *Orbit) Reset() {
	o.mu.Lock()
	o.reset = true
	o.mu.Unlock()
}

// Update applies queued input to the camera and reports whether it moved
func (o *Orbit) Update() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	cam := o.camera
	before := cam.Position

	if o.reset {
		o.reset = false
		o.dTheta, o.dPhi, o.dollyScale = 0, 0, 1
		o.Target = o.target0
		cam.Position = o.position0
		cam.Target = o.target0
		return cam.Position != before
	}

	offset := cam.Position.Sub(o.Target)
	radius, theta, phi := toSpherical(offset)

	dTheta, dPhi := o.dTheta, o.dPhi
	if o.EnableDamping {
		dTheta *= o.DampingFactor
		dPhi *= o.DampingFactor
	}
	theta += dTheta
	phi += dPhi

	phi = clamp(phi, o.MinPolarAngle, o.MaxPolarAngle)
	phi = clamp(phi, poleEpsilon, math.Pi-poleEpsilon)

	radius = clamp(radius*o.dollyScale, o.MinDistance, o.MaxDistance)

	cam.Position = o.Target.Add(fromSpherical(radius, theta, phi))
	cam.Target = o.Target

	if o.EnableDamping {
		o.dTheta *= 1 - o.DampingFactor
		o.dPhi *= 1 - o.DampingFactor
	} else {
		o.dTheta, o.dPhi = 0, 0
	}
	o.dollyScale = 1

	return cam.Position.Sub(before).Len() > 1e-6
}

// Distance returns the camera's distance to the target
func (o *Orbit) Distance() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return float64(o.camera.Position.Sub(o.Target).Len())
}

// State returns the camera position and orbit target. Unlike reading the
// camera directly it is safe while another goroutine runs Update.
func (o *Orbit) State() (position, target mgl32.Vec3) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.camera.Position, o.Target
}

// toSpherical returns radius, azimuth around +Y measured from +Z, and polar
// angle measured from +Y
func toSpherical(v mgl32.Vec3) (radius, theta, phi float64) {
	x, y, z := float64(v.X()), float64(v.Y()), float64(v.Z())
	radius = math.Sqrt(x*x + y*y + z*z)
	if radius == 0 {
		return 0, 0, 0
	}
	theta = math.Atan2(x, z)
	phi = math.Acos(clamp(y/radius, -1, 1))
	return radius, theta, phi
}

func fromSpherical(radius, theta, phi float64) mgl32.Vec3 {
	sinPhi := math.Sin(phi) * radius
	return mgl32.Vec3{
		float32(sinPhi * math.Sin(theta)),
		float32(math.Cos(phi) * radius),
		float32(sinPhi * math.Cos(theta)),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
