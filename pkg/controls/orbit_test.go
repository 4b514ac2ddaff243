package controls

import (
	"math"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/df07/go-scene-viewer/pkg/scene"
)

func newTestOrbit() (*Orbit, *scene.PerspectiveCamera) {
	cam := scene.NewPerspectiveCamera(75, 1, 0.1, 1000)
	cam.Position = mgl32.Vec3{0, 0, 5}
	cam.Target = mgl32.Vec3{}
	return NewOrbit(cam), cam
}

func TestOrbitUpdateWithoutInputKeepsCamera(t *testing.T) {
	o, cam := newTestOrbit()
	if o.Update() {
		t.Errorf("Expected no movement without input")
	}
	if !cam.Position.ApproxEqualThreshold(mgl32.Vec3{0, 0, 5}, 1e-5) {
		t.Errorf("Camera drifted to %v", cam.Position)
	}
}

func TestOrbitRotatePreservesDistance(t *testing.T) {
	o, cam := newTestOrbit()
	o.Rotate(math.Pi/2, 0)
	if !o.Update() {
		t.Fatalf("Expected camera to move")
	}

	// A quarter turn to the left from +Z ends on -X
	if !cam.Position.ApproxEqualThreshold(mgl32.Vec3{-5, 0, 0}, 1e-4) {
		t.Errorf("Expected camera at (-5,0,0), got %v", cam.Position)
	}
	if math.Abs(o.Distance()-5) > 1e-4 {
		t.Errorf("Expected distance 5, got %f", o.Distance())
	}
	if cam.Target != (mgl32.Vec3{}) {
		t.Errorf("Expected camera to keep looking at the target")
	}
}

func TestOrbitPolarAngleIsClamped(t *testing.T) {
	o, cam := newTestOrbit()
	o.MaxPolarAngle = math.Pi / 2

	// Try to move far below the horizon
	o.Rotate(0, -math.Pi)
	o.Update()
	if cam.Position.Y() < -1e-4 {
		t.Errorf("Camera went below the horizon: %v", cam.Position)
	}

	// Going over the top pole stops just short of it
	o.Rotate(0, 4*math.Pi)
	o.Update()
	horizontal := math.Hypot(float64(cam.Position.X()), float64(cam.Position.Z()))
	if cam.Position.Y() > 5 || horizontal == 0 {
		t.Errorf("Camera reached the pole: %v", cam.Position)
	}
}

func TestOrbitZoom(t *testing.T) {
	tests := []struct {
		name   string
		steps  float64
		minD   float64
		maxD   float64
		expect float64
	}{
		{"zoom in", 1, 0, math.Inf(1), 5 * 0.95},
		{"zoom out", -2, 0, math.Inf(1), 5 / (0.95 * 0.95)},
		{"clamped in", 100, 2, math.Inf(1), 2},
		{"clamped out", -100, 0, 8, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, _ := newTestOrbit()
			o.MinDistance = tt.minD
			o.MaxDistance = tt.maxD
			o.Zoom(tt.steps)
			o.Update()
			if math.Abs(o.Distance()-tt.expect) > 1e-3 {
				t.Errorf("Expected distance %f, got %f", tt.expect, o.Distance())
			}
		})
	}
}

func TestOrbitRotatePixels(t *testing.T) {
	o, cam := newTestOrbit()

	// Half the viewport height is half a turn
	o.RotatePixels(300, 0, 600)
	o.Update()
	if !cam.Position.ApproxEqualThreshold(mgl32.Vec3{0, 0, -5}, 1e-3) {
		t.Errorf("Expected camera behind the target, got %v", cam.Position)
	}

	o.RotatePixels(10, 10, 0)
	if o.Update() {
		t.Errorf("Zero-height viewport must not rotate")
	}
}

func TestOrbitDamping(t *testing.T) {
	o, cam := newTestOrbit()
	o.EnableDamping = true
	o.DampingFactor = 0.5

	o.Rotate(0.2, 0)
	o.Update()
	first := cam.Position
	if !o.Update() {
		t.Errorf("Expected damped rotation to continue on the next frame")
	}
	if cam.Position == first {
		t.Errorf("Expected camera to keep moving")
	}
}

func TestOrbitReset(t *testing.T) {
	o, cam := newTestOrbit()
	o.Rotate(1, 0.5)
	o.Zoom(3)
	o.Update()

	o.Reset()
	if !o.Update() {
		t.Errorf("Expected reset to move the camera")
	}
	if cam.Position != (mgl32.Vec3{0, 0, 5}) {
		t.Errorf("Expected camera back at (0,0,5), got %v", cam.Position)
	}
}

func TestOrbitConcurrentInput(t *testing.T) {
	o, _ := newTestOrbit()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				o.RotatePixels(1, 1, 600)
				o.Zoom(0.01)
			}
		}()
	}
	for i := 0; i < 50; i++ {
		o.Update()
	}
	wg.Wait()
	o.Update()

	if d := o.Distance(); d <= 0 || math.IsNaN(d) {
		t.Errorf("Invalid distance after concurrent input: %f", d)
	}
}
