package viewport

import (
	"math"
	"testing"
)

func TestCompute_CoversViewport(t *testing.T) {
	cases := []struct {
		name           string
		sw, sh, dw, dh int
	}{
		{"same aspect", 640, 480, 1280, 960},
		{"wider source", 1920, 1080, 800, 800},
		{"taller source", 480, 640, 1024, 768},
		{"downscale", 1920, 1080, 320, 240},
		{"tiny source", 2, 2, 1000, 500},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Compute(tc.sw, tc.sh, tc.dw, tc.dh)

			// Cover-fit: the scaled source must fully cover the viewport.
			if r.Scale*float64(tc.sw) < float64(tc.dw) {
				t.Errorf("scaled width %f does not cover viewport width %d", r.Scale*float64(tc.sw), tc.dw)
			}
			if r.Scale*float64(tc.sh) < float64(tc.dh) {
				t.Errorf("scaled height %f does not cover viewport height %d", r.Scale*float64(tc.sh), tc.dh)
			}

			// The mapped source corners must bracket the viewport.
			x0, y0 := r.Map(0, 0)
			x1, y1 := r.Map(float64(tc.sw), float64(tc.sh))

			if x0 > 0.5 || y0 > 0.5 {
				t.Errorf("mapped origin (%f, %f) leaves a gap", x0, y0)
			}
			if x1 < float64(tc.dw)-0.5 || y1 < float64(tc.dh)-0.5 {
				t.Errorf("mapped far corner (%f, %f) leaves a gap in %dx%d", x1, y1, tc.dw, tc.dh)
			}

			// Centering: overflow is split evenly between both sides.
			if math.Abs((x0+x1)-float64(tc.dw)) > 1e-9 {
				t.Errorf("mapping not horizontally centered: %f + %f != %d", x0, x1, tc.dw)
			}
			if math.Abs((y0+y1)-float64(tc.dh)) > 1e-9 {
				t.Errorf("mapping not vertically centered: %f + %f != %d", y0, y1, tc.dh)
			}
		})
	}
}

func TestCompute_DegenerateDimensions(t *testing.T) {
	cases := []struct {
		name           string
		sw, sh, dw, dh int
	}{
		{"zero source width", 0, 480, 800, 600},
		{"zero source height", 640, 0, 800, 600},
		{"zero viewport", 640, 480, 0, 0},
		{"negative", -1, 480, 800, 600},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Compute(tc.sw, tc.sh, tc.dw, tc.dh)
			if r.Scale != 1 || r.OffsetX != 0 || r.OffsetY != 0 {
				t.Errorf("expected identity mapping, got %+v", r)
			}

			x, y := r.Map(12, 34)
			if x != 12 || y != 34 {
				t.Errorf("identity Map(12, 34) = (%f, %f)", x, y)
			}
		})
	}
}

func TestMapNormalized(t *testing.T) {
	r := Compute(640, 480, 1280, 960)

	// Same aspect ratio: scale 2, no offsets.
	if r.Scale != 2 || r.OffsetX != 0 || r.OffsetY != 0 {
		t.Fatalf("unexpected render state: %+v", r)
	}

	x, y := r.MapNormalized(0.5, 0.5)
	if x != 640 || y != 480 {
		t.Errorf("MapNormalized(0.5, 0.5) = (%f, %f), want (640, 480)", x, y)
	}

	x, y = r.MapNormalized(0, 1)
	if x != 0 || y != 960 {
		t.Errorf("MapNormalized(0, 1) = (%f, %f), want (0, 960)", x, y)
	}
}

func TestCompute_OffsetsCropSymmetrically(t *testing.T) {
	// 1920x1080 into a square viewport: height drives the scale, width
	// overflows and is cropped equally on both sides.
	r := Compute(1920, 1080, 800, 800)

	wantScale := 800.0 / 1080.0
	if math.Abs(r.Scale-wantScale) > 1e-12 {
		t.Errorf("scale = %f, want %f", r.Scale, wantScale)
	}
	if r.OffsetX >= 0 {
		t.Errorf("expected negative x offset for cropped width, got %f", r.OffsetX)
	}
	if math.Abs(r.OffsetY) > 1e-9 {
		t.Errorf("expected zero y offset, got %f", r.OffsetY)
	}
}
