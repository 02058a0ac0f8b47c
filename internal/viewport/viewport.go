// Package viewport computes the affine mapping from source video pixel space
// into display space under a cover-fit policy.
package viewport

// RenderState is the affine mapping (uniform scale + centering offsets) from
// a source frame into a destination viewport. It is recomputed from scratch
// whenever the viewport or the source resolution changes, never mutated
// incrementally.
type RenderState struct {
	Scale        float64 `json:"scale"`
	OffsetX      float64 `json:"offsetX"`
	OffsetY      float64 `json:"offsetY"`
	SourceWidth  int     `json:"sourceWidth"`
	SourceHeight int     `json:"sourceHeight"`
}

// Identity returns a pass-through mapping for the given source dimensions.
func Identity(sw, sh int) RenderState {
	return RenderState{Scale: 1, SourceWidth: sw, SourceHeight: sh}
}

// Compute returns the cover-fit mapping from a sw x sh source into a dw x dh
// viewport: the source is scaled up just enough to fully cover the viewport
// (cropping overflow) and centered.
//
// Degenerate zero or negative dimensions short-circuit to the identity
// mapping so no division by zero can occur.
func Compute(sw, sh, dw, dh int) RenderState {
	if sw <= 0 || sh <= 0 || dw <= 0 || dh <= 0 {
		return Identity(sw, sh)
	}

	scale := float64(dw) / float64(sw)
	if s := float64(dh) / float64(sh); s > scale {
		scale = s
	}

	return RenderState{
		Scale:        scale,
		OffsetX:      (float64(dw) - float64(sw)*scale) / 2,
		OffsetY:      (float64(dh) - float64(sh)*scale) / 2,
		SourceWidth:  sw,
		SourceHeight: sh,
	}
}

// Map transforms a source pixel coordinate into display space.
func (r RenderState) Map(x, y float64) (float64, float64) {
	return x*r.Scale + r.OffsetX, y*r.Scale + r.OffsetY
}

// MapNormalized transforms a [0,1]-normalized coordinate (as produced by the
// hand backend) into display space by denormalizing against the source
// dimensions first.
func (r RenderState) MapNormalized(x, y float64) (float64, float64) {
	return r.Map(x*float64(r.SourceWidth), y*float64(r.SourceHeight))
}
