package ttyrender

import (
	"encoding/binary"
	"math"
)

// Projection is the screen projection uniform shared by both render passes:
// it maps pixel-space vertex positions straight to clip space with a
// top-left origin, matching the terminal grid's coordinate system.
//
// For (x, y) = (0, 0) this maps to (-1, +1); for (x, y) = (W, H) it maps to
// (+1, -1).
type Projection struct {
	OffsetX, OffsetY float32
	ScaleX, ScaleY   float32
}

// NewProjection computes the projection uniform for a surface of size
// width x height pixels.
func NewProjection(width, height uint32) Projection {
	return Projection{
		OffsetX: -1,
		OffsetY: 1,
		ScaleX:  2 / float32(width),
		ScaleY:  -2 / float32(height),
	}
}

// Bytes serializes the uniform to the 16-byte little-endian layout the
// shaders' `Projection` struct expects: offset_x, offset_y, scale_x, scale_y.
func (p Projection) Bytes() [16]byte {
	var buf [16]byte
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(p.OffsetX))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(p.OffsetY))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(p.ScaleX))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(p.ScaleY))
	return buf
}
