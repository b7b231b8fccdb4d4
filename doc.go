// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package ttyrender implements the GPU text rendering core of a terminal
// emulator: a multi-page glyph atlas with shelf packing and a bounded
// eviction policy, and a two-pass (rectangles then glyphs) frame compositor.
//
// # Overview
//
// A [Compositor] owns the atlas texture array, shader pipelines, bind
// groups, and per-frame scratch buffers. [Compositor.Clear] records the
// next frame's clear color without submitting anything.
// [Compositor.DrawFrame] polls the atlas for a pending eviction, stages one
// frame's cells, acquires the surface, runs the rectangle pass (staged
// cell backgrounds followed by any caller-supplied rects, such as a cursor
// or selection overlay), runs the text pass if any glyphs were staged, and
// presents.
//
// # Quick start
//
//	comp, err := ttyrender.New(ttyrender.DefaultConfig(), deviceHandle, window, width, height, metrics, rasterizer)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer comp.Close()
//
//	comp.Clear(ttyrender.Black, 1)
//	comp.DrawFrame(cells, nil)
//
// # Architecture
//
//   - atlas: shelf-packing allocator (atlas.Page) and the fixed-N page array
//     with eviction policy and telemetry (atlas.Array).
//   - glyph: converts rasterized glyph bitmaps into atlas-resident Glyph
//     records, handling the miss/eviction protocol.
//   - stage: accepts the per-frame cell stream and appends vertex data to
//     FrameScratch buffers.
//   - gpu: device/texture/pipeline/surface plumbing atop gogpu/wgpu and
//     gogpu/naga.
//
// # Coordinate system
//
// Normalized device coordinates place the origin at the top-left: pixel
// (0, 0) maps to NDC (-1, +1), and pixel (W, H) maps to (+1, -1).
//
// # Concurrency
//
// A Compositor is single-threaded cooperative: no method is safe to call
// concurrently with another. All mutation happens on the thread that owns
// the window and GPU context, matching the render loop's own threading
// model.
package ttyrender
