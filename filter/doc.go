// Package filter implements the screen-space passes that run after
// lighting: blurs, FXAA, depth fog, emission glow, ambient occlusion and
// the applicators that combine light buffers with the G-buffer.
//
// Filters operate on float textures in linear light. Every pass is split
// into rows or tiles and scheduled on an internal worker pool; a filter
// never writes a pixel another work item reads in the same pass.
//
// Performance targets (1080p, 8 workers):
//   - Box blur (r=4): <10ms
//   - Bilateral blur (r=4, 1 pass): <25ms
//   - FXAA: <15ms
package filter
