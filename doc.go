// Package deferred renders 3D scenes with a software deferred-shading
// pipeline.
//
// # Overview
//
// A frame is rendered in passes. The geometry pass rasterizes mesh
// instances into a G-buffer holding, per pixel, albedo and emission, a
// compressed eye-space normal, specular color and exponent, and
// logarithmically encoded depth. Light passes then rebuild each pixel's
// eye-space surface from the G-buffer and accumulate every light's
// diffuse and specular contribution. Post-process filters run last.
//
//	r, err := deferred.New(640, 480)
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//
//	frame := &deferred.Frame{
//		Camera:    deferred.NewCamera(eye, target, up, fovy, aspect, 0.1, 100),
//		Instances: []geometry.Instance{{Mesh: geometry.Cube(1), Model: mgl32.Ident4()}},
//		Lights:    []light.Light{light.NewDirectional(dir, white, 1)},
//	}
//	res, err := r.Render(ctx, frame)
//
// # Coordinates
//
// Eye space looks down -Z. Textures written by the pipeline use window
// coordinates with row 0 at the bottom of the screen; [Result.Image]
// flips them for export.
//
// # Subpackages
//
//   - depth, normal: the per-fragment codecs
//   - gbuffer: the G-buffer layout, writer and reader
//   - viewray, reconstruct: eye-space surface reconstruction
//   - geometry: meshes, materials and the geometry pass
//   - light, shadow: light models and variance shadow maps
//   - filter: blur, FXAA, fog, emission glow, SSAO and light application
//   - shaders: WGSL versions of the codecs for GPU renderers
//   - config: TOML scene files
package deferred
