// Package shaders carries WGSL versions of the pipeline's per-fragment
// codecs so that GPU renderers can produce G-buffers and light terms that
// match the software passes bit for bit.
//
// Each source defines its helper functions plus a fs_main fragment entry
// point exercising them. Sources compile to SPIR-V or GLSL through naga.
package shaders

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"
)

// ErrUnknownFragment is returned for a name that has no embedded source.
var ErrUnknownFragment = errors.New("shaders: unknown fragment")

// EntryPoint is the fragment entry point every source defines.
const EntryPoint = "fs_main"

//go:embed wgsl/*.wgsl
var sources embed.FS

// Fragment names.
const (
	LogDepth    = "logdepth"
	Normals     = "normals"
	GBuffer     = "gbuffer"
	VSM         = "vsm"
	Attenuation = "attenuation"
)

// Names lists the embedded fragments in sorted order.
func Names() []string {
	entries, err := sources.ReadDir("wgsl")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".wgsl"))
	}
	slices.Sort(names)
	return names
}

// Source returns the WGSL source of the named fragment.
func Source(name string) (string, error) {
	b, err := sources.ReadFile(path.Join("wgsl", name+".wgsl"))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownFragment, name)
	}
	return string(b), nil
}

// Compile translates the named fragment to SPIR-V.
func Compile(name string) ([]byte, error) {
	src, err := Source(name)
	if err != nil {
		return nil, err
	}
	spirv, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("shaders: compile %s: %w", name, err)
	}
	return spirv, nil
}

// CompileGLSL translates the named fragment to GLSL 3.30.
func CompileGLSL(name string) (string, error) {
	src, err := Source(name)
	if err != nil {
		return "", err
	}
	ast, err := naga.Parse(src)
	if err != nil {
		return "", fmt.Errorf("shaders: parse %s: %w", name, err)
	}
	module, err := naga.LowerWithSource(ast, src)
	if err != nil {
		return "", fmt.Errorf("shaders: lower %s: %w", name, err)
	}
	opts := glsl.DefaultOptions()
	opts.EntryPoint = EntryPoint
	out, _, err := glsl.Compile(module, opts)
	if err != nil {
		return "", fmt.Errorf("shaders: glsl %s: %w", name, err)
	}
	return out, nil
}
