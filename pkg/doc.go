// Package pkg provides the core libraries for Tapestry generative art.
//
// # Overview
//
// Tapestry turns a small parameter record (grid, pattern, variation, color
// strategy, palette, line sharpness) and a seed in [0, 1) into a piece of
// abstract art. The same record and seed always produce the same piece,
// at any resolution.
//
// # Architecture
//
// The data flow through Tapestry:
//
//	Parameter record (JSON, TOML, YAML)
//	         ↓
//	    [io] package (lenient decoding)
//	         ↓
//	    [art] package (normalize → grid → colors → patterns → raster)
//	         ↓
//	    [pipeline] package (formats, caching, hooks)
//	         ↓
//	    PNG / plan JSON / Graphviz split tree
//
// # Quick Start
//
//	img := image.NewNRGBA(image.Rect(0, 0, 800, 800))
//	err := art.Render(img, art.ArtParams{
//	    GridType:    "hierarchical",
//	    PatternType: "geometric_shapes",
//	    Colors:      []string{"#264653", "#2a9d8f", "#e9c46a"},
//	}, 0.42)
//
// # Main Packages
//
// [art] - The engine: seeded generator, normalizer, grid builder, color
// resolver, pattern renderer and rasterizer.
//
// [pipeline] - One render request end to end: validation, planning,
// parallel encoding of every requested format, and caching.
//
// [io] - Decoding parameter documents and encoding plans and images.
//
// [cache] - File, Redis and null caches with content-addressed keys.
//
// [gallery] - Pieces (titled designs with a fixed seed) in a file or
// MongoDB store.
//
// [render/nodelink] - The subdivision tree as a Graphviz diagram.
//
// [errors] - Coded errors and input validation shared by the CLI and API.
//
// [observability] - Hooks for metrics and tracing.
//
// [art]: https://pkg.go.dev/github.com/matzehuels/tapestry/pkg/art
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/tapestry/pkg/pipeline
// [io]: https://pkg.go.dev/github.com/matzehuels/tapestry/pkg/io
// [cache]: https://pkg.go.dev/github.com/matzehuels/tapestry/pkg/cache
// [gallery]: https://pkg.go.dev/github.com/matzehuels/tapestry/pkg/gallery
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/tapestry/pkg/render/nodelink
// [errors]: https://pkg.go.dev/github.com/matzehuels/tapestry/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/tapestry/pkg/observability
package pkg
