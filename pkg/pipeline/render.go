package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/tapestry/pkg/art"
	apperr "github.com/matzehuels/tapestry/pkg/errors"
	tapio "github.com/matzehuels/tapestry/pkg/io"
	"github.com/matzehuels/tapestry/pkg/render/nodelink"
)

// RenderFromPlan encodes the given formats from a preview-size plan.
// The preview image is rasterized from the plan directly; the export image
// is rendered afresh at the scaled surface so its layout matches the
// preview. Formats are produced concurrently.
func RenderFromPlan(ctx context.Context, plan *art.Plan, opts Options, formats []string) (map[string][]byte, error) {
	if plan == nil {
		return nil, fmt.Errorf("render: nil plan")
	}

	var (
		mu        sync.Mutex
		artifacts = make(map[string][]byte, len(formats))
	)
	store := func(format string, data []byte) {
		mu.Lock()
		artifacts[format] = data
		mu.Unlock()
	}

	// Build the cached engine before the goroutines share opts.
	opts.Engine()
	g, ctx := errgroup.WithContext(ctx)
	for _, format := range formats {
		g.Go(func() error {
			data, err := renderFormat(ctx, plan, &opts, format)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			store(format, data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, plan *art.Plan, opts *Options, format string) ([]byte, error) {
	switch format {
	case FormatPNG:
		return RenderPreview(plan, opts.Engine())
	case FormatExport:
		w, h := opts.ExportSize()
		return RenderImage(opts.Engine(), opts.Params, opts.Seed, w, h)
	case FormatJSON:
		var buf bytes.Buffer
		if err := tapio.WritePlanJSON(plan, opts.Seed, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatDOT:
		return []byte(nodelink.ToDOT(plan, nodelink.Options{Detailed: true})), nil
	case FormatSVG:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(plan, nodelink.Options{}))
	default:
		return nil, ValidateFormat(format)
	}
}

// RenderPreview rasterizes an existing plan and encodes it as PNG.
func RenderPreview(plan *art.Plan, engine *art.Engine) ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, plan.Width, plan.Height))
	if err := engine.Rasterize(img, plan); err != nil {
		return nil, err
	}
	return encodePNG(img)
}

// RenderImage renders a piece onto a fresh width x height surface and
// encodes it as PNG. Sizes beyond [apperr.MaxSurfaceSide] are rejected
// before allocation.
func RenderImage(engine *art.Engine, raw art.ArtParams, seed float64, width, height int) ([]byte, error) {
	if err := apperr.ValidateSurface(width, height); err != nil {
		return nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	if err := engine.Render(img, raw, seed); err != nil {
		return nil, err
	}
	return encodePNG(img)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := tapio.WritePNG(img, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
