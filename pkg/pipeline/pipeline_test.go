package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/tapestry/pkg/art"
	"github.com/matzehuels/tapestry/pkg/cache"
	apperr "github.com/matzehuels/tapestry/pkg/errors"
)

// memCache is an in-memory cache that counts operations.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	sets int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

var _ cache.Cache = (*memCache)(nil)

func testParams() art.ArtParams {
	return art.ArtParams{
		GridType:         "hierarchical",
		PatternType:      "alternating_triangles",
		PatternVariation: "randomized_orientation",
		Colors:           []string{"#1d3557", "#e63946", "#f1faee"},
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"png", false},
		{"export", false},
		{"json", false},
		{"dot", false},
		{"svg", false},
		{"pdf", true},
		{"PNG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !apperr.Is(err, apperr.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s, want %s", tt.format, apperr.GetCode(err), apperr.ErrCodeInvalidFormat)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"png", "json"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"png", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestParseFormats(t *testing.T) {
	got := ParseFormats(" PNG, json,,export ")
	want := []string{"png", "json", "export"}
	if len(got) != len(want) {
		t.Fatalf("ParseFormats() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ParseFormats()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("size should be %dx%d, got %dx%d", DefaultWidth, DefaultHeight, opts.Width, opts.Height)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale should be %g, got %g", DefaultScale, opts.Scale)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatPNG {
		t.Errorf("Formats should be [png], got %v", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger should be set")
	}
}

func TestOptionsValidateForRender(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code apperr.Code
	}{
		{"defaults", Options{}, ""},
		{"seed out of range", Options{Seed: 1}, apperr.ErrCodeInvalidSeed},
		{"negative width", Options{Width: -1, Height: 10}, apperr.ErrCodeInvalidSurface},
		{"huge surface", Options{Width: 100000, Height: 10}, apperr.ErrCodeInvalidSurface},
		{"negative scale", Options{Scale: -2}, apperr.ErrCodeInvalidScale},
		{"export too large", Options{Width: 8000, Height: 10, Scale: 4, Formats: []string{FormatExport}}, apperr.ErrCodeInvalidScale},
		{"scale only matters for export", Options{Width: 8000, Height: 10, Scale: 4}, ""},
		{"bad format", Options{Formats: []string{"gif"}}, apperr.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForRender()
			if tt.code == "" {
				if err != nil {
					t.Fatalf("ValidateForRender() error = %v", err)
				}
				return
			}
			if !apperr.Is(err, tt.code) {
				t.Errorf("ValidateForRender() code = %s, want %s (err %v)", apperr.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Params: testParams(), Seed: 0.3}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	width, formats := opts.Width, opts.Formats

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.Width != width {
		t.Error("Width changed on second call")
	}
	if len(opts.Formats) != len(formats) {
		t.Error("Formats changed on second call")
	}
}

func TestExportSize(t *testing.T) {
	opts := Options{Width: 301, Height: 200, Scale: 1.5}
	w, h := opts.ExportSize()
	if w != 452 || h != 300 {
		t.Errorf("ExportSize() = %dx%d, want 452x300", w, h)
	}
}

func TestParamsHash(t *testing.T) {
	a := Options{Params: art.ArtParams{PatternType: "SOLID_BLOCKS"}}
	b := Options{Params: art.ArtParams{PatternType: "solid_blocks", GridType: "uniform"}}
	c := Options{Params: art.ArtParams{PatternType: "alternating_triangles"}}

	if a.ParamsHash() != b.ParamsHash() {
		t.Error("params that normalize alike should hash alike")
	}
	if a.ParamsHash() == c.ParamsHash() {
		t.Error("different params should hash differently")
	}
}

func TestArtifactKeyOptsScale(t *testing.T) {
	opts := Options{Width: 10, Height: 10, Scale: 3}
	if got := opts.ArtifactKeyOpts(FormatPNG).Scale; got != 0 {
		t.Errorf("png key should ignore scale, got %g", got)
	}
	if got := opts.ArtifactKeyOpts(FormatExport).Scale; got != 3 {
		t.Errorf("export key scale = %g, want 3", got)
	}
}

func TestRunnerExecute(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	result, err := runner.Execute(context.Background(), Options{
		Params:  testParams(),
		Seed:    0.42,
		Width:   120,
		Height:  80,
		Scale:   2,
		Formats: []string{FormatPNG, FormatExport, FormatJSON, FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if result.Stats.CellCount != len(result.Plan.Cells) || result.Stats.CellCount == 0 {
		t.Errorf("CellCount = %d, plan has %d cells", result.Stats.CellCount, len(result.Plan.Cells))
	}
	if result.Stats.Draws != result.Plan.Draws {
		t.Errorf("Draws = %d, want %d", result.Stats.Draws, result.Plan.Draws)
	}

	preview, err := png.Decode(bytes.NewReader(result.Artifacts[FormatPNG]))
	if err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if b := preview.Bounds(); b.Dx() != 120 || b.Dy() != 80 {
		t.Errorf("preview size = %v, want 120x80", b)
	}

	export, err := png.Decode(bytes.NewReader(result.Artifacts[FormatExport]))
	if err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if b := export.Bounds(); b.Dx() != 240 || b.Dy() != 160 {
		t.Errorf("export size = %v, want 240x160", b)
	}

	var doc map[string]any
	if err := json.Unmarshal(result.Artifacts[FormatJSON], &doc); err != nil {
		t.Fatalf("decode plan json: %v", err)
	}
	if doc["seed"] != 0.42 {
		t.Errorf("plan seed = %v, want 0.42", doc["seed"])
	}
	if !bytes.HasPrefix(result.Artifacts[FormatDOT], []byte("digraph G")) {
		t.Error("dot output missing digraph header")
	}
}

func TestRunnerPreviewMatchesRender(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	opts := Options{Params: testParams(), Seed: 0.7, Width: 64, Height: 48}
	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	direct, err := RenderImage(art.New(), opts.Params, opts.Seed, 64, 48)
	if err != nil {
		t.Fatalf("RenderImage() error: %v", err)
	}
	if !bytes.Equal(direct, result.Artifacts[FormatPNG]) {
		t.Error("rasterized plan should match a direct render")
	}
}

func TestRunnerCaching(t *testing.T) {
	c := newMemCache()
	runner := NewRunner(c, nil, nil)
	opts := Options{
		Params:  testParams(),
		Seed:    0.1,
		Width:   40,
		Height:  40,
		Formats: []string{FormatPNG, FormatJSON},
	}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute() error: %v", err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first run should miss the cache")
	}
	if c.sets != 2 {
		t.Errorf("cache sets = %d, want 2", c.sets)
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute() error: %v", err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit the cache")
	}
	if !bytes.Equal(first.Artifacts[FormatPNG], second.Artifacts[FormatPNG]) {
		t.Error("cached artifact differs from the rendered one")
	}
	if c.sets != 2 {
		t.Errorf("cache sets after hit = %d, want 2", c.sets)
	}

	opts.Refresh = true
	third, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("refresh Execute() error: %v", err)
	}
	if third.CacheInfo.RenderHit {
		t.Error("refresh should bypass cache reads")
	}
	if c.sets != 4 {
		t.Errorf("cache sets after refresh = %d, want 4", c.sets)
	}
}

func TestRunnerCacheSharedAcrossEquivalentParams(t *testing.T) {
	c := newMemCache()
	runner := NewRunner(c, nil, nil)
	base := Options{Seed: 0.5, Width: 30, Height: 30, Params: art.ArtParams{PatternType: "geometric"}}

	if _, err := runner.Execute(context.Background(), base); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	alias := base
	alias.Params = art.ArtParams{PatternType: "GEOMETRIC", GridType: "bogus"}
	result, err := runner.Execute(context.Background(), alias)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !result.CacheInfo.RenderHit {
		t.Error("params that normalize alike should share cache entries")
	}
}

func TestRunnerExecuteInvalid(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	_, err := runner.Execute(context.Background(), Options{Seed: -0.5})
	if !apperr.Is(err, apperr.ErrCodeInvalidSeed) {
		t.Errorf("Execute() code = %s, want %s", apperr.GetCode(err), apperr.ErrCodeInvalidSeed)
	}
}

func TestRenderImageSizeCap(t *testing.T) {
	_, err := RenderImage(art.New(), art.ArtParams{}, 0.5, apperr.MaxSurfaceSide+1, 10)
	if !apperr.Is(err, apperr.ErrCodeInvalidSurface) {
		t.Errorf("RenderImage() code = %s, want %s", apperr.GetCode(err), apperr.ErrCodeInvalidSurface)
	}

	opts := Options{Width: apperr.MaxSurfaceSide + 1, Height: 10, Seed: 0.5}
	err = opts.ValidateForRender()
	if !apperr.Is(err, apperr.ErrCodeInvalidSurface) {
		t.Errorf("ValidateForRender() code = %s, want %s", apperr.GetCode(err), apperr.ErrCodeInvalidSurface)
	}
}

func TestRenderFromPlanSVG(t *testing.T) {
	plan, err := art.New().Plan(testParams(), 0.2, 50, 50)
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	out, err := RenderFromPlan(context.Background(), plan, Options{}, []string{FormatSVG})
	if err != nil {
		t.Fatalf("RenderFromPlan() error: %v", err)
	}
	if !bytes.Contains(out[FormatSVG], []byte("<svg")) {
		t.Error("svg output missing <svg> tag")
	}
}

func TestExtensionAndContentType(t *testing.T) {
	tests := []struct {
		format, ext, mime string
	}{
		{FormatPNG, ".png", "image/png"},
		{FormatExport, ".png", "image/png"},
		{FormatJSON, ".json", "application/json"},
		{FormatSVG, ".svg", "image/svg+xml"},
		{FormatDOT, ".dot", "text/vnd.graphviz"},
	}
	for _, tt := range tests {
		if got := Extension(tt.format); got != tt.ext {
			t.Errorf("Extension(%q) = %q, want %q", tt.format, got, tt.ext)
		}
		if got := ContentType(tt.format); got != tt.mime {
			t.Errorf("ContentType(%q) = %q, want %q", tt.format, got, tt.mime)
		}
	}
}
