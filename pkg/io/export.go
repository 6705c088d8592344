package io

import (
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/tapestry/pkg/art"
)

// PlanDocument is the JSON form of a render plan.
type PlanDocument struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Seed   float64    `json:"seed"`
	Params art.Params `json:"params"`
	Grid   string     `json:"grid"`
	Cols   int        `json:"cols,omitempty"`
	Rows   int        `json:"rows,omitempty"`
	Draws  int        `json:"draws"`
	Cells  []Cell     `json:"cells"`
	Nodes  []Node     `json:"nodes,omitempty"`
}

// Cell is one planned cell. Rect is in normalized [0,1] coordinates as
// [x0, y0, x1, y1]; Pixels is the integer rectangle on the plan surface.
type Cell struct {
	Index       int        `json:"index"`
	Depth       int        `json:"depth"`
	Parent      int        `json:"parent"`
	Rect        [4]float64 `json:"rect"`
	Pixels      [4]int     `json:"pixels"`
	Primary     string     `json:"primary"`
	Secondary   string     `json:"secondary"`
	Scale       float64    `json:"scale"`
	Angle       float64    `json:"angle,omitempty"`
	Arrangement int        `json:"arrangement,omitempty"`
	Shapes      int        `json:"shapes"`
}

// Node is one node of a hierarchical subdivision.
type Node struct {
	Rect   [4]float64 `json:"rect"`
	Depth  int        `json:"depth"`
	Parent int        `json:"parent"`
	Split  string     `json:"split"`
	Cell   int        `json:"cell"`
}

// NewPlanDocument converts a plan for export.
func NewPlanDocument(plan *art.Plan, seed float64) PlanDocument {
	doc := PlanDocument{
		Width:  plan.Width,
		Height: plan.Height,
		Seed:   seed,
		Params: plan.Params,
		Grid:   string(plan.Grid.Kind),
		Cols:   plan.Grid.Cols,
		Rows:   plan.Grid.Rows,
		Draws:  plan.Draws,
		Cells:  make([]Cell, len(plan.Cells)),
	}
	for i, cp := range plan.Cells {
		doc.Cells[i] = Cell{
			Index:       cp.Index,
			Depth:       cp.Depth,
			Parent:      cp.Parent,
			Rect:        rect(cp.Rect),
			Pixels:      [4]int{cp.Pixels.Min.X, cp.Pixels.Min.Y, cp.Pixels.Max.X, cp.Pixels.Max.Y},
			Primary:     art.Hex(cp.Colors.Primary),
			Secondary:   art.Hex(cp.Colors.Secondary),
			Scale:       cp.Variant.Scale,
			Angle:       cp.Variant.Angle,
			Arrangement: cp.Variant.Arrangement,
			Shapes:      len(cp.Shapes),
		}
	}
	for _, n := range plan.Grid.Nodes {
		doc.Nodes = append(doc.Nodes, Node{
			Rect:   rect(n.Rect),
			Depth:  n.Depth,
			Parent: n.Parent,
			Split:  n.Split.String(),
			Cell:   n.Cell,
		})
	}
	return doc
}

func rect(r art.Rect) [4]float64 {
	return [4]float64{r.X0, r.Y0, r.X1, r.Y1}
}

// WritePlanJSON encodes a plan as indented JSON and writes it to w.
func WritePlanJSON(plan *art.Plan, seed float64, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewPlanDocument(plan, seed)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteParams writes p in its canonical form. Reading the output back
// and normalizing it yields p again.
func WriteParams(p art.Params, format string, w io.Writer) error {
	raw := p.Raw()
	var err error
	switch format {
	case FormatTOML:
		err = toml.NewEncoder(w).Encode(raw)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(raw); err == nil {
			err = enc.Close()
		}
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(raw)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return nil
}

// WritePNG encodes img as PNG.
func WritePNG(img image.Image, w io.Writer) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// ExportFile writes data to path, creating or truncating it.
func ExportFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
