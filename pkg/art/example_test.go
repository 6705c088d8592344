package art_test

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/matzehuels/tapestry/pkg/art"
)

func ExampleNormalize() {
	// Parameters as a generative model might return them.
	p := art.Normalize(art.ArtParams{
		GridType:         " Hierarchical ",
		PatternType:      "geometric-shapes",
		ColorApplication: "rainbow",
		Colors:           []string{"#f00", "teal", "not-a-color"},
		LineSharpness:    art.Num(1.7),
	})

	fmt.Println(p.Grid, p.Pattern, p.Variation, p.ColorMode)
	for _, c := range p.Palette {
		fmt.Println(art.Hex(c))
	}
	fmt.Println(p.Sharpness)
	// Output:
	// hierarchical geometric_shapes none alternating_fixed
	// #FF0000
	// #008080
	// #000000
	// 1
}

func ExampleRender() {
	raw := art.ArtParams{
		GridType:         "uniform",
		GridCols:         art.Num(3),
		GridRows:         art.Num(3),
		PatternType:      "solid_blocks",
		ColorApplication: "alternating_fixed",
		Colors:           []string{"#FF0000", "#00FF00", "#0000FF"},
	}

	img := image.NewRGBA(image.Rect(0, 0, 300, 300))
	if err := art.Render(img, raw, 0.42); err != nil {
		fmt.Println(err)
		return
	}
	for y := 50; y < 300; y += 100 {
		var row []string
		for x := 50; x < 300; x += 100 {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			row = append(row, art.Hex(c))
		}
		fmt.Println(strings.Join(row, " "))
	}
	// Output:
	// #FF0000 #00FF00 #0000FF
	// #FF0000 #00FF00 #0000FF
	// #FF0000 #00FF00 #0000FF
}

func ExampleEngine_Plan() {
	e := art.New()
	plan, err := e.Plan(art.ArtParams{GridCols: art.Num(2), GridRows: art.Num(1)}, 0.5, 200, 100)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, c := range plan.Cells {
		fmt.Println(c.Index, c.Pixels, art.Hex(c.Colors.Primary))
	}
	fmt.Println("draws:", plan.Draws)
	// Output:
	// 0 (0,0)-(100,100) #000000
	// 1 (100,0)-(200,100) #000000
	// draws: 0
}
