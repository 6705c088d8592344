package cli

import (
	"fmt"
	"image"
	"math/rand/v2"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tapestry/pkg/art"
	tapio "github.com/matzehuels/tapestry/pkg/io"
	"github.com/matzehuels/tapestry/pkg/pipeline"
)

const (
	halfBlock           = "▀"
	defaultPreviewCols  = 64
	defaultPreviewRows  = 24
	previewChromeHeight = 4 // title, blank, blank, status
)

// =============================================================================
// PreviewModel - Interactive terminal preview
// =============================================================================

// savedMsg reports the result of a save.
type savedMsg struct {
	path string
	err  error
}

// PreviewModel shows a piece in the terminal using half blocks, two
// pixels per character cell. Pressing r draws a new seed; s saves the
// current seed as a full-size export.
type PreviewModel struct {
	Params art.ArtParams
	Seed   float64
	Cols   int
	Rows   int
	Status string

	engine *art.Engine
	frame  string
	seeds  func() float64
	save   func(seed float64) (string, error)
}

// NewPreviewModel creates a preview model with an initial frame.
func NewPreviewModel(engine *art.Engine, params art.ArtParams, seed float64, save func(float64) (string, error)) PreviewModel {
	m := PreviewModel{
		Params: params,
		Seed:   seed,
		Cols:   defaultPreviewCols,
		Rows:   defaultPreviewRows,
		engine: engine,
		seeds:  rand.Float64,
		save:   save,
	}
	m.redraw()
	return m
}

func (m PreviewModel) Init() tea.Cmd {
	return nil
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r", " ":
			m.Seed = m.seeds()
			m.Status = ""
			m.redraw()
		case "s":
			if m.save == nil {
				return m, nil
			}
			seed, save := m.Seed, m.save
			m.Status = "saving…"
			return m, func() tea.Msg {
				path, err := save(seed)
				return savedMsg{path: path, err: err}
			}
		}
	case tea.WindowSizeMsg:
		m.Cols = max(msg.Width, 1)
		m.Rows = max(msg.Height-previewChromeHeight, 1)
		m.redraw()
	case savedMsg:
		if msg.err != nil {
			m.Status = styleIconError.Render(iconError) + " " + msg.err.Error()
		} else {
			m.Status = styleIconSuccess.Render(iconSuccess) + " saved " + msg.path
		}
	}
	return m, nil
}

func (m PreviewModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("tapestry") + " " + StyleDim.Render("seed "+formatSeed(m.Seed)))
	b.WriteString("\n")
	b.WriteString(m.frame)
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("r reseed  s save  q quit"))
	if m.Status != "" {
		b.WriteString("  " + m.Status)
	}
	return b.String()
}

func (m *PreviewModel) redraw() {
	img := image.NewNRGBA(image.Rect(0, 0, m.Cols, m.Rows*2))
	if err := m.engine.Render(img, m.Params, m.Seed); err != nil {
		m.frame = err.Error()
		return
	}
	m.frame = halfBlocks(img)
}

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// halfBlocks draws img with one character per two vertical pixels: the
// foreground carries the upper pixel and the background the lower one.
func halfBlocks(img *image.NRGBA) string {
	r := img.Bounds()
	var b strings.Builder
	for y := r.Min.Y; y < r.Max.Y; y += 2 {
		if y > r.Min.Y {
			b.WriteByte('\n')
		}
		for x := r.Min.X; x < r.Max.X; x++ {
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(art.Hex(img.NRGBAAt(x, y))))
			if y+1 < r.Max.Y {
				style = style.Background(lipgloss.Color(art.Hex(img.NRGBAAt(x, y+1))))
			}
			b.WriteString(style.Render(halfBlock))
		}
	}
	return b.String()
}

func formatSeed(seed float64) string {
	return strconv.FormatFloat(seed, 'f', 6, 64)
}

// =============================================================================
// Command
// =============================================================================

func (c *CLI) previewCommand() *cobra.Command {
	var seed float64

	cmd := &cobra.Command{
		Use:   "preview <params-file>",
		Short: "Preview a piece in the terminal and explore seeds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := tapio.ImportParams(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("seed") {
				seed = rand.Float64()
			}

			engine := art.New(art.WithPolicy(c.Config.Policy))
			m := NewPreviewModel(engine, raw, seed, c.exportSaver(engine, raw, basePath("", args[0])))
			final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
			if err != nil {
				return err
			}
			if fm, ok := final.(PreviewModel); ok {
				printInfo("Last seed %s", formatSeed(fm.Seed))
				printNextStep("Render it", fmt.Sprintf("tapestry render %s --seed %s", args[0], formatSeed(fm.Seed)))
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&seed, "seed", 0, "initial seed in [0, 1) (default random)")

	return cmd
}

// exportSaver writes full-size exports named base_<seed>.png.
func (c *CLI) exportSaver(engine *art.Engine, raw art.ArtParams, base string) func(float64) (string, error) {
	return func(seed float64) (string, error) {
		opts := pipeline.Options{Width: c.Config.Render.Width, Height: c.Config.Render.Height, Scale: c.Config.Render.Scale}
		opts.SetRenderDefaults()
		w, h := opts.ExportSize()
		data, err := pipeline.RenderImage(engine, raw, seed, w, h)
		if err != nil {
			return "", err
		}
		path := fmt.Sprintf("%s_%s.png", base, formatSeed(seed))
		return path, tapio.ExportFile(path, data)
	}
}
