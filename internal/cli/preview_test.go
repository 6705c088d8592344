package cli

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/tapestry/pkg/art"
)

func newTestPreview(save func(float64) (string, error)) PreviewModel {
	raw := art.ArtParams{GridType: "hierarchical", Colors: []string{"#264653", "#e9c46a"}}
	return NewPreviewModel(art.New(), raw, 0.5, save)
}

func TestHalfBlocks(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 5))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})

	out := halfBlocks(img)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3 (two pixel rows per line)", len(lines))
	}
	if n := strings.Count(out, halfBlock); n != 9 {
		t.Errorf("got %d half blocks, want 9", n)
	}
}

func TestPreviewModelFrame(t *testing.T) {
	m := newTestPreview(nil)
	if n := strings.Count(m.frame, halfBlock); n != defaultPreviewCols*defaultPreviewRows {
		t.Errorf("frame has %d cells, want %d", n, defaultPreviewCols*defaultPreviewRows)
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 20, Height: 14})
	m = next.(PreviewModel)
	if m.Cols != 20 || m.Rows != 10 {
		t.Fatalf("size = %dx%d, want 20x10", m.Cols, m.Rows)
	}
	if n := strings.Count(m.frame, halfBlock); n != 200 {
		t.Errorf("resized frame has %d cells, want 200", n)
	}
	if !strings.Contains(m.View(), "seed 0.500000") {
		t.Errorf("view should show the seed:\n%s", m.View())
	}
}

func TestPreviewModelReseed(t *testing.T) {
	m := newTestPreview(nil)
	m.seeds = func() float64 { return 0.125 }

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = next.(PreviewModel)
	if cmd != nil {
		t.Error("reseed should not return a command")
	}
	if m.Seed != 0.125 {
		t.Errorf("seed = %g, want 0.125", m.Seed)
	}
	if !strings.Contains(m.View(), "seed 0.125000") {
		t.Errorf("view should show the new seed:\n%s", m.View())
	}
}

func TestPreviewModelSave(t *testing.T) {
	var saved float64
	m := newTestPreview(func(seed float64) (string, error) {
		saved = seed
		return "piece_0.500000.png", nil
	})

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if cmd == nil {
		t.Fatal("save should return a command")
	}
	msg := cmd()
	if saved != 0.5 {
		t.Errorf("saved seed = %g, want 0.5", saved)
	}

	next, _ = next.Update(msg)
	if status := next.(PreviewModel).Status; !strings.Contains(status, "piece_0.500000.png") {
		t.Errorf("status = %q, want the saved path", status)
	}

	next, _ = next.Update(savedMsg{err: errors.New("disk full")})
	if status := next.(PreviewModel).Status; !strings.Contains(status, "disk full") {
		t.Errorf("status = %q, want the error", status)
	}
}

func TestPreviewModelQuit(t *testing.T) {
	m := newTestPreview(nil)
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("%s should quit", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s should return tea.Quit", key)
		}
	}
}

func TestFormatSeed(t *testing.T) {
	if got := formatSeed(0.25); got != "0.250000" {
		t.Errorf("formatSeed(0.25) = %q", got)
	}
}
