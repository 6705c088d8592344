package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/tapestry/pkg/gallery"
)

const testDesign = `
title = "Quiet Orbit"
description = "Slow circles on a dark field"

[params]
grid_type = "hierarchical"
pattern_type = "geometric_shapes"
colors = ["#264653", "#e9c46a"]
`

func TestGalleryCommands(t *testing.T) {
	c, out, root := testEnv(t)
	design := writeFile(t, root, "orbit.toml", testDesign)

	require.NoError(t, run(t, c, "gallery", "add", design, "--owner", "ana", "--seed", "0.375"))

	store, err := gallery.NewFileStore(filepath.Join(root, "config", "tapestry", "gallery"))
	require.NoError(t, err)
	pieces, err := store.List(context.Background(), gallery.ListOptions{})
	require.NoError(t, err)
	require.Len(t, pieces, 1)
	p := pieces[0]
	assert.Equal(t, "Quiet Orbit", p.Title)
	assert.Equal(t, "ana", p.Owner)
	assert.Equal(t, 0.375, p.Seed)

	out.Reset()
	require.NoError(t, run(t, c, "gallery", "list"))
	assert.Contains(t, out.String(), "Quiet Orbit")
	assert.Contains(t, out.String(), p.ID[:8])

	outDir := filepath.Join(root, "exports")
	require.NoError(t, os.Mkdir(outDir, 0o755))
	writeFile(t, root, "small.toml", "[render]\nwidth = 30\nheight = 20\nscale = 2\n")
	require.NoError(t, run(t, c, "--config", filepath.Join(root, "small.toml"), "gallery", "render", p.ID, "-o", outDir))
	w, h := decodePNGSize(t, filepath.Join(outDir, "quiet_orbit_by_ana.png"))
	assert.Equal(t, 60, w)
	assert.Equal(t, 40, h)

	require.NoError(t, run(t, c, "gallery", "show", p.ID))
	require.NoError(t, run(t, c, "gallery", "rm", p.ID))
	err = run(t, c, "gallery", "show", p.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, gallery.ErrNotFound)
}

func TestGalleryAddDefaultOwner(t *testing.T) {
	c, _, root := testEnv(t)
	design := writeFile(t, root, "orbit.toml", testDesign)
	cfg := writeFile(t, root, "owner.toml", "[gallery]\nowner = \"studio\"\n")

	require.NoError(t, run(t, c, "--config", cfg, "gallery", "add", design))

	store, err := gallery.NewFileStore(filepath.Join(root, "config", "tapestry", "gallery"))
	require.NoError(t, err)
	pieces, err := store.List(context.Background(), gallery.ListOptions{})
	require.NoError(t, err)
	require.Len(t, pieces, 1)
	assert.Equal(t, "studio", pieces[0].Owner)
	assert.True(t, pieces[0].Seed >= 0 && pieces[0].Seed < 1)
}

func TestGalleryAddRequiresTitle(t *testing.T) {
	c, _, root := testEnv(t)
	design := writeFile(t, root, "untitled.json", `{"params": {"grid_type": "uniform"}}`)
	assert.Error(t, run(t, c, "gallery", "add", design))
}

func TestPiecesTable(t *testing.T) {
	p := &gallery.Piece{ID: "0f8fad5b-d9cb-469f-a165-70867728950e", Title: "Dawn", Seed: 0.5, CreatedAt: time.Now()}
	out := piecesTable([]*gallery.Piece{p})
	for _, want := range []string{"0f8fad5b", "Dawn", "0.500000", "just now", "—"} {
		assert.True(t, strings.Contains(out, want), "table should contain %q:\n%s", want, out)
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Now()
	tests := []struct {
		t    time.Time
		want string
	}{
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-50 * time.Hour), "2d ago"},
		{time.Date(2020, 3, 4, 0, 0, 0, 0, time.UTC), "2020-03-04"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatAge(tt.t))
	}
}
