package gallery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/matzehuels/tapestry/pkg/errors"
	tapio "github.com/matzehuels/tapestry/pkg/io"
)

func fixedSeed(v float64) SeedSource {
	return func() float64 { return v }
}

func testDesign() Design {
	d, _ := DecodeDesign(strings.NewReader(`{
		"title": "Midnight Static",
		"description": "Blue on blue.",
		"params": {"grid_type": "hierarchical", "colors": ["navy", "#fff"]}
	}`), tapio.FormatJSON)
	return d
}

func TestDecodeDesign(t *testing.T) {
	d := testDesign()
	assert.Equal(t, "Midnight Static", d.Title)
	assert.Equal(t, "Blue on blue.", d.Description)
	assert.Equal(t, "hierarchical", d.Params.GridType)
	assert.Equal(t, []string{"navy", "#fff"}, d.Params.Colors)
}

func TestDecodeDesignTOML(t *testing.T) {
	src := `
title = "Tide Lines"

[params]
pattern_type = "alternating_triangles"
grid_cols = 4
`
	d, err := DecodeDesign(strings.NewReader(src), tapio.FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, "Tide Lines", d.Title)
	assert.Equal(t, "alternating_triangles", d.Params.PatternType)
	require.NotNil(t, d.Params.GridCols)
	assert.Equal(t, 4.0, *d.Params.GridCols)
}

func TestDecodeDesignRequiresTitle(t *testing.T) {
	_, err := DecodeDesign(strings.NewReader(`{"params": {}}`), tapio.FormatJSON)
	assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidInput), "got %v", err)
}

func TestNewPiece(t *testing.T) {
	p, err := NewPiece(testDesign(), " ana ", fixedSeed(0.25))
	require.NoError(t, err)

	assert.NoError(t, apperr.ValidatePieceID(p.ID))
	assert.Equal(t, 0.25, p.Seed)
	assert.Equal(t, "ana", p.Owner)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, testDesign(), p.Design())
}

func TestNewPieceDefaultSeed(t *testing.T) {
	p, err := NewPiece(testDesign(), "", nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p.Seed, 0.0)
	assert.Less(t, p.Seed, 1.0)
}

func TestNewPieceRejectsBadSeed(t *testing.T) {
	_, err := NewPiece(testDesign(), "", fixedSeed(1))
	assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidSeed), "got %v", err)
}

func TestExportFilename(t *testing.T) {
	tests := []struct {
		title, owner, want string
	}{
		{"Midnight Static", "ana", "midnight_static_by_ana.png"},
		{"Two  Spaces", "bo", "two__spaces_by_bo.png"},
		{"Tab\tTitle", "", "tab_title.png"},
		{"ÉCLAT", "x", "éclat_by_x.png"},
		{"Quiet Orbit", "../../../tmp/evil", "quiet_orbit_by_.._.._.._tmp_evil.png"},
		{"Quiet Orbit", `..\evil`, "quiet_orbit_by_.._evil.png"},
		{"a/b", "c\x00d", "a_b_by_c_d.png"},
	}
	for _, tt := range tests {
		got := ExportFilename(tt.title, tt.owner)
		assert.Equal(t, tt.want, got, "ExportFilename(%q, %q)", tt.title, tt.owner)
		assert.Equal(t, got, filepath.Base(got), "a single path element")
	}
}

func TestNewPieceRejectsBadOwner(t *testing.T) {
	for _, owner := range []string{"../../../tmp/evil", `a\b`, "a\nb", strings.Repeat("o", 101)} {
		_, err := NewPiece(testDesign(), owner, fixedSeed(0.5))
		assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidInput), "owner %q: got %v", owner, err)
	}
}

func newFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	p, err := NewPiece(testDesign(), "ana", fixedSeed(0.5))
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, p))

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Title, got.Title)
	assert.Equal(t, p.Seed, got.Seed)
	assert.Equal(t, p.Params, got.Params)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))
}

func TestFileStoreMissing(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)
	id := "00000000-0000-4000-8000-000000000000"

	_, err := s.Get(ctx, id)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, apperr.Is(err, apperr.ErrCodePieceNotFound))

	err = s.Delete(ctx, id)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFileStoreRejectsBadID(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	_, err := s.Get(ctx, "../../etc/passwd")
	assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidInput))

	err = s.Put(ctx, &Piece{ID: "nope"})
	assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidInput))
}

func TestFileStoreList(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []string
	for i, owner := range []string{"ana", "bo", "ana"} {
		p, err := NewPiece(testDesign(), owner, fixedSeed(0.1))
		require.NoError(t, err)
		p.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, s.Put(ctx, p))
		ids = append(ids, p.ID)
	}
	// Stray files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(s.Path(), "notes.txt"), []byte("x"), 0600))

	all, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID, "newest first")
	assert.Equal(t, ids[0], all[2].ID)

	mine, err := s.List(ctx, ListOptions{Owner: "ana"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	limited, err := s.List(ctx, ListOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, ids[2], limited[0].ID)
}

func TestFileStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	p, err := NewPiece(testDesign(), "", fixedSeed(0.3))
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, p))
	require.NoError(t, s.Delete(ctx, p.ID))

	_, err = s.Get(ctx, p.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

// TestMongoStore runs against a live server when TAPESTRY_TEST_MONGO_URI
// is set.
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("TAPESTRY_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TAPESTRY_TEST_MONGO_URI not set")
	}
	ctx := context.Background()

	s, err := NewMongoStore(ctx, MongoOptions{URI: uri, Collection: "pieces_test"})
	require.NoError(t, err)
	defer s.Close()

	p, err := NewPiece(testDesign(), "mongo-test", fixedSeed(0.75))
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, p))
	defer s.Delete(ctx, p.ID)

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Seed, got.Seed)
	assert.Equal(t, p.Params.Colors, got.Params.Colors)

	list, err := s.List(ctx, ListOptions{Owner: "mongo-test"})
	require.NoError(t, err)
	assert.NotEmpty(t, list)
}

func TestNewMongoStoreRequiresURI(t *testing.T) {
	_, err := NewMongoStore(context.Background(), MongoOptions{})
	assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidInput))
}
