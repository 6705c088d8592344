// Package gallery stores art pieces.
//
// A piece is a design produced by the generative model (title,
// description and parameter record) together with the seed chosen when the
// piece was created. The seed never changes afterwards, so every render of
// a piece, at any size, shows the same artwork.
//
// Backends implement [Store]:
//   - [FileStore]: one JSON file per piece, for the CLI
//   - [MongoStore]: a MongoDB collection, for the HTTP server
//
// # Usage
//
//	design, err := gallery.DecodeDesign(r, io.FormatJSON)
//	piece, err := gallery.NewPiece(design, "ana", nil)
//	err = store.Put(ctx, piece)
//
// Render a stored piece through the pipeline with piece.Params and
// piece.Seed.
package gallery

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/matzehuels/tapestry/pkg/art"
	apperr "github.com/matzehuels/tapestry/pkg/errors"
	tapio "github.com/matzehuels/tapestry/pkg/io"
)

// ErrNotFound is returned when a piece does not exist. The returned error
// also carries [apperr.ErrCodePieceNotFound].
var ErrNotFound = errors.New("piece not found")

// Design is the record returned by the generative model.
type Design struct {
	Title       string        `json:"title" toml:"title" yaml:"title"`
	Description string        `json:"description" toml:"description" yaml:"description"`
	Params      art.ArtParams `json:"params" toml:"params" yaml:"params"`
}

// DecodeDesign reads a design document in the given format (see
// [tapio.FormatJSON]). Parameter fields are decoded leniently; the title is
// required.
func DecodeDesign(r io.Reader, format string) (Design, error) {
	m, err := tapio.ReadDocument(r, format)
	if err != nil {
		return Design{}, err
	}
	d := Design{
		Title:       stringField(m, "title"),
		Description: stringField(m, "description"),
		Params:      tapio.ParamsFromDocument(m),
	}
	if err := apperr.ValidateTitle(d.Title); err != nil {
		return Design{}, err
	}
	return d, nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

// Piece is a stored design with its fixed seed.
type Piece struct {
	ID          string        `json:"id" bson:"_id"`
	Title       string        `json:"title" bson:"title"`
	Description string        `json:"description,omitempty" bson:"description,omitempty"`
	Params      art.ArtParams `json:"params" bson:"params"`
	Seed        float64       `json:"seed" bson:"seed"`
	Owner       string        `json:"owner,omitempty" bson:"owner,omitempty"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
}

// SeedSource returns values in [0, 1).
type SeedSource func() float64

// NewPiece creates a piece from a design, drawing its seed once from seed.
// A nil seed source uses math/rand/v2.
func NewPiece(d Design, owner string, seed SeedSource) (*Piece, error) {
	if err := apperr.ValidateTitle(d.Title); err != nil {
		return nil, err
	}
	owner = strings.TrimSpace(owner)
	if err := apperr.ValidateOwner(owner); err != nil {
		return nil, err
	}
	if seed == nil {
		seed = rand.Float64
	}
	s := seed()
	if err := apperr.ValidateSeed(s); err != nil {
		return nil, err
	}
	return &Piece{
		ID:          uuid.NewString(),
		Title:       d.Title,
		Description: d.Description,
		Params:      d.Params,
		Seed:        s,
		Owner:       owner,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Design returns the design the piece was created from.
func (p *Piece) Design() Design {
	return Design{Title: p.Title, Description: p.Description, Params: p.Params}
}

// ExportFilename returns the download name of a piece's export image:
// the lowercased title with every whitespace character replaced by '_',
// followed by "_by_<owner>.png". Without an owner the suffix is ".png".
// Path separators and control characters also become '_', so the result
// is always a single path element.
func (p *Piece) ExportFilename() string {
	return ExportFilename(p.Title, p.Owner)
}

// ExportFilename is [Piece.ExportFilename] for a bare title and owner.
func ExportFilename(title, owner string) string {
	name := strings.Map(fileRune, strings.ToLower(title))
	if owner != "" {
		name += "_by_" + strings.Map(fileRune, owner)
	}
	return name + ".png"
}

func fileRune(r rune) rune {
	if unicode.IsSpace(r) || unicode.IsControl(r) || r == '/' || r == '\\' {
		return '_'
	}
	return r
}

// ListOptions filters and bounds a listing.
type ListOptions struct {
	Owner string // only pieces of this owner; empty means all
	Limit int    // maximum pieces returned; 0 means no limit
}

// Store is the interface for piece storage backends.
type Store interface {
	// Put stores a piece, replacing any piece with the same ID.
	Put(ctx context.Context, p *Piece) error

	// Get returns a piece by ID, or an error matching [ErrNotFound].
	Get(ctx context.Context, id string) (*Piece, error)

	// List returns pieces newest first.
	List(ctx context.Context, opts ListOptions) ([]*Piece, error)

	// Delete removes a piece. Deleting a missing piece returns an error
	// matching [ErrNotFound].
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

func notFound(id string) error {
	return apperr.Wrap(apperr.ErrCodePieceNotFound, ErrNotFound, "piece %s", id)
}
