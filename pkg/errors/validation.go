package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// MaxSurfaceSide bounds either side of a render surface in pixels.
// Larger requests are rejected before any pixel buffer is allocated.
const MaxSurfaceSide = 8192

// ValidateSurface validates the pixel dimensions of a surface about to be
// allocated. Besides non-positive sides it applies [MaxSurfaceSide]; the
// engine itself accepts any positive size.
func ValidateSurface(width, height int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidSurface, "surface must have positive dimensions (got %dx%d)", width, height)
	}
	if width > MaxSurfaceSide || height > MaxSurfaceSide {
		return New(ErrCodeInvalidSurface, "surface too large (max %dx%d, got %dx%d)", MaxSurfaceSide, MaxSurfaceSide, width, height)
	}
	return nil
}

// ValidateScale validates an export scale factor.
// The export surface is the preview size multiplied by scale, so the
// factor must be finite and in (0, 8].
func ValidateScale(scale float64) error {
	if math.IsNaN(scale) || math.IsInf(scale, 0) {
		return New(ErrCodeInvalidScale, "scale must be a finite number")
	}
	if scale <= 0 || scale > 8 {
		return New(ErrCodeInvalidScale, "scale must be in (0, 8] (got %g)", scale)
	}
	return nil
}

// ValidateSeed validates a piece seed. Seeds are drawn once per piece from
// [0, 1) and reused for every render of that piece.
func ValidateSeed(seed float64) error {
	if math.IsNaN(seed) || math.IsInf(seed, 0) {
		return New(ErrCodeInvalidSeed, "seed must be a finite number")
	}
	if seed < 0 || seed >= 1 {
		return New(ErrCodeInvalidSeed, "seed must be in [0, 1) (got %g)", seed)
	}
	return nil
}

// pieceIDRegex matches canonical lowercase UUID strings.
var pieceIDRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidatePieceID validates a gallery piece identifier.
// IDs are used as file names by the file store, so anything other than a
// canonical UUID is rejected.
func ValidatePieceID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "piece id cannot be empty")
	}
	if !pieceIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid piece id: %q", id)
	}
	return nil
}

// ValidateTitle validates a piece title before it is used in file names.
//
// Titles come from a generative model, so the rules reject what would break
// an export filename:
//   - No empty (or whitespace-only) titles
//   - No control characters
//   - No path separators
//   - Maximum length of 200 characters
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return New(ErrCodeInvalidInput, "title cannot be empty")
	}
	if len(title) > 200 {
		return New(ErrCodeInvalidInput, "title too long (max 200 characters)")
	}
	for _, r := range title {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "title contains invalid control characters")
		}
	}
	if strings.ContainsAny(title, "/\\") {
		return New(ErrCodeInvalidInput, "title cannot contain path separators")
	}
	return nil
}

// ValidateOwner validates a piece owner. Owners are optional, but they are
// part of the export filename, so the rules match [ValidateTitle]:
//   - No control characters
//   - No path separators
//   - Maximum length of 100 characters
func ValidateOwner(owner string) error {
	if len(owner) > 100 {
		return New(ErrCodeInvalidInput, "owner too long (max 100 characters)")
	}
	for _, r := range owner {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "owner contains invalid control characters")
		}
	}
	if strings.ContainsAny(owner, "/\\") {
		return New(ErrCodeInvalidInput, "owner cannot contain path separators")
	}
	return nil
}
