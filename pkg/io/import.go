package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/tapestry/pkg/art"
	apperr "github.com/matzehuels/tapestry/pkg/errors"
)

// Document formats understood by [ReadDocument].
const (
	FormatJSON = "json"
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// FormatFromPath picks a document format from a file extension.
// Unknown extensions are read as JSON.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ReadDocument decodes a JSON, TOML or YAML object from r into a loosely
// typed map. Only syntax errors and non-object documents fail.
func ReadDocument(r io.Reader, format string) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	m := map[string]any{}
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidParams, err, "decode toml")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidParams, err, "decode yaml")
		}
	case FormatJSON, "":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&m); err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidParams, err, "decode json")
		}
	default:
		return nil, apperr.New(apperr.ErrCodeInvalidFormat, "unknown document format %q (must be one of: json, toml, yaml)", format)
	}
	return m, nil
}

// ReadParams decodes an [art.ArtParams] record from r.
//
// The document may be the record itself or an object carrying it under a
// "params" key (as design documents do). Field values are accepted
// leniently; see [art.ParamsFromMap].
func ReadParams(r io.Reader, format string) (art.ArtParams, error) {
	m, err := ReadDocument(r, format)
	if err != nil {
		return art.ArtParams{}, err
	}
	return ParamsFromDocument(m), nil
}

// ParamsFromDocument extracts the parameter record from a decoded document.
func ParamsFromDocument(m map[string]any) art.ArtParams {
	if inner, ok := m["params"].(map[string]any); ok {
		return art.ParamsFromMap(inner)
	}
	return art.ParamsFromMap(m)
}

// ImportParams reads a parameter file, picking the format from its
// extension.
func ImportParams(path string) (art.ArtParams, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return art.ArtParams{}, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "open %s", path)
		}
		return art.ArtParams{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadParams(f, FormatFromPath(path))
}
