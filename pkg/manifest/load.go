package manifest

import (
	"bytes"
	_ "embed"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/homestead/pkg/errors"
	"github.com/arthur-debert/homestead/pkg/logging"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed embedded/default.yaml
var defaultManifest []byte

// Format is a manifest serialization
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf picks the format from a file extension
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	}
	return "", false
}

// Default returns the embedded manifest
func Default() (*Manifest, error) {
	return Parse(defaultManifest, FormatYAML)
}

// DefaultContent returns the embedded manifest source
func DefaultContent() string {
	return string(defaultManifest)
}

// Load reads and validates the manifest at path. An empty path loads the
// embedded default.
func Load(path string) (*Manifest, error) {
	logger := logging.GetLogger("manifest")
	if path == "" {
		logger.Debug().Msg("Using embedded manifest")
		return Default()
	}

	format, ok := FormatOf(path)
	if !ok {
		return nil, errors.Newf(errors.ErrManifestLoad, "unsupported manifest format %q", filepath.Ext(path)).
			WithDetail("path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestLoad, "read manifest %s", path)
	}

	m, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("path", path).Str("format", string(format)).Msg("Loaded manifest")
	return m, nil
}

// Parse decodes and validates a manifest. Unknown keys are rejected.
func Parse(data []byte, format Format) (*Manifest, error) {
	var m Manifest
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// A document without content decodes to io.EOF.
		if err := dec.Decode(&m); err != nil && !stderrors.Is(err, io.EOF) {
			return nil, errors.Wrap(err, errors.ErrManifestLoad, "parse yaml manifest")
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, errors.Wrap(err, errors.ErrManifestLoad, "parse toml manifest")
		}
	default:
		return nil, errors.Newf(errors.ErrManifestLoad, "unsupported manifest format %q", format)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
