// Package kmz parses FTTH network designs exported as KMZ archives into a
// design.Model, classifying each placemark by its folder path.
package kmz

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/ftth-cli/internal/design"
)

// Parse failures. Each is fatal to the parse attempt and no model is
// returned alongside it.
var (
	ErrMissingPayload   = eris.New("kmz: archive has no .kml payload")
	ErrMalformedArchive = eris.New("kmz: malformed archive")
	ErrMalformedMarkup  = eris.New("kmz: malformed markup")
	ErrTooLarge         = eris.New("kmz: input exceeds size limit")
)

const (
	payloadExt             = ".kml"
	defaultMaxPayloadBytes = 256 << 20
)

// Stats summarizes a parse for quality reporting.
type Stats struct {
	Payload         string `json:"payload" yaml:"payload"`
	Folders         int    `json:"folders" yaml:"folders"`
	Placemarks      int    `json:"placemarks" yaml:"placemarks"`
	Points          int    `json:"points" yaml:"points"`
	Cables          int    `json:"cables" yaml:"cables"`
	SkippedTokens   int    `json:"skipped_tokens" yaml:"skipped_tokens"`
	EmptyGeometries int    `json:"empty_geometries" yaml:"empty_geometries"`
	Unsupported     int    `json:"unsupported" yaml:"unsupported"`
	Defaulted       int    `json:"defaulted" yaml:"defaulted"`
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxPayloadBytes caps the decompressed size of the KML payload.
func WithMaxPayloadBytes(n int64) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxPayloadBytes = n
		}
	}
}

// WithLogger sets the logger used for parse diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(p *Parser) {
		if log != nil {
			p.log = log
		}
	}
}

// Parser turns KMZ bytes into design models. A Parser holds no per-parse
// state and is safe for concurrent use.
type Parser struct {
	maxPayloadBytes int64
	log             *zap.Logger
}

// NewParser creates a Parser with the given options.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		maxPayloadBytes: defaultMaxPayloadBytes,
		log:             zap.L(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With(zap.String("component", "kmz"))
	return p
}

// Parse parses a KMZ archive held in memory.
func Parse(data []byte) (*design.Model, Stats, error) {
	return NewParser().Parse(data)
}

// ParseFile reads and parses a design file. Files ending in .kml are
// treated as a bare payload; anything else is opened as a KMZ archive.
func ParseFile(path string) (*design.Model, Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Stats{}, eris.Wrapf(err, "kmz: read %s", path)
	}
	p := NewParser()
	if strings.HasSuffix(strings.ToLower(path), payloadExt) {
		return p.ParseKML(data)
	}
	return p.Parse(data)
}

// ReadLimited reads at most limit bytes from r, failing with ErrTooLarge
// when the input is longer.
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, eris.Wrap(err, "kmz: read input")
	}
	if int64(len(data)) > limit {
		return nil, eris.Wrapf(ErrTooLarge, "limit %d bytes", limit)
	}
	return data, nil
}

// Parse opens data as a zip archive, extracts the first .kml entry and
// builds the model from it.
func (p *Parser) Parse(data []byte) (*design.Model, Stats, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, Stats{}, eris.Wrapf(ErrMalformedArchive, "open zip: %v", err)
	}

	entry := findPayload(zr)
	if entry == nil {
		return nil, Stats{}, ErrMissingPayload
	}

	payload, err := p.readEntry(entry)
	if err != nil {
		return nil, Stats{}, err
	}

	m, stats, err := p.ParseKML(payload)
	if err != nil {
		return nil, Stats{}, err
	}
	stats.Payload = entry.Name
	return m, stats, nil
}

// ParseKML builds a model from an uncompressed KML payload.
func (p *Parser) ParseKML(payload []byte) (*design.Model, Stats, error) {
	root, err := decodeMarkup(payload)
	if err != nil {
		return nil, Stats{}, err
	}

	w := newWalker(p.log)
	w.walkContainer(container(root))
	m := w.builder.Build()

	p.log.Info("kmz: design parsed",
		zap.Int("placemarks", w.stats.Placemarks),
		zap.Int("points", w.stats.Points),
		zap.Int("cables", w.stats.Cables),
		zap.Int("skipped_tokens", w.stats.SkippedTokens),
		zap.Int("defaulted", w.stats.Defaulted),
	)
	return m, w.stats, nil
}

// findPayload returns the first entry whose name ends in .kml, ignoring case.
func findPayload(zr *zip.Reader) *zip.File {
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(f.Name), payloadExt) {
			return f
		}
	}
	return nil
}

func (p *Parser) readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, eris.Wrapf(ErrMalformedArchive, "open entry %s: %v", f.Name, err)
	}
	defer rc.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(rc, p.maxPayloadBytes+1))
	if err != nil {
		return nil, eris.Wrapf(ErrMalformedArchive, "read entry %s: %v", f.Name, err)
	}
	if int64(len(data)) > p.maxPayloadBytes {
		return nil, eris.Wrapf(ErrTooLarge, "entry %s exceeds %d bytes", f.Name, p.maxPayloadBytes)
	}
	return data, nil
}
