package kmz

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/language"

	"github.com/sells-group/ftth-cli/internal/design"
)

// element is a generic XML tree node. KML namespaces are ignored; only
// local names are compared.
type element struct {
	XMLName  xml.Name
	Text     string    `xml:",chardata"`
	Children []element `xml:",any"`
}

func (e *element) is(local string) bool {
	return e.XMLName.Local == local
}

// child returns the first direct child with the given local name.
func (e *element) child(local string) *element {
	for i := range e.Children {
		if e.Children[i].is(local) {
			return &e.Children[i]
		}
	}
	return nil
}

// find returns the first descendant (depth first, self excluded) with the
// given local name.
func (e *element) find(local string) *element {
	for i := range e.Children {
		c := &e.Children[i]
		if c.is(local) {
			return c
		}
		if found := c.find(local); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every descendant with the given local name in document
// order, without descending into matches.
func (e *element) findAll(local string) []*element {
	var out []*element
	for i := range e.Children {
		c := &e.Children[i]
		if c.is(local) {
			out = append(out, c)
			continue
		}
		out = append(out, c.findAll(local)...)
	}
	return out
}

// name returns the trimmed text of the <name> child.
func (e *element) name() string {
	if n := e.child("name"); n != nil {
		return strings.TrimSpace(n.Text)
	}
	return ""
}

func (e *element) isContainer() bool {
	return e.is("Folder") || e.is("Document")
}

// decodeMarkup parses a KML payload into an element tree.
func decodeMarkup(payload []byte) (*element, error) {
	dec := xml.NewDecoder(bytes.NewReader(payload))
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "kmz: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	var root element
	if err := dec.Decode(&root); err != nil {
		return nil, eris.Wrapf(ErrMalformedMarkup, "decode: %v", err)
	}
	return &root, nil
}

// container returns the first Document element, or the root itself when
// the payload has none.
func container(root *element) *element {
	if root.is("Document") {
		return root
	}
	if doc := root.find("Document"); doc != nil {
		return doc
	}
	return root
}

// walker turns a KML element tree into a design.Model.
type walker struct {
	builder *design.Builder
	upper   cases.Caser
	stats   Stats
	log     *zap.Logger
}

func newWalker(log *zap.Logger) *walker {
	return &walker{
		builder: design.NewBuilder(),
		upper:   cases.Upper(language.Und),
		log:     log,
	}
}

// walkContainer processes the container's own placemarks with an empty
// path, then each folder below it.
func (w *walker) walkContainer(c *element) {
	w.placemarks(c, "")
	for i := range c.Children {
		if c.Children[i].isContainer() {
			w.walkFolder(&c.Children[i], "")
		}
	}
}

// walkFolder handles a folder's direct placemarks before recursing into
// its sub-folders.
func (w *walker) walkFolder(f *element, parentPath string) {
	path := joinPath(parentPath, f.name())
	w.stats.Folders++

	w.placemarks(f, path)
	for i := range f.Children {
		if f.Children[i].isContainer() {
			w.walkFolder(&f.Children[i], path)
		}
	}
}

func (w *walker) placemarks(f *element, path string) {
	for i := range f.Children {
		if f.Children[i].is("Placemark") {
			w.placemark(&f.Children[i], path)
		}
	}
}

func (w *walker) placemark(pm *element, path string) {
	w.stats.Placemarks++
	name := pm.name()
	itemPath := joinPath(path, name)
	key := w.matchKey(itemPath)

	if pt := pm.find("Point"); pt != nil {
		w.point(pt, name, itemPath, key)
		return
	}

	lines := pm.findAll("LineString")
	if len(lines) == 0 {
		w.stats.Unsupported++
		w.log.Debug("kmz: placemark without point or line geometry", zap.String("path", itemPath))
		return
	}

	class, matched := ClassifyLine(key)
	if !matched {
		w.stats.Defaulted++
	}
	for _, ls := range lines {
		coords := w.coordinates(ls, itemPath)
		if !w.builder.AddCable(design.NewCable(name, coords, class)) {
			w.stats.EmptyGeometries++
			continue
		}
		w.stats.Cables++
	}
}

func (w *walker) point(pt *element, name, itemPath, key string) {
	coords := w.coordinates(pt, itemPath)
	if len(coords) == 0 {
		w.stats.EmptyGeometries++
		return
	}

	category, matched := ClassifyPoint(key)
	if !matched {
		w.stats.Defaulted++
	}
	w.builder.AddPoint(design.NewPoint(name, coords[0].Lat, coords[0].Lon, category))
	w.stats.Points++
}

func (w *walker) coordinates(geom *element, itemPath string) []design.LatLon {
	c := geom.child("coordinates")
	if c == nil {
		return nil
	}
	coords, skipped := parseCoordinates(c.Text)
	if skipped > 0 {
		w.stats.SkippedTokens += skipped
		w.log.Debug("kmz: skipped malformed coordinate tokens",
			zap.String("path", itemPath),
			zap.Int("skipped", skipped),
		)
	}
	return coords
}

// matchKey is the string the rule tables see: the upper-cased item path
// with underscores read as spaces, so "CAJAS_NAP" matches "CAJAS NAP".
func (w *walker) matchKey(itemPath string) string {
	return strings.ReplaceAll(w.upper.String(itemPath), "_", " ")
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}
