package interchange

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/goccy/go-json"
	"github.com/paulmach/orb/geojson"

	"mpkconv/internal/fileutil"
)

// Options controls document layout.
type Options struct {
	// Name, when set, is emitted as the collection's "name" member.
	Name string
	// FieldOrder lists property keys in output order. Keys not listed follow,
	// sorted.
	FieldOrder []string
	Indent     bool
}

type document struct {
	Type     string    `json:"type"`
	Name     string    `json:"name,omitempty"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string            `json:"type"`
	ID         any               `json:"id,omitempty"`
	Geometry   *geojson.Geometry `json:"geometry"`
	Properties properties        `json:"properties"`
}

type properties struct {
	order  []string
	values map[string]any
}

// MarshalJSON writes the properties object with keys in the configured order.
func (p properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(key string) error {
		value, ok := p.values[key]
		if !ok {
			return nil
		}
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("property %q: %w", key, err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	seen := make(map[string]struct{}, len(p.order))
	for _, key := range p.order {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if err := write(key); err != nil {
			return nil, err
		}
	}
	rest := make([]string, 0, len(p.values))
	for key := range p.values {
		if _, ok := seen[key]; !ok {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		if err := write(key); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Encode writes fc to w as a GeoJSON FeatureCollection.
func Encode(w io.Writer, fc *geojson.FeatureCollection, opts Options) error {
	doc := document{
		Type:     "FeatureCollection",
		Name:     opts.Name,
		Features: []feature{},
	}
	if fc != nil {
		doc.Features = make([]feature, 0, len(fc.Features))
		for _, f := range fc.Features {
			if f == nil {
				continue
			}
			out := feature{
				Type:       "Feature",
				ID:         f.ID,
				Properties: properties{order: opts.FieldOrder, values: f.Properties},
			}
			if f.Geometry != nil {
				out.Geometry = geojson.NewGeometry(f.Geometry)
			}
			doc.Features = append(doc.Features, out)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if opts.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode feature collection: %w", err)
	}
	return nil
}

// Write encodes fc into path atomically, replacing any existing file.
func Write(path string, fc *geojson.FeatureCollection, opts Options) error {
	return fileutil.WriteAtomic(path, func(w io.Writer) error {
		return Encode(w, fc, opts)
	})
}
