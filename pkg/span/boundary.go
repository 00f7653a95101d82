package span

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/structiou/pkg/errors"
)

// Boundary is the time span of one terminal. Label is informational.
type Boundary struct {
	Label string  `json:"label"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Interval returns the boundary's span.
func (b Boundary) Interval() Interval { return Interval{Start: b.Start, End: b.End} }

// UnmarshalJSON accepts both the object form {"label":"I","start":1,"end":1.5}
// and the compact triple form ["I", 1, 1.5].
func (b *Boundary) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var triple []json.RawMessage
		if err := json.Unmarshal(data, &triple); err != nil {
			return err
		}
		if len(triple) != 3 {
			return fmt.Errorf("boundary triple has %d elements, want 3", len(triple))
		}
		if err := json.Unmarshal(triple[0], &b.Label); err != nil {
			return fmt.Errorf("boundary label: %w", err)
		}
		if err := json.Unmarshal(triple[1], &b.Start); err != nil {
			return fmt.Errorf("boundary start: %w", err)
		}
		if err := json.Unmarshal(triple[2], &b.End); err != nil {
			return fmt.Errorf("boundary end: %w", err)
		}
		return nil
	}
	type plain Boundary
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*b = Boundary(p)
	return nil
}

// UnmarshalTOML accepts an inline triple ["I", 1.0, 1.5] or a table with
// label, start and end keys. Integer times are allowed.
func (b *Boundary) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case []any:
		if len(x) != 3 {
			return fmt.Errorf("boundary triple has %d elements, want 3", len(x))
		}
		label, ok := x[0].(string)
		if !ok {
			return fmt.Errorf("boundary label must be a string, got %T", x[0])
		}
		start, err := tomlFloat(x[1])
		if err != nil {
			return fmt.Errorf("boundary start: %w", err)
		}
		end, err := tomlFloat(x[2])
		if err != nil {
			return fmt.Errorf("boundary end: %w", err)
		}
		*b = Boundary{Label: label, Start: start, End: end}
	case map[string]any:
		label, _ := x["label"].(string)
		start, err := tomlFloat(x["start"])
		if err != nil {
			return fmt.Errorf("boundary start: %w", err)
		}
		end, err := tomlFloat(x["end"])
		if err != nil {
			return fmt.Errorf("boundary end: %w", err)
		}
		*b = Boundary{Label: label, Start: start, End: end}
	default:
		return fmt.Errorf("boundary must be an array or table, got %T", v)
	}
	return nil
}

func tomlFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case nil:
		return 0, fmt.Errorf("missing value")
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

// Format identifies a boundary file encoding.
type Format string

const (
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
)

// FormatFromPath picks a format from a file extension, defaulting to TSV.
func FormatFromPath(path string) Format {
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return FormatJSON
	}
	return FormatTSV
}

// ReadBoundaries decodes a boundary list.
//
// TSV input has one "label<TAB>start<TAB>end" row per terminal; blank lines
// and lines starting with '#' are skipped. JSON input is an array of either
// objects or triples (see [Boundary.UnmarshalJSON]).
func ReadBoundaries(r io.Reader, format Format) ([]Boundary, error) {
	switch format {
	case FormatTSV, "":
		return readTSV(r)
	case FormatJSON:
		var bs []Boundary
		if err := json.NewDecoder(r).Decode(&bs); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode boundaries")
		}
		return bs, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown boundary format %q", format)
	}
}

func readTSV(r io.Reader) ([]Boundary, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.FieldsPerRecord = 3
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var bs []Boundary
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read boundary row %d", len(bs)+1)
		}
		start, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "boundary row %d: start", len(bs)+1)
		}
		end, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "boundary row %d: end", len(bs)+1)
		}
		bs = append(bs, Boundary{Label: rec[0], Start: start, End: end})
	}
	return bs, nil
}

// WriteBoundaries encodes bs in the TSV form read by [ReadBoundaries].
func WriteBoundaries(w io.Writer, bs []Boundary) error {
	for _, b := range bs {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", b.Label,
			strconv.FormatFloat(b.Start, 'f', -1, 64),
			strconv.FormatFloat(b.End, 'f', -1, 64)); err != nil {
			return err
		}
	}
	return nil
}
