package span

import (
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/structiou/pkg/errors"
	"github.com/matzehuels/structiou/pkg/tree"
)

var catBoundaries = []Boundary{
	{"I", 1.0, 1.5},
	{"am", 1.8, 2.0},
	{"a", 2.0, 2.2},
	{"cat", 2.2, 3.0},
}

func catTree(t *testing.T) *tree.Tree {
	t.Helper()
	return tree.MustParse("( NT ( NT I ) ( NT ( NT am ) ( NT ( NT a ) ( NT cat ) ) ) )")
}

func TestIntervalIoU(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want float64
	}{
		{"identical", Interval{1, 2}, Interval{1, 2}, 1},
		{"half", Interval{0, 2}, Interval{1, 2}, 0.5},
		{"partial", Interval{0, 2}, Interval{1, 3}, 1.0 / 3},
		{"touching", Interval{0, 1}, Interval{1, 2}, 0},
		{"disjoint", Interval{0, 1}, Interval{2, 3}, 0},
		{"zero length", Interval{1, 1}, Interval{1, 1}, 0},
		{"below eps", Interval{0, 1}, Interval{1 - 1e-7, 2}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.IoU(tt.b, DefaultEpsilon)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("IoU = %v, want %v", got, tt.want)
			}
			if back := tt.b.IoU(tt.a, DefaultEpsilon); back != got {
				t.Errorf("IoU not symmetric: %v vs %v", got, back)
			}
		})
	}
}

func TestIntervalOverlapAndHull(t *testing.T) {
	a, b := Interval{1, 3}, Interval{2, 5}
	if got := a.Overlap(b); got != 1 {
		t.Errorf("Overlap = %v, want 1", got)
	}
	if got := a.Overlap(Interval{4, 5}); got != 0 {
		t.Errorf("Overlap(disjoint) = %v, want 0", got)
	}
	if got := a.Hull(b); got != (Interval{1, 5}) {
		t.Errorf("Hull = %v, want [1, 5]", got)
	}
	if !a.Hull(b).Contains(a) || a.Contains(b) {
		t.Error("Contains returned unexpected result")
	}
}

func TestIntervalValid(t *testing.T) {
	valid := []Interval{{0, 0}, {1, 2}, {-1, 0}}
	invalid := []Interval{{2, 1}, {math.NaN(), 1}, {0, math.Inf(1)}}
	for _, iv := range valid {
		if !iv.Valid() {
			t.Errorf("%v.Valid() = false, want true", iv)
		}
	}
	for _, iv := range invalid {
		if iv.Valid() {
			t.Errorf("%v.Valid() = true, want false", iv)
		}
	}
}

func TestBuild(t *testing.T) {
	st, err := Build(catTree(t), catBoundaries)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := map[int]Interval{
		0: {1.0, 3.0},
		1: {1.0, 1.5},
		2: {1.8, 3.0},
		3: {1.8, 2.0},
		4: {2.0, 3.0},
		6: {2.2, 3.0},
	}
	for i, iv := range want {
		if got := st.Interval(i); got != iv {
			t.Errorf("Interval(%d) = %v, want %v", i, got, iv)
		}
	}

	if lo, hi := st.LeafRange(2); lo != 1 || hi != 4 {
		t.Errorf("LeafRange(2) = [%d, %d), want [1, 4)", lo, hi)
	}
	if st.Len() != 7 || st.NumLeaves() != 4 {
		t.Errorf("Len/NumLeaves = %d/%d, want 7/4", st.Len(), st.NumLeaves())
	}
}

func TestBuildParentContainsChildren(t *testing.T) {
	// Non-monotone boundaries still produce hull intervals.
	src := tree.MustParse("( S ( A x ) ( B ( C y ) ( D z ) ) )")
	st := MustBuild(src, []Boundary{{"x", 2, 3}, {"y", 0, 1}, {"z", 4, 6}})

	for i := 0; i < st.Len(); i++ {
		for _, c := range src.Children(i) {
			if !st.Interval(i).Contains(st.Interval(c)) {
				t.Errorf("node %d %v does not contain child %d %v", i, st.Interval(i), c, st.Interval(c))
			}
		}
	}
	if got := st.Span(); got != (Interval{0, 6}) {
		t.Errorf("Span() = %v, want [0, 6]", got)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		bs   []Boundary
		code errors.Code
	}{
		{"too few", catBoundaries[:3], errors.ErrCodeBoundaryMismatch},
		{"too many", append(append([]Boundary(nil), catBoundaries...), Boundary{"x", 3, 4}), errors.ErrCodeBoundaryMismatch},
		{"none", nil, errors.ErrCodeBoundaryMismatch},
		{"reversed", []Boundary{{"I", 1.5, 1.0}, {"am", 1.8, 2.0}, {"a", 2.0, 2.2}, {"cat", 2.2, 3.0}}, errors.ErrCodeInvalidInterval},
		{"nan", []Boundary{{"I", math.NaN(), 1.0}, {"am", 1.8, 2.0}, {"a", 2.0, 2.2}, {"cat", 2.2, 3.0}}, errors.ErrCodeInvalidInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := Build(catTree(t), tt.bs)
			if st != nil {
				t.Errorf("Build() returned a tree alongside error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Build() error = %v, want %s", err, tt.code)
			}
		})
	}

	if _, err := Build(nil, nil); !errors.Is(err, errors.ErrCodeEmptyTree) {
		t.Errorf("Build(nil) error = %v, want EMPTY_TREE", err)
	}
}

func TestBuildCopiesBoundaries(t *testing.T) {
	bs := append([]Boundary(nil), catBoundaries...)
	st := MustBuild(catTree(t), bs)
	bs[0].End = 99
	if st.Interval(1).End != 1.5 {
		t.Error("Build aliased the caller's boundary slice")
	}
}

func TestFormat(t *testing.T) {
	st := MustBuild(tree.MustParse("( NT ( NT I ) ( NT am ) )"), catBoundaries[:2])
	want := "(NT-0-1.000~2.000 (NT-1-1.000~1.500 I) (NT-2-1.800~2.000 am))"
	if got := st.Format(); got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestReadBoundariesTSV(t *testing.T) {
	in := "# word\tstart\tend\nI\t1.0\t1.5\n\nam\t1.8\t2\n"
	bs, err := ReadBoundaries(strings.NewReader(in), FormatTSV)
	if err != nil {
		t.Fatalf("ReadBoundaries() error = %v", err)
	}
	want := []Boundary{{"I", 1.0, 1.5}, {"am", 1.8, 2.0}}
	if len(bs) != len(want) {
		t.Fatalf("got %d boundaries, want %d", len(bs), len(want))
	}
	for i := range want {
		if bs[i] != want[i] {
			t.Errorf("boundary %d = %+v, want %+v", i, bs[i], want[i])
		}
	}

	var out strings.Builder
	if err := WriteBoundaries(&out, bs); err != nil {
		t.Fatalf("WriteBoundaries() error = %v", err)
	}
	again, err := ReadBoundaries(strings.NewReader(out.String()), FormatTSV)
	if err != nil || len(again) != 2 || again[1] != want[1] {
		t.Errorf("round trip = %+v, %v", again, err)
	}
}

func TestReadBoundariesJSON(t *testing.T) {
	inputs := []string{
		`[["I", 1.0, 1.5], ["am", 1.8, 2.0]]`,
		`[{"label": "I", "start": 1.0, "end": 1.5}, {"label": "am", "start": 1.8, "end": 2.0}]`,
	}
	for _, in := range inputs {
		bs, err := ReadBoundaries(strings.NewReader(in), FormatJSON)
		if err != nil {
			t.Fatalf("ReadBoundaries(%s) error = %v", in, err)
		}
		if len(bs) != 2 || bs[0] != (Boundary{"I", 1.0, 1.5}) || bs[1] != (Boundary{"am", 1.8, 2.0}) {
			t.Errorf("ReadBoundaries(%s) = %+v", in, bs)
		}
	}
}

func TestReadBoundariesErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
	}{
		{"tsv two columns", "I\t1.0\n", FormatTSV},
		{"tsv bad float", "I\tone\t1.5\n", FormatTSV},
		{"json short triple", `[["I", 1.0]]`, FormatJSON},
		{"json not array", `{"label": "I"}`, FormatJSON},
		{"unknown format", "", Format("xml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadBoundaries(strings.NewReader(tt.input), tt.format)
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("ReadBoundaries() error = %v, want INVALID_FORMAT", err)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	if FormatFromPath("a/b.JSON") != FormatJSON || FormatFromPath("b.tsv") != FormatTSV || FormatFromPath("b") != FormatTSV {
		t.Error("FormatFromPath returned unexpected format")
	}
}

func TestBoundaryUnmarshalTOML(t *testing.T) {
	var b Boundary
	if err := b.UnmarshalTOML([]any{"I", int64(1), 1.5}); err != nil {
		t.Fatalf("UnmarshalTOML(triple) error = %v", err)
	}
	if b != (Boundary{"I", 1, 1.5}) {
		t.Errorf("UnmarshalTOML(triple) = %+v", b)
	}

	if err := b.UnmarshalTOML(map[string]any{"label": "am", "start": 1.8, "end": int64(2)}); err != nil {
		t.Fatalf("UnmarshalTOML(table) error = %v", err)
	}
	if b != (Boundary{"am", 1.8, 2}) {
		t.Errorf("UnmarshalTOML(table) = %+v", b)
	}

	bad := []any{
		[]any{"I", 1.0},
		[]any{1, 1.0, 2.0},
		[]any{"I", "x", 2.0},
		map[string]any{"label": "I", "start": 1.0},
		"I 1 2",
	}
	for _, v := range bad {
		if err := b.UnmarshalTOML(v); err == nil {
			t.Errorf("UnmarshalTOML(%v) = nil, want error", v)
		}
	}
}
