package corpus

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/structiou/pkg/cache"
	"github.com/matzehuels/structiou/pkg/errors"
	"github.com/matzehuels/structiou/pkg/span"
)

const (
	catRef  = "( NT ( NT I ) ( NT ( NT am ) ( NT ( NT a ) ( NT cat ) ) ) )"
	catPred = "( NT ( NT ( NT 1 ) ( NT 2 ) ) ( NT ( NT 3 ) ( NT ( NT 4 ) ( NT 5 ) ) ) )"
)

var (
	catRefBounds = []span.Boundary{
		{Label: "I", Start: 1.0, End: 1.5}, {Label: "am", Start: 1.8, End: 2.0}, {Label: "a", Start: 2.0, End: 2.2}, {Label: "cat", Start: 2.2, End: 3.0},
	}
	catPredBounds = []span.Boundary{
		{Label: "1", Start: 1.0, End: 1.2}, {Label: "2", Start: 1.2, End: 1.4}, {Label: "3", Start: 1.8, End: 2.1}, {Label: "4", Start: 2.1, End: 2.3}, {Label: "5", Start: 2.3, End: 2.8},
	}
)

func catExample(id string) Example {
	return Example{
		ID:                  id,
		Reference:           catRef,
		ReferenceBoundaries: catRefBounds,
		Predicted:           catPred,
		PredictedBoundaries: catPredBounds,
	}
}

func identityExample(id string) Example {
	return Example{
		ID:                  id,
		Reference:           catRef,
		ReferenceBoundaries: catRefBounds,
		Predicted:           catRef,
		PredictedBoundaries: catRefBounds,
	}
}

// countingCache is an in-memory cache that records hits.
type countingCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
	sets int
}

func newCountingCache() *countingCache {
	return &countingCache{data: make(map[string][]byte)}
}

func (c *countingCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if ok {
		c.hits++
	}
	return v, ok, nil
}

func (c *countingCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *countingCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *countingCache) Close() error { return nil }

func TestExampleBuild(t *testing.T) {
	ref, pred, err := catExample("cat").Build()
	require.NoError(t, err)
	assert.Equal(t, 7, ref.Len())
	assert.Equal(t, 9, pred.Len())

	bad := catExample("bad")
	bad.PredictedBoundaries = bad.PredictedBoundaries[:4]
	_, _, err = bad.Build()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeBoundaryMismatch))
	assert.Contains(t, err.Error(), "predicted")

	bad = catExample("bad")
	bad.Reference = "( NT ( NT I )"
	_, _, err = bad.Build()
	assert.True(t, errors.Is(err, errors.ErrCodeMalformedTree))
}

func TestExampleHashIgnoresID(t *testing.T) {
	a, err := catExample("a").Hash()
	require.NoError(t, err)
	b, err := catExample("b").Hash()
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := identityExample("a").Hash()
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults", DefaultOptions(), false},
		{"zero epsilon filled", Options{Flexible: true}, false},
		{"threshold half", Options{Threshold: 0.5}, false},
		{"threshold one", Options{Threshold: 1}, true},
		{"negative threshold", Options{Threshold: -0.1}, true},
		{"epsilon too large", Options{Epsilon: 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAndSetDefaults() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && tt.opts.Epsilon == 0 {
				t.Error("Epsilon not defaulted")
			}
		})
	}
}

func TestRunnerScore(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	rep, err := r.Score(context.Background(), catExample("cat"), DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 0.6073, rep.Score, 1e-4)
	assert.True(t, rep.Flexible)
}

func TestRunnerScoreTrees(t *testing.T) {
	cc := newCountingCache()
	r := NewRunner(cc, nil, nil)
	ctx := context.Background()

	ref, pred, rep, err := r.ScoreTrees(ctx, catExample("cat"), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 7, ref.Len())
	assert.Equal(t, 9, pred.Len())
	assert.InDelta(t, 0.6073, rep.Score, 1e-4)
	for _, p := range rep.Pairs {
		assert.Less(t, p.A, ref.Len())
		assert.Less(t, p.B, pred.Len())
	}

	// A cached report still comes back with the trees it was scored on.
	ref2, pred2, again, err := r.ScoreTrees(ctx, catExample("cat"), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, cc.hits)
	assert.Equal(t, rep, again)
	assert.Equal(t, ref.Format(), ref2.Format())
	assert.Equal(t, pred.Format(), pred2.Format())

	bad := catExample("bad")
	bad.Predicted = "( NT ( NT 1 )"
	ref, pred, _, err = r.ScoreTrees(ctx, bad, DefaultOptions())
	assert.True(t, errors.Is(err, errors.ErrCodeMalformedTree), "err = %v", err)
	assert.Nil(t, ref)
	assert.Nil(t, pred)

	_, _, _, err = r.ScoreTrees(ctx, catExample("cat"), Options{Threshold: 2})
	assert.Error(t, err)
}

func TestRunnerFlexibleOverride(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	off := false
	e := catExample("cat")
	e.Flexible = &off

	rep, err := r.Score(context.Background(), e, DefaultOptions())
	require.NoError(t, err)
	assert.False(t, rep.Flexible)
}

func TestRunnerRun(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	r.Workers = 3

	bad := catExample("bad")
	bad.ReferenceBoundaries = nil
	examples := []Example{
		catExample("cat"),
		identityExample(""),
		bad,
		catExample("cat-2"),
	}

	s, err := r.Run(context.Background(), examples, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, s.Results, 4)

	assert.NotEmpty(t, s.RunID)
	assert.Equal(t, []string{"cat", "example-2", "bad", "cat-2"}, resultIDs(s))
	assert.Equal(t, 3, s.Scored)
	assert.Equal(t, 1, s.Failed)
	assert.InDelta(t, 1.0, s.Max, 1e-12)
	assert.InDelta(t, 0.6073, s.Min, 1e-4)
	assert.InDelta(t, (2*0.6072916666666666+1)/3, s.Mean, 1e-9)

	failed := s.Results[2]
	assert.False(t, failed.OK())
	assert.Equal(t, errors.ErrCodeBoundaryMismatch, failed.Code)
	assert.Nil(t, failed.Report)
	assert.Len(t, s.Failures(), 1)

	// Input slice is not modified.
	assert.Empty(t, examples[1].ID)
}

func TestRunnerRunProgress(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	r.Workers = 3
	var seen []int
	r.Progress = func(done, total int) {
		assert.Equal(t, 5, total)
		seen = append(seen, done)
	}

	examples := make([]Example, 5)
	for i := range examples {
		examples[i] = catExample("")
	}
	_, err := r.Run(context.Background(), examples, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, seen)
}

func TestRunnerRunCaches(t *testing.T) {
	c := newCountingCache()
	r := NewRunner(c, nil, nil)
	examples := []Example{catExample("a"), identityExample("b")}

	first, err := r.Run(context.Background(), examples, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, first.CacheHits)
	assert.Equal(t, 2, c.sets)

	second, err := r.Run(context.Background(), examples, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, second.CacheHits)
	assert.Equal(t, first.Mean, second.Mean)

	// Different options must not share entries.
	strict := DefaultOptions()
	strict.Flexible = false
	third, err := r.Run(context.Background(), examples, strict)
	require.NoError(t, err)
	assert.Equal(t, 0, third.CacheHits)

	refresh := DefaultOptions()
	refresh.Refresh = true
	fourth, err := r.Run(context.Background(), examples, refresh)
	require.NoError(t, err)
	assert.Equal(t, 0, fourth.CacheHits)
}

func TestRunnerRunWithFileCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	r := NewRunner(fc, nil, nil)
	defer r.Close()

	_, err = r.Run(context.Background(), []Example{catExample("a")}, DefaultOptions())
	require.NoError(t, err)
	s, err := r.Run(context.Background(), []Example{catExample("a")}, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, s.CacheHits)
	assert.InDelta(t, 0.6073, s.Mean, 1e-4)
}

func TestRunnerRunErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)

	_, err := r.Run(context.Background(), []Example{catExample("a"), catExample("a")}, DefaultOptions())
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = r.Run(context.Background(), []Example{catExample("a/b")}, DefaultOptions())
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = r.Run(context.Background(), nil, Options{Threshold: 3})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Run(ctx, []Example{catExample("a")}, DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunnerRunEmpty(t *testing.T) {
	s, err := NewRunner(nil, nil, nil).Run(context.Background(), nil, DefaultOptions())
	require.NoError(t, err)
	assert.Zero(t, s.Scored)
	assert.Zero(t, s.Mean)
	assert.Zero(t, s.Min)
	assert.Zero(t, s.Max)
}

func TestSummaryWriteJSON(t *testing.T) {
	s, err := NewRunner(nil, nil, nil).Run(context.Background(), []Example{catExample("cat")}, DefaultOptions())
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, s.WriteJSON(&b))
	assert.Contains(t, b.String(), `"run_id"`)
	assert.Contains(t, b.String(), `"id": "cat"`)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	jsonl := `{"id":"cat","reference":"( NT ( NT I ) ( NT ( NT am ) ( NT ( NT a ) ( NT cat ) ) ) )","reference_boundaries":[["I",1.0,1.5],["am",1.8,2.0],["a",2.0,2.2],["cat",2.2,3.0]],"predicted":"( NT ( NT ( NT 1 ) ( NT 2 ) ) ( NT ( NT 3 ) ( NT ( NT 4 ) ( NT 5 ) ) ) )","predicted_boundaries":[{"label":"1","start":1.0,"end":1.2},{"label":"2","start":1.2,"end":1.4},{"label":"3","start":1.8,"end":2.1},{"label":"4","start":2.1,"end":2.3},{"label":"5","start":2.3,"end":2.8}]}

{"reference":"( S ( A x ) )","reference_boundaries":[["x",0,1]],"predicted":"( S ( A x ) )","predicted_boundaries":[["x",0,1]],"flexible":false}
`
	tomlManifest := `
[[example]]
id = "cat"
reference = "( NT ( NT I ) ( NT ( NT am ) ( NT ( NT a ) ( NT cat ) ) ) )"
reference_boundaries = [["I", 1.0, 1.5], ["am", 1.8, 2.0], ["a", 2.0, 2.2], ["cat", 2.2, 3.0]]
predicted = "( NT ( NT ( NT 1 ) ( NT 2 ) ) ( NT ( NT 3 ) ( NT ( NT 4 ) ( NT 5 ) ) ) )"
predicted_boundaries = [
  { label = "1", start = 1.0, end = 1.2 },
  { label = "2", start = 1.2, end = 1.4 },
  { label = "3", start = 1.8, end = 2.1 },
  { label = "4", start = 2.1, end = 2.3 },
  { label = "5", start = 2.3, end = 2.8 },
]

[[example]]
reference = "( S ( A x ) )"
reference_boundaries = [["x", 0, 1]]
predicted = "( S ( A x ) )"
predicted_boundaries = [["x", 0, 1]]
flexible = false
`
	jsonArray := `[` + strings.Split(jsonl, "\n")[0] + `,` + strings.Split(jsonl, "\n")[2] + `]`

	files := map[string]string{
		"corpus.jsonl": jsonl,
		"corpus.toml":  tomlManifest,
		"corpus.json":  jsonArray,
	}
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			examples, err := Load(path)
			require.NoError(t, err)
			require.Len(t, examples, 2)

			assert.Equal(t, "cat", examples[0].ID)
			assert.Equal(t, "example-2", examples[1].ID)
			assert.Equal(t, catRefBounds, examples[0].ReferenceBoundaries)
			assert.Equal(t, catPredBounds, examples[0].PredictedBoundaries)
			assert.Nil(t, examples[0].Flexible)
			require.NotNil(t, examples[1].Flexible)
			assert.False(t, *examples[1].Flexible)

			rep, err := NewRunner(nil, nil, nil).Score(context.Background(), examples[0], DefaultOptions())
			require.NoError(t, err)
			assert.InDelta(t, 0.6073, rep.Score, 1e-4)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"missing", filepath.Join(dir, "nope.jsonl"), errors.ErrCodeFileNotFound},
		{"extension", write("corpus.csv", ""), errors.ErrCodeUnsupported},
		{"bad jsonl", write("bad.jsonl", "{\"id\":\"a\"}\n{oops\n"), errors.ErrCodeInvalidFormat},
		{"bad json", write("bad.json", "{"), errors.ErrCodeInvalidFormat},
		{"bad toml", write("bad.toml", "[[example]\n"), errors.ErrCodeInvalidFormat},
		{"bad boundary", write("bound.toml", "[[example]]\nreference_boundaries = [[\"x\", 0]]\n"), errors.ErrCodeInvalidFormat},
		{"duplicate", write("dup.jsonl", "{\"id\":\"a\"}\n{\"id\":\"a\"}\n"), errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			require.Error(t, err)
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("Load() code = %q, want %q (%v)", got, tt.code, err)
			}
		})
	}
}

func TestReadJSONLLineNumbers(t *testing.T) {
	_, err := ReadJSONL(strings.NewReader("\n{\"id\":\"a\"}\n\n[1]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 4")
}

func resultIDs(s *Summary) []string {
	ids := make([]string, len(s.Results))
	for i, r := range s.Results {
		ids[i] = r.ID
	}
	return ids
}
