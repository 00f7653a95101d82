package corpus

import (
	"fmt"

	"github.com/matzehuels/structiou/pkg/cache"
	"github.com/matzehuels/structiou/pkg/errors"
	"github.com/matzehuels/structiou/pkg/span"
	"github.com/matzehuels/structiou/pkg/tree"
)

// Example is one reference/predicted pair in a corpus.
type Example struct {
	ID                  string          `json:"id,omitempty" toml:"id"`
	Reference           string          `json:"reference" toml:"reference"`
	ReferenceBoundaries []span.Boundary `json:"reference_boundaries" toml:"reference_boundaries"`
	Predicted           string          `json:"predicted" toml:"predicted"`
	PredictedBoundaries []span.Boundary `json:"predicted_boundaries" toml:"predicted_boundaries"`

	// Flexible overrides Options.Flexible for this example when set.
	Flexible *bool `json:"flexible,omitempty" toml:"flexible"`
}

// Build parses both trees and attaches their boundaries.
func (e Example) Build() (ref, pred *span.Tree, err error) {
	ref, err = buildSide(e.Reference, e.ReferenceBoundaries)
	if err != nil {
		return nil, nil, fmt.Errorf("reference: %w", err)
	}
	pred, err = buildSide(e.Predicted, e.PredictedBoundaries)
	if err != nil {
		return nil, nil, fmt.Errorf("predicted: %w", err)
	}
	return ref, pred, nil
}

func buildSide(notation string, bs []span.Boundary) (*span.Tree, error) {
	t, err := tree.Parse(notation)
	if err != nil {
		return nil, err
	}
	return span.Build(t, bs)
}

// Hash returns the content hash of the trees and boundaries. The ID and the
// flexible override are not part of it.
func (e Example) Hash() (string, error) {
	h, err := cache.HashJSON(struct {
		Reference           string          `json:"reference"`
		ReferenceBoundaries []span.Boundary `json:"reference_boundaries"`
		Predicted           string          `json:"predicted"`
		PredictedBoundaries []span.Boundary `json:"predicted_boundaries"`
	}{e.Reference, e.ReferenceBoundaries, e.Predicted, e.PredictedBoundaries})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "hash example %q", e.ID)
	}
	return h, nil
}

// flexible resolves the per-example override against the run default.
func (e Example) flexible(def bool) bool {
	if e.Flexible != nil {
		return *e.Flexible
	}
	return def
}

// defaultID names the i-th example (zero-based) when it has no ID.
func defaultID(i int) string {
	return fmt.Sprintf("example-%d", i+1)
}

// normalizeIDs fills missing IDs and rejects invalid or duplicate ones.
func normalizeIDs(examples []Example) error {
	seen := make(map[string]int, len(examples))
	for i := range examples {
		if examples[i].ID == "" {
			examples[i].ID = defaultID(i)
		}
		id := examples[i].ID
		if err := errors.ValidateExampleID(id); err != nil {
			return fmt.Errorf("example %d: %w", i+1, err)
		}
		if prev, ok := seen[id]; ok {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate example id %q (examples %d and %d)", id, prev+1, i+1)
		}
		seen[id] = i
	}
	return nil
}
