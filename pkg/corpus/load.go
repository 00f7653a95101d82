package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/structiou/pkg/errors"
)

// maxLineSize bounds a single JSONL record.
const maxLineSize = 16 << 20

// manifest is the TOML layout: a list of [[example]] tables.
type manifest struct {
	Example []Example `toml:"example"`
}

// Load reads a corpus manifest. The encoding is chosen by extension (.jsonl,
// .ndjson, .json or .toml). Missing IDs are filled with "example-N".
func Load(path string) ([]Example, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "corpus %s not found", path)
		}
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	var examples []Example
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".jsonl", ".ndjson":
		examples, err = ReadJSONL(bytes.NewReader(data))
	case ".json":
		examples, err = decodeJSON(data)
	case ".toml":
		examples, err = decodeTOML(data)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported corpus format %q (want .jsonl, .json or .toml)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := normalizeIDs(examples); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return examples, nil
}

// ReadJSONL decodes one example per non-blank line.
func ReadJSONL(r io.Reader) ([]Example, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var out []Example
	line := 0
	for sc.Scan() {
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 {
			continue
		}
		var e Example
		if err := json.Unmarshal(text, &e); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d: invalid example", line)
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read jsonl")
	}
	return out, nil
}

func decodeJSON(data []byte) ([]Example, error) {
	var out []Example
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid json corpus")
	}
	return out, nil
}

func decodeTOML(data []byte) ([]Example, error) {
	var m manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid toml corpus")
	}
	return m.Example, nil
}
