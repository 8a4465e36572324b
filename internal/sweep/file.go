package sweep

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML document form of a sweep:
//
//	groups:
//	  - name: Simple
//	    alpha: 0.1
//	    kinds: [relu, elu]
//	    rows:
//	      - {data: nchw, diff: nChw8c, shape: [2, 8, 4, 4]}
type File struct {
	Groups []Group `yaml:"groups"`
}

// Parse decodes and validates a YAML sweep. Unknown fields are rejected.
func Parse(data []byte) ([]Group, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("sweep: empty document")
		}
		return nil, fmt.Errorf("sweep: decode: %w", err)
	}
	if len(f.Groups) == 0 {
		return nil, errors.New("sweep: no groups defined")
	}
	for i, g := range f.Groups {
		if g.Name == "" {
			return nil, fmt.Errorf("sweep: group %d has no name", i)
		}
		if len(g.Rows) == 0 {
			return nil, fmt.Errorf("sweep: group %s has no rows", g.Name)
		}
	}
	return f.Groups, nil
}

// LoadFile reads and parses a YAML sweep from path.
func LoadFile(path string) ([]Group, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}
	groups, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return groups, nil
}

// Marshal encodes groups as a YAML sweep that Parse accepts.
func Marshal(groups []Group) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(File{Groups: groups}); err != nil {
		return nil, fmt.Errorf("sweep: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("sweep: encode: %w", err)
	}
	return buf.Bytes(), nil
}
