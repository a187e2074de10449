package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Extensions lists the recognised suite file extensions.
var Extensions = []string{".json", ".yaml", ".yml", ".cue"}

// IsSuiteFile reports whether path has a suite file extension.
func IsSuiteFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ReadFile reads and decodes the suite file at path.
func ReadFile(path string) (*SuiteFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suite file %s: %w", path, err)
	}
	file, err := Decode(path, data)
	if err != nil {
		return nil, fmt.Errorf("parse suite file %s: %w", path, err)
	}
	return file, nil
}

// Decode parses data using the format implied by the extension
// of name. Unknown fields are rejected in every format.
func Decode(name string, data []byte) (*SuiteFile, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return decodeJSON(data)
	case ".yaml", ".yml":
		return decodeYAML(data)
	case ".cue":
		return decodeCUE(name, data)
	}
	return nil, fmt.Errorf("unsupported suite file extension %q", filepath.Ext(name))
}

func decodeJSON(data []byte) (*SuiteFile, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	dec.UseNumber()

	var file SuiteFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("invalid JSON: trailing data after document")
	}
	return &file, nil
}

func decodeYAML(data []byte) (*SuiteFile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file SuiteFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("invalid YAML: empty document")
		}
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return &file, nil
}

// decodeCUE evaluates the CUE source, requires every value to be
// concrete and decodes its JSON form with the JSON rules.
func decodeCUE(name string, data []byte) (*SuiteFile, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(name))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("invalid CUE: %w", err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("invalid CUE: %w", err)
	}

	raw, err := value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("invalid CUE: %w", err)
	}
	return decodeJSON(raw)
}
