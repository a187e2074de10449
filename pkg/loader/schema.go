package loader

import "digital.vasic.contracts/pkg/contract"

// SupportedVersion is the suite file format version understood by
// this package.
const SupportedVersion = "1"

// SuiteFile is the document stored in a suite file. JSON, YAML
// and CUE files all decode into it.
type SuiteFile struct {
	Version  string           `json:"version" yaml:"version"`
	Name     string           `json:"name,omitempty" yaml:"name,omitempty"`
	Suites   []contract.Suite `json:"suites" yaml:"suites"`
	Metadata map[string]any   `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}
