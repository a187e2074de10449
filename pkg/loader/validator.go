package loader

import (
	"errors"
	"fmt"

	"digital.vasic.contracts/pkg/contract"
	"digital.vasic.contracts/pkg/rule"
)

// ValidationError represents a validation issue found in a suite
// file.
type ValidationError struct {
	Field   string
	Message string
	Index   int // -1 if not applicable
}

func (e ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("suites[%d].%s: %s", e.Index, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateFile decodes the file at path and checks every suite
// in it with the given rule validator, or the default engine
// when rules is nil. All problems are returned; none means the
// file is runnable.
func ValidateFile(path string, rules contract.RuleValidator) []ValidationError {
	file, err := ReadFile(path)
	if err != nil {
		return []ValidationError{{Field: "file", Message: err.Error(), Index: -1}}
	}
	return ValidateSuiteFile(file, rules)
}

// ValidateSuiteFile checks an already decoded file.
func ValidateSuiteFile(file *SuiteFile, rules contract.RuleValidator) []ValidationError {
	if rules == nil {
		rules = rule.NewEngine()
	}
	var errs []ValidationError

	switch file.Version {
	case "":
		errs = append(errs, ValidationError{
			Field: "version", Message: "version is required", Index: -1,
		})
	case SupportedVersion:
	default:
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %q", file.Version),
			Index:   -1,
		})
	}

	if len(file.Suites) == 0 {
		errs = append(errs, ValidationError{
			Field: "suites", Message: "at least one suite is required", Index: -1,
		})
	}

	names := make(map[string]bool)
	for i, s := range file.Suites {
		if s.Name != "" && names[s.Name] {
			errs = append(errs, ValidationError{
				Field: "name", Message: fmt.Sprintf("duplicate suite name: %s", s.Name), Index: i,
			})
		}
		names[s.Name] = true

		err := contract.Validate(s, rules)
		var fault *contract.FaultError
		if errors.As(err, &fault) {
			for _, p := range fault.Problems {
				errs = append(errs, ValidationError{Field: "suite", Message: p, Index: i})
			}
		} else if err != nil {
			errs = append(errs, ValidationError{Field: "suite", Message: err.Error(), Index: i})
		}
	}

	return errs
}
