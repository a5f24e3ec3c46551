package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-playground/validator/v10"

	"github.com/confield/confield/internal/contract"
)

var validate = validator.New()

// directions is the sanctioned direction domain.
var directions = map[string]bool{
	"payable_by_us": true,
	"payable_to_us": true,
	"unknown":       true,
}

// normalizeValue coerces a decoded JSON value into the field's domain.
// nil stays nil (the model found no value). Anything outside the domain is
// an error, never silently coerced.
func normalizeValue(value any, kind contract.Kind) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch kind {
	case contract.KindNumber:
		n, ok := value.(float64)
		if !ok {
			return nil, fmt.Errorf("expected number, got %T", value)
		}
		return n, nil

	case contract.KindDirection:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", value)
		}
		if !directions[s] {
			return nil, fmt.Errorf("direction %q outside sanctioned values", s)
		}
		return s, nil

	case contract.KindISIN:
		s, err := nonBlankString(value)
		if err != nil || s == nil {
			return s, err
		}
		if err := validate.Var(*s, "len=12,alphanum,uppercase"); err != nil {
			return nil, fmt.Errorf("invalid ISIN %q", *s)
		}
		return *s, nil

	case contract.KindDate:
		s, err := nonBlankString(value)
		if err != nil || s == nil {
			return s, err
		}
		return normalizeDate(*s)

	default: // contract.KindText
		s, err := nonBlankString(value)
		if err != nil || s == nil {
			return s, err
		}
		return *s, nil
	}
}

// nonBlankString trims a decoded string. Blank collapses to nil, identical
// to the model returning null.
func nonBlankString(value any) (*string, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("expected string, got %T", value)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	return &s, nil
}

// normalizeDate reformats any recognizable date spelling to YYYY-MM-DD.
func normalizeDate(s string) (any, error) {
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return s, nil
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return nil, fmt.Errorf("unparseable date %q", s)
	}
	return t.Format("2006-01-02"), nil
}
