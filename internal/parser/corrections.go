package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"tutor/ai/internal/models"
)

const (
	defaultCategory = "General"
	defaultDetail   = "Correction needed"
)

var (
	errNoCorrectionsSection = errors.New("corrections section not found")
	errUnexpectedLiteral    = errors.New("corrections literal is neither an array nor an object")
	errTrailingData         = errors.New("unexpected data after corrections literal")
)

// opening fence with optional language tag, or a bare closing fence
var fenceToken = regexp.MustCompile("```[A-Za-z0-9_+-]*")

// extractCorrections decodes the corrections section. A literal that cannot
// be decoded is an error; invalid elements inside a decodable literal are
// skipped one by one.
func extractCorrections(s sectionSet) ([]models.Correction, error) {
	content, ok := s.content(sectionCorrections)
	if !ok {
		return []models.Correction{}, errNoCorrectionsSection
	}

	items, err := decodeItems(stripFences(content))
	if err != nil {
		return nil, err
	}

	corrections := make([]models.Correction, 0, len(items))
	for _, item := range items {
		correction, err := toCorrection(item)
		if err != nil {
			continue
		}
		corrections = append(corrections, correction)
	}
	return corrections, nil
}

func stripFences(text string) string {
	return strings.TrimSpace(fenceToken.ReplaceAllString(text, ""))
}

// decodeItems parses payload as a JSON array, or a single object which is
// wrapped into a one-element slice.
func decodeItems(payload string) ([]any, error) {
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	var literal any
	if err := dec.Decode(&literal); err != nil {
		return nil, fmt.Errorf("decode corrections: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}

	switch v := literal.(type) {
	case []any:
		return v, nil
	case map[string]any:
		return []any{v}, nil
	default:
		return nil, errUnexpectedLiteral
	}
}

func toCorrection(item any) (models.Correction, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return models.Correction{}, fmt.Errorf("correction is %T, not an object", item)
	}

	original, err := stringField(obj, "original")
	if err != nil {
		return models.Correction{}, err
	}
	corrected, err := stringField(obj, "corrected")
	if err != nil {
		return models.Correction{}, err
	}
	errorType, err := stringField(obj, "error_type")
	if err != nil {
		return models.Correction{}, err
	}
	explanation, err := normalizeExplanation(obj["explanation"]).strings()
	if err != nil {
		return models.Correction{}, err
	}

	correction := models.Correction{
		Original:    original,
		Corrected:   corrected,
		Explanation: explanation,
		ErrorType:   models.ErrorType(errorType),
	}
	if err := correction.Validate(); err != nil {
		return models.Correction{}, err
	}
	return correction, nil
}

func stringField(obj map[string]any, key string) (string, error) {
	raw, ok := obj[key]
	if !ok {
		return "", fmt.Errorf("missing field %q", key)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("field %q is %T, not a string", key, raw)
	}
	return value, nil
}

// explanation is the canonical [category, detail] pair before validation.
type explanation [2]any

// normalizeExplanation maps every shape a model uses for the explanation
// field onto exactly two slots. Absent and null both mean "no explanation".
func normalizeExplanation(value any) explanation {
	switch v := value.(type) {
	case nil:
		return explanation{defaultCategory, defaultDetail}
	case string:
		return explanation{defaultCategory, v}
	case []any:
		switch len(v) {
		case 0:
			return explanation{defaultCategory, defaultDetail}
		case 1:
			return explanation{defaultCategory, v[0]}
		default:
			return explanation{v[0], v[1]}
		}
	default:
		return explanation{defaultCategory, stringify(v)}
	}
}

// strings fails when a slot holds anything but a string.
func (e explanation) strings() ([]string, error) {
	out := make([]string, 0, len(e))
	for i, slot := range e {
		s, ok := slot.(string)
		if !ok {
			return nil, fmt.Errorf("explanation[%d] is %T, not a string", i, slot)
		}
		out = append(out, s)
	}
	return out, nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case map[string]any:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(value)
}
