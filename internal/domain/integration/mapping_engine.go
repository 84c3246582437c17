package integration

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// RuleFailure describes a rule skipped during a transform
type RuleFailure struct {
	Index  int    `json:"index"`
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

// MappingResult is the destination payload plus the rules that were skipped
type MappingResult struct {
	Payload map[string]any `json:"payload"`
	Skipped []RuleFailure  `json:"skipped,omitempty"`
}

// MappingEngine applies template rules to canonical payloads.
// It holds no mutable state and is safe for concurrent use.
type MappingEngine struct {
	transforms *TransformRegistry
	logger     *zap.Logger
}

// NewMappingEngine creates a mapping engine backed by the given transforms
func NewMappingEngine(transforms *TransformRegistry, logger *zap.Logger) *MappingEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if transforms == nil {
		transforms = NewTransformRegistry(logger)
	}
	return &MappingEngine{transforms: transforms, logger: logger}
}

// Transform maps source into the template's destination shape
func (e *MappingEngine) Transform(tpl *MappingTemplate, source map[string]any) map[string]any {
	return e.TransformWithReport(tpl, source).Payload
}

// TransformWithReport maps source and reports the rules that failed.
// A failing rule is logged and skipped; the remaining rules still apply.
func (e *MappingEngine) TransformWithReport(tpl *MappingTemplate, source map[string]any) MappingResult {
	result := MappingResult{Payload: map[string]any{}}
	if tpl == nil {
		return result
	}
	if dst, ok := cloneValue(tpl.DestinationSchema).(map[string]any); ok && dst != nil {
		result.Payload = dst
	}

	for i, rule := range tpl.Rules {
		if err := e.applyRule(result.Payload, source, rule); err != nil {
			e.logger.Warn("Mapping rule skipped",
				zap.String("platform", tpl.Platform.String()),
				zap.Int("template_version", tpl.Version),
				zap.Int("rule_index", i),
				zap.String("from", rule.From),
				zap.String("to", rule.To),
				zap.Error(err),
			)
			result.Skipped = append(result.Skipped, RuleFailure{
				Index:  i,
				From:   rule.From,
				To:     rule.To,
				Reason: err.Error(),
			})
		}
	}
	return result
}

func (e *MappingEngine) applyRule(dst, source map[string]any, rule MappingRule) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rule panicked: %v", r)
		}
	}()

	if rule.Condition != "" {
		ok, condErr := evaluateCondition(source, rule.Condition)
		if condErr != nil {
			return condErr
		}
		if !ok {
			return nil
		}
	}

	from, err := ParsePath(rule.From)
	if err != nil {
		return err
	}
	to, err := ParsePath(rule.To)
	if err != nil {
		return err
	}

	value := from.Get(source)
	items, isList := value.([]any)

	if rule.Transform != "" {
		name, params := ParseTransformSpec(rule.Transform)
		switch {
		case from.HasWildcard() && isList:
			transformed := make([]any, len(items))
			for i, item := range items {
				transformed[i] = e.transforms.ApplyNamed(name, item, params)
			}
			items = transformed
			value = transformed
		case from.HasWildcard():
			// absent source array: nothing to transform
		default:
			value = e.transforms.ApplyNamed(name, value, params)
		}
	}

	if rule.Default != nil {
		switch {
		case isEmptyValue(value):
			// covers an absent wildcard source as well as an empty scalar
			value = cloneValue(rule.Default)
		case from.HasWildcard() && isList:
			withDefaults := make([]any, len(items))
			for i, item := range items {
				if isEmptyValue(item) {
					withDefaults[i] = cloneValue(rule.Default)
				} else {
					withDefaults[i] = item
				}
			}
			value = withDefaults
		}
	}

	return to.Set(dst, value)
}

// evaluateCondition resolves a path predicate. A leading "!" negates it.
func evaluateCondition(source map[string]any, condition string) (bool, error) {
	negate := strings.HasPrefix(condition, "!")
	p, err := ParsePath(strings.TrimPrefix(condition, "!"))
	if err != nil {
		return false, fmt.Errorf("condition: %w", err)
	}
	ok := isTruthy(p.Get(source))
	if negate {
		return !ok, nil
	}
	return ok, nil
}

// ValidateShape checks that every key present in both the schema and the payload
// agrees on array/object-ness. Scalar leaf types are not checked.
func (e *MappingEngine) ValidateShape(tpl *MappingTemplate, payload map[string]any) ValidationResult {
	if tpl == nil {
		return NewValidationResult([]string{"Template is required"})
	}
	var errs []string
	validateShape(tpl.DestinationSchema, payload, "", &errs)
	return NewValidationResult(errs)
}

func validateShape(schema, candidate map[string]any, prefix string, errs *[]string) {
	keys := make([]string, 0, len(schema))
	for k := range schema {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value, present := candidate[key]
		if !present || value == nil {
			continue
		}
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		switch s := schema[key].(type) {
		case []any:
			list, ok := asSlice(value)
			if !ok {
				*errs = append(*errs, fmt.Sprintf("%s: expected array", path))
				continue
			}
			if len(s) == 0 {
				continue
			}
			elemSchema, ok := s[0].(map[string]any)
			if !ok {
				continue
			}
			for i, item := range list {
				if item == nil {
					continue
				}
				obj, ok := item.(map[string]any)
				if !ok {
					*errs = append(*errs, fmt.Sprintf("%s[%d]: expected object", path, i))
					continue
				}
				validateShape(elemSchema, obj, fmt.Sprintf("%s[%d]", path, i), errs)
			}
		case map[string]any:
			obj, ok := value.(map[string]any)
			if !ok {
				*errs = append(*errs, fmt.Sprintf("%s: expected object", path))
				continue
			}
			validateShape(s, obj, path, errs)
		}
	}
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	default:
		return false
	}
}

func isTruthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case []any:
		for _, item := range t {
			if isTruthy(item) {
				return true
			}
		}
		return false
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// cloneValue deep-copies JSON-like trees of maps and slices
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			return map[string]any(nil)
		}
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		if t == nil {
			return []any(nil)
		}
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// ClonePayload returns a deep copy of a JSON-like payload
func ClonePayload(p map[string]any) map[string]any {
	if p == nil {
		return nil
	}
	return cloneValue(p).(map[string]any)
}
