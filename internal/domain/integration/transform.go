package integration

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TransformFunc is a pure function applied to a resolved value.
// params holds the "|"-delimited arguments of the transform spec.
type TransformFunc func(value any, params []string) any

// Built-in transform names
const (
	TransformUpper   = "upper"
	TransformLower   = "lower"
	TransformTrim    = "trim"
	TransformDate    = "date"
	TransformMap     = "map"
	TransformPrefix  = "prefix"
	TransformSuffix  = "suffix"
	TransformReplace = "replace"
)

// Date output formats understood by the date transform
const (
	DateFormatISO = "YYYY-MM-DD"
	DateFormatEU  = "DD/MM/YYYY"
	DateFormatUS  = "MM/DD/YYYY"
)

var dateLayouts = map[string]string{
	DateFormatISO: "2006-01-02",
	DateFormatEU:  "02/01/2006",
	DateFormatUS:  "01/02/2006",
}

// dateInputLayouts are tried in order when parsing string dates
var dateInputLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// TransformRegistry holds the named transforms available to mapping rules.
// Register is expected at startup; Apply is safe for concurrent use.
type TransformRegistry struct {
	mu     sync.RWMutex
	funcs  map[string]TransformFunc
	logger *zap.Logger
}

// NewTransformRegistry creates a registry pre-loaded with the built-in transforms
func NewTransformRegistry(logger *zap.Logger) *TransformRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &TransformRegistry{
		funcs:  make(map[string]TransformFunc),
		logger: logger,
	}
	r.Register(TransformUpper, upperTransform)
	r.Register(TransformLower, lowerTransform)
	r.Register(TransformTrim, trimTransform)
	r.Register(TransformDate, dateTransform)
	r.Register(TransformMap, mapTransform)
	r.Register(TransformPrefix, prefixTransform)
	r.Register(TransformSuffix, suffixTransform)
	r.Register(TransformReplace, r.replaceTransform)
	return r
}

// Register adds or replaces a named transform
func (r *TransformRegistry) Register(name string, fn TransformFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Has reports whether a transform is registered under name
func (r *TransformRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.funcs[name]
	return ok
}

// Names returns the registered transform names in sorted order
func (r *TransformRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply parses a transform spec ("name" or "name:params") and applies it to value
func (r *TransformRegistry) Apply(spec string, value any) any {
	name, params := ParseTransformSpec(spec)
	return r.ApplyNamed(name, value, params)
}

// ApplyNamed applies the named transform. Unknown names are logged and the value
// is returned unchanged.
func (r *TransformRegistry) ApplyNamed(name string, value any, params []string) any {
	r.mu.RLock()
	fn, ok := r.funcs[name]
	r.mu.RUnlock()
	if !ok {
		r.logger.Warn("Unknown transform, value passed through",
			zap.String("transform", name),
		)
		return value
	}
	return fn(value, params)
}

// ParseTransformSpec splits "name:a|b" into its name and parameters
func ParseTransformSpec(spec string) (string, []string) {
	name, rawParams, found := strings.Cut(strings.TrimSpace(spec), ":")
	if !found {
		return name, nil
	}
	return name, strings.Split(rawParams, "|")
}

func upperTransform(value any, _ []string) any {
	return cases.Upper(language.Und).String(stringify(value))
}

func lowerTransform(value any, _ []string) any {
	return cases.Lower(language.Und).String(stringify(value))
}

func trimTransform(value any, _ []string) any {
	return strings.TrimSpace(stringify(value))
}

func dateTransform(value any, params []string) any {
	t, ok := parseDateValue(value)
	if !ok {
		return ""
	}
	format := DateFormatISO
	if len(params) > 0 {
		format = strings.TrimSpace(params[0])
	}
	layout, known := dateLayouts[format]
	if !known {
		layout = dateLayouts[DateFormatISO]
	}
	return t.UTC().Format(layout)
}

func mapTransform(value any, params []string) any {
	key := stringify(value)
	var fallback *string
	for _, pair := range params {
		from, to, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		if from == key {
			return to
		}
		if from == "*" && fallback == nil {
			v := to
			fallback = &v
		}
	}
	if fallback != nil {
		return *fallback
	}
	return value
}

func prefixTransform(value any, params []string) any {
	return strings.Join(params, "|") + stringify(value)
}

func suffixTransform(value any, params []string) any {
	return stringify(value) + strings.Join(params, "|")
}

func (r *TransformRegistry) replaceTransform(value any, params []string) any {
	if len(params) == 0 {
		return value
	}
	re, err := regexp.Compile(params[0])
	if err != nil {
		r.logger.Warn("Invalid replace pattern, value passed through",
			zap.String("pattern", params[0]),
			zap.Error(err),
		)
		return value
	}
	replacement := ""
	if len(params) > 1 {
		replacement = strings.Join(params[1:], "|")
	}
	return re.ReplaceAllString(stringify(value), replacement)
}

// stringify renders a scalar the way it would appear in JSON text, nil as ""
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case fmt.Stringer:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func parseDateValue(value any) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false
		}
		return *v, true
	case Date:
		return v.Time(), !v.IsZero()
	case *Date:
		if v == nil || v.IsZero() {
			return time.Time{}, false
		}
		return v.Time(), true
	case float64:
		return time.UnixMilli(int64(v)).UTC(), true
	case int64:
		return time.UnixMilli(v).UTC(), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateInputLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}
