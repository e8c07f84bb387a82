// Package descopt holds per-object-type rendering options.
//
// Options are registered with typed defaults and then overlaid by
// "domain:objtype" pattern rules, first the built-in table and then any
// user-configured rules, in declaration order. The registry is an explicit
// object passed into the generation entry point; there is no process-wide
// state.
package descopt

import (
	"log/slog"
	"reflect"
	"regexp"
	"sort"
	"sync"
)

// Options is the merged option set for one domain:objtype key.
type Options map[string]any

// Bool returns a boolean option, false when unset or mistyped.
func (o Options) Bool(name string) bool {
	v, _ := o[name].(bool)
	return v
}

// Int returns an integer option, 0 when unset or mistyped.
func (o Options) Int(name string) int {
	v, _ := o[name].(int)
	return v
}

// String returns a string option, "" when unset or mistyped.
func (o Options) String(name string) string {
	v, _ := o[name].(string)
	return v
}

// Domain returns the domain part of the key the options were resolved for.
func (o Options) Domain() string { return o.String("domain") }

// ObjectType returns the objtype part of the key.
func (o Options) ObjectType() string { return o.String("object_type") }

// Overlay associates a domain:objtype pattern with option overrides.
type Overlay struct {
	Pattern string
	Options map[string]any
}

type registeredOption struct {
	defaultValue any
}

type patternOverlay struct {
	re      *regexp.Regexp
	index   int
	options map[string]any
}

type indexedOverlay struct {
	index   int
	options map[string]any
}

// Registry resolves rendering options for domain:objtype keys.
type Registry struct {
	registered map[string]registeredOption

	exact    map[string][]indexedOverlay
	patterns []patternOverlay
	next     int

	mu    sync.Mutex
	cache map[string]Options
}

// NewRegistry creates a registry with the built-in options and the default
// per-objtype overlay table already applied.
func NewRegistry() *Registry {
	r := &Registry{
		registered: make(map[string]registeredOption),
		exact:      make(map[string][]indexedOverlay),
		cache:      make(map[string]Options),
	}

	r.Register("wrap_signatures_with_css", true)
	r.Register("wrap_signatures_column_limit", 68)
	r.Register("include_in_toc", true)
	r.Register("include_fields_in_toc", true)
	r.Register("generate_synopses", SynopsisFirstParagraph)
	r.Register("include_object_type_in_xref_tooltip", true)
	r.Register("toc_icon_text", "")
	r.Register("toc_icon_class", "")

	for _, d := range defaultOverlays {
		r.AddOverlay(d)
	}
	return r
}

// Synopsis generation modes.
const (
	SynopsisFirstParagraph = "first_paragraph"
	SynopsisFirstSentence  = "first_sentence"
	SynopsisNone           = ""
)

// Register adds an option with its default value. A second registration of
// the same name is rejected.
func (r *Registry) Register(name string, defaultValue any) {
	if _, ok := r.registered[name]; ok {
		slog.Error("Object description option already registered", "option", name)
		return
	}
	r.registered[name] = registeredOption{defaultValue: defaultValue}
}

// AddOverlay appends a pattern rule. Later overlays win over earlier ones
// for the keys they match. Unknown option names and type-mismatched values
// are dropped with an error log.
func (r *Registry) AddOverlay(o Overlay) {
	options := make(map[string]any, len(o.Options))
	for name, value := range o.Options {
		registered, ok := r.registered[name]
		if !ok {
			slog.Error("Undefined object description option",
				"option", name, "pattern", o.Pattern)
			continue
		}
		normalized, ok := coerce(value, registered.defaultValue)
		if !ok {
			slog.Error("Invalid value for object description option",
				"option", name, "pattern", o.Pattern, "value", value)
			continue
		}
		options[name] = normalized
	}

	idx := r.next
	r.next++

	if o.Pattern == regexp.QuoteMeta(o.Pattern) {
		// Pattern just matches a single string.
		r.exact[o.Pattern] = append(r.exact[o.Pattern], indexedOverlay{index: idx, options: options})
		return
	}
	re, err := regexp.Compile("^(?:" + o.Pattern + ")$")
	if err != nil {
		slog.Error("Invalid object description option pattern",
			"pattern", o.Pattern, "error", err)
		return
	}
	r.patterns = append(r.patterns, patternOverlay{re: re, index: idx, options: options})
}

// coerce checks that value has the same dynamic type as the registered
// default. Empty-string defaults accept any string.
func coerce(value, defaultValue any) (any, bool) {
	if value == nil {
		return defaultValue, true
	}
	if reflect.TypeOf(value) == reflect.TypeOf(defaultValue) {
		return value, true
	}
	return nil, false
}

// Lookup resolves the merged options for a domain and object type. Results
// are cached per key.
func (r *Registry) Lookup(domain, objectType string) Options {
	key := domain + ":" + objectType

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.cache[key]; ok {
		return cached
	}

	matches := append([]indexedOverlay(nil), r.exact[key]...)
	for _, p := range r.patterns {
		if p.re.MatchString(key) {
			matches = append(matches, indexedOverlay{index: p.index, options: p.options})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].index < matches[j].index
	})

	full := make(Options, len(r.registered)+2)
	for name, registered := range r.registered {
		full[name] = registered.defaultValue
	}
	for _, m := range matches {
		for name, value := range m.options {
			full[name] = value
		}
	}
	full["domain"] = domain
	full["object_type"] = objectType

	r.cache[key] = full
	return full
}
