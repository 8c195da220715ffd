package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	keySeparator    = regexp.MustCompile(`,\s?`)
	headerSeparator = regexp.MustCompile(`,\s?|/`)
)

type matcherEntry struct {
	name  string
	match func(header string) bool
	op    Operation
}

// Registry maps spreadsheet headers to the operation applied to their cells.
// Exact keys win over matchers; matchers are tried in registration order.
type Registry struct {
	exact    map[string]Operation
	order    []string
	matchers []matcherEntry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{exact: make(map[string]Operation)}
}

// Register binds op to every key in the comma-separated keys list.
func (r *Registry) Register(keys string, op Operation) *Registry {
	for _, key := range ExpandKeys(keys) {
		if _, exists := r.exact[key]; !exists {
			r.order = append(r.order, key)
		}
		r.exact[key] = op
	}
	return r
}

// RegisterMatch binds op to every header accepted by match.
func (r *Registry) RegisterMatch(name string, match func(header string) bool, op Operation) *Registry {
	r.matchers = append(r.matchers, matcherEntry{name: name, match: match, op: op})
	return r
}

// Lookup returns the operation registered for header.
func (r *Registry) Lookup(header string) (Operation, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, false
	}
	if op, ok := r.exact[header]; ok {
		return op, true
	}
	for _, entry := range r.matchers {
		if entry.match(header) {
			return entry.op, true
		}
	}
	return nil, false
}

// Column describes a registered header for documentation and tooling.
type Column struct {
	Header string `json:"header"`
	Kind   Kind   `json:"kind"`
}

// Columns lists exact headers in declaration order followed by matcher families.
func (r *Registry) Columns() []Column {
	columns := make([]Column, 0, len(r.order)+len(r.matchers))
	for _, key := range r.order {
		columns = append(columns, Column{Header: key, Kind: r.exact[key].Kind()})
	}
	for _, entry := range r.matchers {
		columns = append(columns, Column{Header: "<" + entry.name + ">", Kind: entry.op.Kind()})
	}
	return columns
}

// ExpandKeys splits a registry key list such as "P, F, WD" into its keys.
func ExpandKeys(keys string) []string {
	parts := keySeparator.Split(keys, -1)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ExpandHeader splits a shared spreadsheet header ("PL1-M, PL1-W" or
// "Phone/Phone0") into the header names that all receive the cell value.
func ExpandHeader(header string) []string {
	parts := headerSeparator.Split(header, -1)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GenerateKeys returns "name,name0,...,name{n-1}" for repeated column groups.
// With skipBare the unsuffixed name is omitted.
func GenerateKeys(name string, n int, skipBare bool) string {
	keys := make([]string, 0, n+1)
	if !skipBare {
		keys = append(keys, name)
	}
	for i := 0; i < n; i++ {
		keys = append(keys, name+strconv.Itoa(i))
	}
	return strings.Join(keys, ",")
}
