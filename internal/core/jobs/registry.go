package jobs

import (
	"sort"
	"strings"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

// Registry maps job-type keys to immutable definitions. It is built once at
// startup and safe for concurrent reads.
type Registry struct {
	defs    []domain.JobDefinition
	byKey   map[string]int
	generic int
}

func NewRegistry() *Registry {
	return NewRegistryFrom(builtinDefinitions())
}

// NewRegistryFrom builds a registry from custom definitions. A generic
// definition is appended when the list lacks one.
func NewRegistryFrom(defs []domain.JobDefinition) *Registry {
	r := &Registry{byKey: make(map[string]int, len(defs)*3), generic: -1}
	for _, def := range defs {
		r.add(def)
	}
	if r.generic < 0 {
		for _, def := range builtinDefinitions() {
			if def.Key == GenericKey {
				r.add(def)
			}
		}
	}
	return r
}

func (r *Registry) add(def domain.JobDefinition) {
	idx := len(r.defs)
	r.defs = append(r.defs, def)
	r.byKey[Normalize(def.Key)] = idx
	for _, alias := range def.Aliases {
		if _, taken := r.byKey[Normalize(alias)]; !taken {
			r.byKey[Normalize(alias)] = idx
		}
	}
	if def.Key == GenericKey {
		r.generic = idx
	}
}

// Find returns the definition for key, or the generic definition when key is unknown.
func (r *Registry) Find(key string) domain.JobDefinition {
	def, _ := r.Lookup(key)
	return def
}

// Lookup is Find that also reports whether key matched a registered definition.
func (r *Registry) Lookup(key string) (domain.JobDefinition, bool) {
	if idx, ok := r.byKey[Normalize(key)]; ok {
		return r.defs[idx], idx != r.generic
	}
	return r.defs[r.generic], false
}

func (r *Registry) Generic() domain.JobDefinition {
	return r.defs[r.generic]
}

// Definitions returns all entries sorted by key.
func (r *Registry) Definitions() []domain.JobDefinition {
	out := append([]domain.JobDefinition(nil), r.defs...)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Match picks the definition whose keywords best cover the text. Ties go to
// the earlier definition, which keeps specific jobs ahead of generic ones.
func (r *Registry) Match(text string) (domain.JobDefinition, bool) {
	normalized := Normalize(text)
	bestIdx, bestScore := -1, 0
	for idx, def := range r.defs {
		if idx == r.generic {
			continue
		}
		score := 0
		for _, kw := range append([]string{def.Key}, def.Keywords...) {
			kw = Normalize(kw)
			if ContainsWord(normalized, kw) {
				score += 1 + strings.Count(kw, " ")
			}
		}
		if score > bestScore {
			bestIdx, bestScore = idx, score
		}
	}
	if bestIdx < 0 {
		return r.Generic(), false
	}
	return r.defs[bestIdx], true
}

// RequiredFieldsFor returns the required input for the job the text most likely describes.
func (r *Registry) RequiredFieldsFor(text string) []string {
	def, _ := r.Match(text)
	return append([]string(nil), def.RequiredInput...)
}
