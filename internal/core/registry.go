package core

import (
	"fmt"
	"sort"
	"sync"
)

// Adapter turns one input grammar into sections. Adapters are selected once
// per parse; everything downstream only sees Sections and their Layouts.
type Adapter interface {
	Grammar() Grammar
	// Detect reports whether the source uses this grammar.
	Detect(src *Source) bool
	// Sections groups the source rows. Section-level findings travel in
	// Section.Errors; the returned errors concern the file as a whole.
	Sections(src *Source) ([]Section, []ValidationError)
}

type registration struct {
	priority int
	adapter  Adapter
}

var (
	registry   = make(map[Grammar]registration)
	registryMu sync.RWMutex
)

// Register adds an adapter. Lower priority values are tried first.
// Panics if an adapter for the same grammar is already registered.
func Register(priority int, a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[a.Grammar()]; exists {
		panic(fmt.Sprintf("grammar already registered: %s", a.Grammar()))
	}
	registry[a.Grammar()] = registration{priority: priority, adapter: a}
}

// Get returns the adapter for a grammar.
func Get(g Grammar) (Adapter, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	reg, ok := registry[g]
	return reg.adapter, ok
}

// All returns the registered adapters in detection order.
func All() []Adapter {
	registryMu.RLock()
	defer registryMu.RUnlock()

	regs := make([]registration, 0, len(registry))
	for _, reg := range registry {
		regs = append(regs, reg)
	}
	sort.Slice(regs, func(i, j int) bool {
		if regs[i].priority != regs[j].priority {
			return regs[i].priority < regs[j].priority
		}
		return regs[i].adapter.Grammar() < regs[j].adapter.Grammar()
	})

	result := make([]Adapter, len(regs))
	for i, reg := range regs {
		result[i] = reg.adapter
	}
	return result
}

// Detect returns the first adapter, in detection order, that recognizes src.
func Detect(src *Source) (Adapter, bool) {
	for _, a := range All() {
		if a.Detect(src) {
			return a, true
		}
	}
	return nil, false
}
