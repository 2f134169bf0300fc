package sampler

import (
	"fmt"
	"sort"
)

// Registry holds the frame sampling strategies and analysis hooks available
// to a detection run. It is constructed explicitly by the orchestrator's
// owner and passed by reference; its lifetime is tied to one pipeline run.
// Strategies and hooks are registered through the typed interfaces; there
// is no directory scanning or structural probing.
type Registry struct {
	samplers map[string]FrameSampler
	hooks    map[string]AnalysisHook
}

// NewRegistry returns a registry pre-populated with the built-in strategies
// (uniform, emotion, scene).
func NewRegistry() *Registry {
	r := &Registry{
		samplers: make(map[string]FrameSampler),
		hooks:    make(map[string]AnalysisHook),
	}
	// Built-ins can't collide on an empty registry.
	_ = r.Register(NewUniformSampler(), false)
	_ = r.Register(NewEmotionSampler(), false)
	_ = r.Register(NewSceneSampler(), false)
	return r
}

// Register adds a frame sampling strategy. A duplicate name is rejected
// unless overwrite is set.
func (r *Registry) Register(s FrameSampler, overwrite bool) error {
	if s == nil || s.Name() == "" {
		return fmt.Errorf("sampler must have a non-empty name")
	}
	if _, exists := r.samplers[s.Name()]; exists && !overwrite {
		return fmt.Errorf("frame sampler %q already registered", s.Name())
	}
	r.samplers[s.Name()] = s
	return nil
}

// Sampler looks up a strategy by name.
func (r *Registry) Sampler(name string) (FrameSampler, bool) {
	s, ok := r.samplers[name]
	return s, ok
}

// Names lists the registered strategy names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.samplers))
	for name := range r.samplers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterHook adds an analysis hook. A duplicate name is rejected unless
// overwrite is set.
func (r *Registry) RegisterHook(h AnalysisHook, overwrite bool) error {
	if h == nil || h.Name() == "" {
		return fmt.Errorf("analysis hook must have a non-empty name")
	}
	if _, exists := r.hooks[h.Name()]; exists && !overwrite {
		return fmt.Errorf("analysis hook %q already registered", h.Name())
	}
	r.hooks[h.Name()] = h
	return nil
}

// Hooks returns the registered hooks sorted by name, so hook execution
// order is deterministic across runs.
func (r *Registry) Hooks() []AnalysisHook {
	names := make([]string, 0, len(r.hooks))
	for name := range r.hooks {
		names = append(names, name)
	}
	sort.Strings(names)

	hooks := make([]AnalysisHook, 0, len(names))
	for _, name := range names {
		hooks = append(hooks, r.hooks[name])
	}
	return hooks
}
