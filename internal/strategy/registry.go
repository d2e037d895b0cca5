package strategy

import (
	"slices"
	"sync"

	"github.com/rxtech-lab/argo-quant/pkg/errors"
)

// Factory builds a strategy from parameter overrides.
type Factory func(params map[string]any) (Strategy, error)

// Registration describes one strategy known to a Registry.
type Registration struct {
	Name        string
	Description string
	New         Factory
	// Schema returns the JSON schema of the strategy's parameters.
	Schema func() (string, error)
}

// Registry maps strategy names to factories.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		mu:      sync.RWMutex{},
		entries: make(map[string]Registration),
	}
}

// DefaultRegistry returns a registry holding the built-in strategies.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	for _, reg := range builtins() {
		// names are unique
		_ = r.Register(reg)
	}

	return r
}

func builtins() []Registration {
	return []Registration{
		{
			Name:        CloseMomentumName,
			Description: "Long when the previous close rose, flat when it fell",
			New:         func(params map[string]any) (Strategy, error) { return NewCloseMomentum(params) },
			Schema:      func() (string, error) { return ToJSONSchema(DefaultCloseMomentumParams()) },
		},
		{
			Name:        DynamicBreakoutName,
			Description: "Long breakout of a volatility adaptive Bollinger and Donchian channel",
			New:         func(params map[string]any) (Strategy, error) { return NewDynamicBreakout(params) },
			Schema:      func() (string, error) { return ToJSONSchema(DefaultDynamicBreakoutParams()) },
		},
		{
			Name:        ThreeEMACrossoverName,
			Description: "Long on a fast over medium EMA crossover in an uptrend, with an accelerating trailing stop",
			New:         func(params map[string]any) (Strategy, error) { return NewThreeEMACrossover(params) },
			Schema:      func() (string, error) { return ToJSONSchema(DefaultThreeEMACrossoverParams()) },
		},
		{
			Name:        RangeBreakoutName,
			Description: "Short breakdown of a congested trading range with protective and ATR trailing stops",
			New:         func(params map[string]any) (Strategy, error) { return NewRangeBreakout(params) },
			Schema:      func() (string, error) { return ToJSONSchema(DefaultRangeBreakoutParams()) },
		},
		{
			Name:        TrafficJamName,
			Description: "Short fade of rising closes while ADX shows a ranging market",
			New:         func(params map[string]any) (Strategy, error) { return NewTrafficJam(params) },
			Schema:      func() (string, error) { return ToJSONSchema(DefaultTrafficJamParams()) },
		},
	}
}

// Register adds a strategy. Names must be unique.
func (r *Registry) Register(reg Registration) error {
	if reg.Name == "" || reg.New == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "registration needs a name and a factory")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[reg.Name]; exists {
		return errors.Newf(errors.ErrCodeStrategyAlreadyDefined, "strategy %q is already registered", reg.Name)
	}

	r.entries[reg.Name] = reg

	return nil
}

// Get returns the registration for name.
func (r *Registry) Get(name string) (Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.entries[name]
	if !ok {
		return Registration{}, errors.NewConfigurationError("strategy.name", "unknown strategy",
			errors.Newf(errors.ErrCodeUnsupportedStrategy, "strategy %q is not registered", name))
	}

	return reg, nil
}

// New builds the named strategy with the given parameter overrides.
func (r *Registry) New(name string, params map[string]any) (Strategy, error) {
	reg, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	return reg.New(params)
}

// Schema returns the parameter schema of the named strategy.
func (r *Registry) Schema(name string) (string, error) {
	reg, err := r.Get(name)
	if err != nil {
		return "", err
	}

	if reg.Schema == nil {
		return "{}", nil
	}

	return reg.Schema()
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
