package action

import (
	"fmt"

	"github.com/eliteGoblin/focusd/idlectl/internal/domain"
)

// Registry holds the idle actions and any helper overrides from settings.
type Registry struct {
	actions   map[domain.ActionID]IdleAction
	overrides map[domain.ActionID]domain.HelperSpec
}

// NewRegistry creates a registry with both default actions.
func NewRegistry() *Registry {
	return NewRegistryWithActions(NewShutdownAction(), NewScreenOffAction())
}

// NewRegistryWithActions creates a registry with custom actions (for testing).
func NewRegistryWithActions(actions ...IdleAction) *Registry {
	r := &Registry{
		actions:   make(map[domain.ActionID]IdleAction),
		overrides: make(map[domain.ActionID]domain.HelperSpec),
	}
	for _, a := range actions {
		r.Register(a)
	}
	return r
}

// Register adds an action to the registry.
func (r *Registry) Register(a IdleAction) {
	r.actions[a.ID()] = a
}

// Override replaces the helper of an action. Empty fields keep the default:
// a spec with only a kind switches mechanism, a spec with a command keeps the
// default identity unless it names its own.
func (r *Registry) Override(id domain.ActionID, spec domain.HelperSpec) {
	r.overrides[id] = spec
}

// Get returns an action by ID.
func (r *Registry) Get(id domain.ActionID) (IdleAction, error) {
	a, ok := r.actions[id]
	if !ok {
		return nil, fmt.Errorf("unknown idle action: %s", id)
	}
	return a, nil
}

// GetAll returns the registered actions in reconciliation order.
func (r *Registry) GetAll() []IdleAction {
	result := make([]IdleAction, 0, len(r.actions))
	for _, id := range domain.Actions {
		if a, ok := r.actions[id]; ok {
			result = append(result, a)
		}
	}
	return result
}

// Helper returns the effective helper spec of an action.
func (r *Registry) Helper(id domain.ActionID) (domain.HelperSpec, error) {
	a, err := r.Get(id)
	if err != nil {
		return domain.HelperSpec{}, err
	}
	spec := a.DefaultHelper()

	o, ok := r.overrides[id]
	if !ok {
		return spec, nil
	}
	if o.Kind != "" {
		spec.Kind = o.Kind
	}
	if len(o.Command) > 0 {
		spec.Command = o.Command
	}
	if o.MatchName != "" || len(o.MatchCmdline) > 0 {
		spec.MatchName = o.MatchName
		spec.MatchCmdline = o.MatchCmdline
	}
	return spec, nil
}
