package workflow

import (
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-onboarding/internal/domain"
)

// ErrInvalidTransition indicates the requested transition is not declared for the current status.
var ErrInvalidTransition = errors.New("workflow: transition not allowed")

// Machine applies compiled transitions. It is immutable and safe for concurrent use.
type Machine struct {
	transitions map[string]Transition
}

var (
	defaultOnce    sync.Once
	defaultMachine *Machine
)

// Default returns the machine compiled from DefaultDefinition.
func Default() *Machine {
	defaultOnce.Do(func() {
		machine, err := Compile(DefaultDefinition())
		if err != nil {
			panic(fmt.Errorf("workflow: default definition: %w", err))
		}
		defaultMachine = machine
	})
	return defaultMachine
}

// Apply returns the status reached by running the named transition from the given status.
func (m *Machine) Apply(from domain.Status, name string) (domain.Status, error) {
	transition, ok := m.transitions[transitionKey(name, from)]
	if !ok {
		return from, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, name, from)
	}
	return transition.To, nil
}
