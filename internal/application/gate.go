package application

import (
	"fmt"
	"sync"

	"github.com/felixgeelhaar/statekit"
)

// GenerationOp names one distinct generation call site. Each site carries
// its own in-flight flag, so a long synthesis never blocks a chat message;
// only a duplicate request from the same control is refused.
type GenerationOp string

const (
	GenSynthesize GenerationOp = "synthesize"
	GenOptimize   GenerationOp = "optimize"
	GenEnhance    GenerationOp = "enhance"
	GenSubtasks   GenerationOp = "subtasks"
	GenReport     GenerationOp = "report"
	GenDocs       GenerationOp = "docs"
	GenChat       GenerationOp = "chat"
	GenRefine     GenerationOp = "refine"
)

var generationOps = []GenerationOp{
	GenSynthesize, GenOptimize, GenEnhance, GenSubtasks,
	GenReport, GenDocs, GenChat, GenRefine,
}

// mutatesRegistry reports whether results from this call site are applied
// to the registry. Only these bump the staleness token.
func (op GenerationOp) mutatesRegistry() bool {
	switch op {
	case GenSynthesize, GenOptimize, GenEnhance, GenSubtasks, GenDocs:
		return true
	}
	return false
}

const (
	gateIdle     = "idle"
	gateInflight = "inflight"
)

const (
	gateEventBegin  = "begin"
	gateEventFinish = "finish"
)

// generationGate tracks an in-flight flag per call site.
type generationGate struct {
	mu    sync.Mutex
	sites map[GenerationOp]*statekit.Interpreter[struct{}]
}

func newSiteInterpreter(op GenerationOp) (*statekit.Interpreter[struct{}], error) {
	builder := statekit.NewMachine[struct{}]("generation-gate-" + string(op)).
		WithInitial(statekit.StateID(gateIdle))

	builder.State(gateIdle).
		On(gateEventBegin).Target(gateInflight).
		Done()

	builder.State(gateInflight).
		On(gateEventFinish).Target(gateIdle).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build generation gate for %s: %w", op, err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()
	return interpreter, nil
}

func newGenerationGate() (*generationGate, error) {
	sites := make(map[GenerationOp]*statekit.Interpreter[struct{}], len(generationOps))
	for _, op := range generationOps {
		interpreter, err := newSiteInterpreter(op)
		if err != nil {
			return nil, err
		}
		sites[op] = interpreter
	}
	return &generationGate{sites: sites}, nil
}

// Acquire moves one site to inflight, failing if that site already has a
// call running. Other sites are unaffected.
func (g *generationGate) Acquire(op GenerationOp) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	interpreter, ok := g.sites[op]
	if !ok {
		return fmt.Errorf("unknown generation call site %q", op)
	}
	if string(interpreter.State().Value) != gateIdle {
		return fmt.Errorf("a %s call is already in flight", op)
	}
	interpreter.Send(statekit.Event{Type: statekit.EventType(gateEventBegin)})
	return nil
}

// Release returns one site to idle.
func (g *generationGate) Release(op GenerationOp) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if interpreter, ok := g.sites[op]; ok {
		interpreter.Send(statekit.Event{Type: statekit.EventType(gateEventFinish)})
	}
}

// Busy reports whether the given site has a call in flight.
func (g *generationGate) Busy(op GenerationOp) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	interpreter, ok := g.sites[op]
	return ok && string(interpreter.State().Value) == gateInflight
}

// BusyAny reports whether any site has a call in flight.
func (g *generationGate) BusyAny() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, interpreter := range g.sites {
		if string(interpreter.State().Value) == gateInflight {
			return true
		}
	}
	return false
}
