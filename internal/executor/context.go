package executor

import (
	"fmt"
	"sync"

	"github.com/zclconf/go-cty/cty"
)

// Context is the transient state of one graph evaluation: the computed node
// outputs plus the external parameters bound for this invocation. It is
// created fresh per evaluation, never shared across evaluations, and
// discarded on completion.
//
// Outputs are write-once: a node's slot, once recorded, is never
// overwritten, and no node writes another node's slot. Writers therefore
// need no coordination beyond completion signaling; the mutex only guards
// the map itself.
type Context struct {
	mu      sync.RWMutex
	outputs map[string]cty.Value
	params  map[string]cty.Value
}

func newContext(params map[string]cty.Value) *Context {
	return &Context{
		outputs: make(map[string]cty.Value),
		params:  params,
	}
}

// SetOutput records a node's computed output. Overwriting an existing slot
// violates the write-once invariant and is rejected.
func (c *Context) SetOutput(id string, v cty.Value) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.outputs[id]; exists {
		return fmt.Errorf("output of node '%s' already recorded", id)
	}
	c.outputs[id] = v
	return nil
}

// Output returns the recorded output of a node.
func (c *Context) Output(id string) (cty.Value, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.outputs[id]
	return v, ok
}

// Param returns the bound external parameter with the given name. Declared
// defaults are applied by the binder before evaluation starts, so a missing
// entry here means the parameter is genuinely unbound.
func (c *Context) Param(name string) (cty.Value, bool) {
	v, ok := c.params[name]
	return v, ok
}
