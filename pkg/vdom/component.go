package vdom

import "github.com/vango-dev/reactor/pkg/reactive"

// RenderFunc produces the subtree of a component instance.
type RenderFunc func() *Node

// ComponentType describes a component. Every field is optional, but at least
// one of Setup or Render must yield a render function.
//
// Setup runs once per instance. It returns either a RenderFunc, which then
// becomes the render body, or state (reactive.Object or *reactive.Reactive)
// exposed to Render through RenderContext.State. Data, if set, builds the
// instance's local state and is made reactive.
type ComponentType struct {
	Name   string
	Setup  func(ctx *SetupContext) any
	Data   func() reactive.Object
	Render func(ctx *RenderContext) *Node

	Mounted   func(ctx *RenderContext)
	Updated   func(ctx *RenderContext)
	Unmounted func(ctx *RenderContext)
}

// Hook identifies a lifecycle point.
type Hook uint8

const (
	HookBeforeMount Hook = iota
	HookMounted
	HookBeforeUpdate
	HookUpdated
	HookUnmounted
)

// String returns the hook name.
func (h Hook) String() string {
	switch h {
	case HookBeforeMount:
		return "beforeMount"
	case HookMounted:
		return "mounted"
	case HookBeforeUpdate:
		return "beforeUpdate"
	case HookUpdated:
		return "updated"
	case HookUnmounted:
		return "unmounted"
	default:
		return "unknown"
	}
}

// SetupContext is handed to Setup. Props is the instance's reactive props
// object: reads inside render are tracked and parent updates trigger a
// re-render.
type SetupContext struct {
	Props *reactive.Reactive
	Slots Slots

	rt    *reactive.Runtime
	hooks map[Hook][]func()
}

// NewSetupContext creates a context over props.
func NewSetupContext(rt *reactive.Runtime, props *reactive.Reactive, slots Slots) *SetupContext {
	return &SetupContext{Props: props, Slots: slots, rt: rt}
}

// Runtime returns the runtime owning the instance, for creating refs and
// computeds.
func (c *SetupContext) Runtime() *reactive.Runtime {
	return c.rt
}

func (c *SetupContext) on(h Hook, fn func()) {
	if fn == nil {
		return
	}
	if c.hooks == nil {
		c.hooks = make(map[Hook][]func())
	}
	c.hooks[h] = append(c.hooks[h], fn)
}

// OnBeforeMount registers fn to run before the first render is mounted.
func (c *SetupContext) OnBeforeMount(fn func()) { c.on(HookBeforeMount, fn) }

// OnMounted registers fn to run after the first render is mounted.
func (c *SetupContext) OnMounted(fn func()) { c.on(HookMounted, fn) }

// OnBeforeUpdate registers fn to run before a re-render is patched.
func (c *SetupContext) OnBeforeUpdate(fn func()) { c.on(HookBeforeUpdate, fn) }

// OnUpdated registers fn to run after a re-render is patched.
func (c *SetupContext) OnUpdated(fn func()) { c.on(HookUpdated, fn) }

// OnUnmounted registers fn to run after the instance is unmounted.
func (c *SetupContext) OnUnmounted(fn func()) { c.on(HookUnmounted, fn) }

// Hooks returns the callbacks registered for h, in registration order.
func (c *SetupContext) Hooks(h Hook) []func() {
	return c.hooks[h]
}

// RenderContext is handed to ComponentType.Render and the option hooks.
type RenderContext struct {
	Props *reactive.Reactive
	State *reactive.Reactive
	Data  *reactive.Reactive
	Slots Slots
}

// Get resolves key against setup state, then data, then props.
func (c *RenderContext) Get(key string) any {
	for _, r := range []*reactive.Reactive{c.State, c.Data, c.Props} {
		if r != nil && r.Has(key) {
			return r.Get(key)
		}
	}
	return nil
}

// Slot renders the named slot, or returns nil if it was not passed.
func (c *RenderContext) Slot(name string) []*Node {
	if fn, ok := c.Slots[name]; ok && fn != nil {
		return fn()
	}
	return nil
}
