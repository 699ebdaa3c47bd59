package renderer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	rerrors "github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// Instance is the live state of one mounted component. Instances live in the
// renderer's arena; nodes refer to them by uid.
type Instance struct {
	r   *Renderer
	uid uint64
	typ *vdom.ComponentType

	vnode *vdom.Node
	props *reactive.Reactive
	state *reactive.Reactive
	data  *reactive.Reactive

	setup  *vdom.SetupContext
	ctx    *vdom.RenderContext
	render vdom.RenderFunc

	subTree *vdom.Node
	effect  *reactive.Effect

	container any
	anchor    any

	mounted   bool
	unmounted bool
	renders   int
}

// UID returns the arena index.
func (inst *Instance) UID() uint64 { return inst.uid }

// Name returns the component name.
func (inst *Instance) Name() string {
	if inst.typ == nil || inst.typ.Name == "" {
		return "Anonymous"
	}
	return inst.typ.Name
}

// Props returns the reactive props object.
func (inst *Instance) Props() *reactive.Reactive { return inst.props }

// State returns the state returned by Setup, or nil.
func (inst *Instance) State() *reactive.Reactive { return inst.state }

// Data returns the reactive data object, or nil.
func (inst *Instance) Data() *reactive.Reactive { return inst.data }

// SubTree returns the last rendered subtree.
func (inst *Instance) SubTree() *vdom.Node { return inst.subTree }

// Effect returns the render effect.
func (inst *Instance) Effect() *reactive.Effect { return inst.effect }

// Mounted reports whether the first render has been mounted.
func (inst *Instance) Mounted() bool { return inst.mounted && !inst.unmounted }

// Renders returns how many times the render function ran.
func (inst *Instance) Renders() int { return inst.renders }

// Update queues a re-render on the scheduler.
func (inst *Instance) Update() {
	if inst.unmounted || inst.effect == nil {
		return
	}
	inst.r.rt.Scheduler().Queue(inst.effect)
}

func (r *Renderer) processComponent(n1, n2 *vdom.Node, container, anchor any) {
	if n1 == nil {
		r.mountComponent(n2, container, anchor)
		return
	}
	r.updateComponent(n1, n2)
}

func (r *Renderer) mountComponent(n *vdom.Node, container, anchor any) {
	r.nextUID++
	inst := &Instance{
		r:         r,
		uid:       r.nextUID,
		typ:       n.Type,
		vnode:     n,
		container: container,
		anchor:    anchor,
	}
	r.instances[inst.uid] = inst
	n.Instance = inst.uid

	r.setupComponent(inst)
	r.setupRenderEffect(inst)
	r.observer.NodeMounted(vdom.KindComponent)
}

// setupComponent resolves props, setup state, data and the render function.
func (r *Renderer) setupComponent(inst *Instance) {
	n := inst.vnode
	inst.props = r.rt.Reactive(copyProps(n.Props))
	inst.setup = vdom.NewSetupContext(r.rt, inst.props, n.Slots)
	inst.ctx = &vdom.RenderContext{Props: inst.props, Slots: n.Slots}

	typ := inst.typ
	if typ == nil {
		r.reportError(rerrors.New("R002").WithComponent(inst.Name()))
		inst.render = placeholder
		return
	}

	r.rt.Untracked(func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.reportError(rerrors.FromPanic(rec, "R003").WithComponent(inst.Name()))
				inst.render = placeholder
			}
		}()
		if typ.Setup != nil {
			inst.applySetupResult(typ.Setup(inst.setup))
		}
		if typ.Data != nil {
			inst.data = r.rt.Reactive(typ.Data())
		}
	})
	inst.ctx.State = inst.state
	inst.ctx.Data = inst.data

	if inst.render == nil && typ.Render != nil {
		inst.render = func() *vdom.Node { return typ.Render(inst.ctx) }
	}
	if inst.render == nil {
		r.reportError(rerrors.New("R002").WithComponent(inst.Name()))
		inst.render = placeholder
	}
}

func (inst *Instance) applySetupResult(result any) {
	switch v := result.(type) {
	case nil:
	case vdom.RenderFunc:
		inst.render = v
	case func() *vdom.Node:
		inst.render = v
	case *reactive.Reactive:
		inst.state = v
	case reactive.Object:
		inst.state = inst.r.rt.Reactive(v)
	case map[string]any:
		inst.state = inst.r.rt.Reactive(reactive.Object(v))
	default:
		inst.r.logger.Warn("setup returned unsupported value",
			"component", inst.Name(), "type", fmt.Sprintf("%T", v))
	}
}

func (r *Renderer) setupRenderEffect(inst *Instance) {
	inst.effect = r.rt.NewEffect(func() {
		r.componentEffect(inst)
	},
		reactive.Lazy(),
		reactive.EffectName("component:"+inst.Name()),
		reactive.WithScheduler(func() {
			r.rt.Scheduler().Queue(inst.effect)
		}),
	)
	inst.effect.Run()
}

// componentEffect is the body of the render effect: first mount, then
// re-render and patch on every later run.
func (r *Renderer) componentEffect(inst *Instance) {
	if inst.unmounted {
		return
	}
	if !inst.mounted {
		r.callHooks(inst, vdom.HookBeforeMount)
		tree := r.renderComponentRoot(inst)
		inst.subTree = tree
		r.Patch(nil, tree, inst.container, inst.anchor)
		inst.mounted = true
		r.callHooks(inst, vdom.HookMounted)
		return
	}

	_, span := r.tracer.Start(context.Background(), "reactor.component.update",
		trace.WithAttributes(
			attribute.String("reactor.component", inst.Name()),
			attribute.Int64("reactor.uid", int64(inst.uid)),
		))
	defer span.End()

	r.callHooks(inst, vdom.HookBeforeUpdate)
	tree := r.renderComponentRoot(inst)
	prev := inst.subTree
	inst.subTree = tree
	r.Patch(prev, tree, inst.container, nil)
	r.callHooks(inst, vdom.HookUpdated)
}

// renderComponentRoot runs the render function. A panic is reported and the
// component renders an empty comment instead, keeping its position.
func (r *Renderer) renderComponentRoot(inst *Instance) (tree *vdom.Node) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			r.reportError(rerrors.FromPanic(rec, "R001").WithComponent(inst.Name()))
			tree = placeholder()
		}
	}()
	inst.renders++
	tree = inst.render()
	if tree == nil {
		tree = placeholder()
	}
	r.observer.ComponentRendered(inst.Name(), time.Since(start))
	return tree
}

// updateComponent moves the instance onto n2 and pushes changed props into
// the reactive props object. The instance re-renders right away when props
// or slots changed.
func (r *Renderer) updateComponent(n1, n2 *vdom.Node) {
	inst := r.instances[n1.Instance]
	if inst == nil {
		r.logger.Error("component node without live instance", "component", n2.Name(), "uid", n1.Instance)
		return
	}
	n2.Instance = inst.uid
	inst.vnode = n2

	changed := r.updateProps(inst, n2.Props)
	hasSlots := n1.Slots != nil || n2.Slots != nil
	inst.setup.Slots = n2.Slots
	inst.ctx.Slots = n2.Slots

	if changed || hasSlots {
		r.rt.Scheduler().Invalidate(inst.effect)
		inst.effect.Run()
	}
}

func (r *Renderer) updateProps(inst *Instance, next vdom.Props) bool {
	raw := inst.props.Raw()
	changed := false
	for _, key := range sortedKeys(next) {
		prev, had := raw[key]
		if !had || !vdom.PropEqual(prev, next[key]) {
			inst.props.Set(key, next[key])
			changed = true
		}
	}
	var removed []string
	for key := range raw {
		if _, ok := next[key]; !ok {
			removed = append(removed, key)
		}
	}
	sort.Strings(removed)
	for _, key := range removed {
		inst.props.Delete(key)
		changed = true
	}
	return changed
}

func (r *Renderer) unmountComponent(node *vdom.Node, doRemove bool) {
	inst := r.instances[node.Instance]
	if inst == nil {
		return
	}
	inst.unmounted = true
	if inst.effect != nil {
		inst.effect.Stop()
	}
	r.unmount(inst.subTree, doRemove)
	r.callHooks(inst, vdom.HookUnmounted)

	r.rt.Dispose(inst.props)
	if inst.data != nil {
		r.rt.Dispose(inst.data)
	}
	delete(r.instances, inst.uid)
	node.Instance = 0
}

// callHooks runs the hooks registered for h untracked. A panicking hook is
// reported and does not stop the others.
func (r *Renderer) callHooks(inst *Instance, h vdom.Hook) {
	hooks := inst.setup.Hooks(h)
	if inst.typ != nil {
		var opt func(*vdom.RenderContext)
		switch h {
		case vdom.HookMounted:
			opt = inst.typ.Mounted
		case vdom.HookUpdated:
			opt = inst.typ.Updated
		case vdom.HookUnmounted:
			opt = inst.typ.Unmounted
		}
		if opt != nil {
			hooks = append(hooks[:len(hooks):len(hooks)], func() { opt(inst.ctx) })
		}
	}
	for _, fn := range hooks {
		r.rt.Untracked(func() {
			defer func() {
				if rec := recover(); rec != nil {
					r.reportError(rerrors.FromPanic(rec, "R004").
						WithComponent(inst.Name()).
						WithDetail("hook " + h.String() + " panicked"))
				}
			}()
			fn()
		})
	}
}

func (r *Renderer) reportError(err *rerrors.ReactorError) {
	r.logger.Error("component error",
		"code", err.Code,
		"component", err.Component,
		"error", err.Unwrap(),
	)
	r.observer.RenderFailed(err.Component)
	if r.onError != nil {
		r.onError(err, err.Component)
	}
}

func placeholder() *vdom.Node {
	return vdom.Comment("")
}

func copyProps(props vdom.Props) reactive.Object {
	obj := make(reactive.Object, len(props))
	for k, v := range props {
		obj[k] = v
	}
	return obj
}
