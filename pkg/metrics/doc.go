// Package metrics exports runtime and reconciler activity to Prometheus.
//
// A Collector implements reactive.Observer and renderer.Observer, so one
// value wires both layers:
//
//	c := metrics.New(metrics.WithRegistry(reg))
//	rt := reactive.NewRuntime(reactive.WithObserver(c))
//	r := renderer.New(doc, renderer.WithRuntime(rt), renderer.WithObserver(c))
//	doc.Subscribe(c.ObserveOp)
//
// Handler serves the registry in the Prometheus text format.
package metrics
