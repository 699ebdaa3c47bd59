package renderer

import (
	"time"

	"github.com/vango-dev/reactor/pkg/vdom"
)

// Observer receives reconciliation events, typically for metrics.
type Observer interface {
	NodeMounted(kind vdom.Kind)
	NodeUnmounted(kind vdom.Kind)
	NodeMoved()
	ComponentRendered(name string, d time.Duration)
	RenderFailed(name string)
}

type nopObserver struct{}

func (nopObserver) NodeMounted(vdom.Kind) {}
func (nopObserver) NodeUnmounted(vdom.Kind) {}
func (nopObserver) NodeMoved() {}
func (nopObserver) ComponentRendered(string, time.Duration) {}
func (nopObserver) RenderFailed(string) {}
