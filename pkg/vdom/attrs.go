package vdom

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/vango-dev/reactor/pkg/reactive"
)

// Attr represents a single prop.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// A creates an Attr with the given key and value.
func A(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Key sets the reconciliation key. The key is converted with fmt.Sprint.
func Key(key any) Attr { return A("key", fmt.Sprint(key)) }

// ID sets the id attribute.
func ID(id string) Attr { return A("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return A("class", strings.Join(classes, " ")) }

// Style sets the style prop. Value is either a CSS string or a
// map[string]string of declarations.
func Style(style any) Attr { return A("style", style) }

// EventHandler receives the payload of a dispatched event.
type EventHandler func(payload any)

// On binds handler to event. The prop key is "on" followed by the
// capitalized event name ("click" becomes "onClick").
func On(event string, handler EventHandler) Attr {
	return A(EventProp(event), handler)
}

// EventProp returns the prop key for event.
func EventProp(event string) string {
	if event == "" {
		return "on"
	}
	r := []rune(event)
	r[0] = unicode.ToUpper(r[0])
	return "on" + string(r)
}

// IsEventProp reports whether key names an event handler prop: "on"
// followed by an upper-case letter.
func IsEventProp(key string) bool {
	if len(key) < 3 || !strings.HasPrefix(key, "on") {
		return false
	}
	return unicode.IsUpper(rune(key[2]))
}

// EventName returns the event name of an event prop ("onClick" → "click").
func EventName(key string) string {
	if !IsEventProp(key) {
		return ""
	}
	r := []rune(key[2:])
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// PropEqual is the change test for prop values. Maps and slices compare by
// identity; handlers always count as changed.
func PropEqual(a, b any) bool {
	return reactive.SameValue(a, b)
}
