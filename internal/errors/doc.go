// Package errors provides structured, actionable error reports for reactor.
//
// Every report carries a code from the registry, a category, a short
// message and an optional longer detail, plus whatever the reporter knows:
// the component that failed, a suggestion, the wrapped cause.
//
// # Error Categories
//
// Errors are organized into categories:
//   - render: component setup and render failures
//   - scheduler: flush queue problems (runaway re-queues)
//   - protocol: malformed or unknown wire commands
//   - remote: viewer connection failures
//   - config: invalid configuration files or values
//   - fixture: unreadable tree fixtures
//
// # Usage
//
//	err := errors.New("R001").
//	    WithComponent("Counter").
//	    Wrap(cause)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR R001: Component render panicked
//	//
//	//   in component Counter
//	//
//	//   The render function panicked. The component was replaced by an
//	//   empty placeholder and the rest of the tree was left untouched.
package errors
