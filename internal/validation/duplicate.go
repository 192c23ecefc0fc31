package validation

import (
	xmlerrors "github.com/OData/odata.net-sub101/errors"
	"github.com/OData/odata.net-sub101/internal/state"
)

// DuplicateNameChecker rejects a property name that recurs within one
// complex value. Nested complex values open their own scope with Enter and
// close it with Leave. The owner calls Reset after each collection item.
type DuplicateNameChecker struct {
	scopes state.StateStack[map[string]struct{}]
	spare  []map[string]struct{}
}

// NewDuplicateNameChecker returns a checker with one open scope.
func NewDuplicateNameChecker() *DuplicateNameChecker {
	c := &DuplicateNameChecker{scopes: state.NewStateStack[map[string]struct{}](4)}
	c.scopes.Push(make(map[string]struct{}))
	return c
}

// Add records name in the innermost scope.
func (c *DuplicateNameChecker) Add(name string) error {
	scope, _ := c.scopes.Peek()
	if _, ok := scope[name]; ok {
		return xmlerrors.NewValidationf(xmlerrors.ErrDuplicateProperty, "duplicate property %q", name).WithActual(name)
	}
	scope[name] = struct{}{}
	return nil
}

// Enter opens a scope for a nested complex value.
func (c *DuplicateNameChecker) Enter() {
	var scope map[string]struct{}
	if n := len(c.spare); n > 0 {
		scope = c.spare[n-1]
		c.spare = c.spare[:n-1]
	} else {
		scope = make(map[string]struct{})
	}
	c.scopes.Push(scope)
}

// Leave closes the innermost nested scope.
func (c *DuplicateNameChecker) Leave() {
	if c.scopes.Len() <= 1 {
		return
	}
	scope, _ := c.scopes.Pop()
	clear(scope)
	c.spare = append(c.spare, scope)
}

// Depth reports the number of nested scopes currently open.
func (c *DuplicateNameChecker) Depth() int {
	return c.scopes.Len() - 1
}

// Reset clears every recorded name and closes nested scopes.
func (c *DuplicateNameChecker) Reset() {
	for c.scopes.Len() > 1 {
		c.Leave()
	}
	scope, _ := c.scopes.Peek()
	clear(scope)
}
