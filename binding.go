package animix

import (
	"errors"
	"fmt"
	"strings"
)

// Target is an object graph whose numeric properties can be animated.
// Implementations resolve a parsed property path to an Accessor; the
// returned error should be a *BindingError naming the failing segment.
type Target interface {
	// TargetID identifies the target within a mixer's caches.
	TargetID() uint32
	// ResolveProperty resolves the path segments to a read/write accessor.
	ResolveProperty(path []string) (Accessor, error)
}

// Accessor reads and writes one resolved property as a fixed-length tuple.
// Get and Set fail when the underlying target changed shape after resolution.
type Accessor interface {
	Stride() int
	Get(dst []float64) error
	Set(src []float64) error
}

// ParsePath splits a dotted property path into segments.
func ParsePath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// PropertyBinding connects a property path to a target root. It does not own
// the target. The accessor is resolved on first use and cached; a failed
// resolution is retried on the next use, and a failed Get or Set drops the
// cached accessor so the path is resolved again.
type PropertyBinding struct {
	root     Target
	path     string
	segments []string
	stride   int
	accessor Accessor
}

// NewPropertyBinding creates an unresolved binding for path on root. stride is
// the number of components the bound property must have.
func NewPropertyBinding(root Target, path string, stride int) *PropertyBinding {
	return &PropertyBinding{
		root:     root,
		path:     path,
		segments: ParsePath(path),
		stride:   stride,
	}
}

// Root returns the bound target.
func (b *PropertyBinding) Root() Target { return b.root }

// Path returns the dotted property path.
func (b *PropertyBinding) Path() string { return b.path }

// Stride returns the expected number of components.
func (b *PropertyBinding) Stride() int { return b.stride }

// IsBound reports whether an accessor is currently cached.
func (b *PropertyBinding) IsBound() bool { return b.accessor != nil }

// Unbind drops the cached accessor.
func (b *PropertyBinding) Unbind() { b.accessor = nil }

// Resolve returns the cached accessor, resolving it first if needed.
func (b *PropertyBinding) Resolve() (Accessor, error) {
	if b.accessor != nil {
		return b.accessor, nil
	}
	if b.root == nil {
		return nil, &BindingError{Path: b.path, Err: ErrTargetDisposed}
	}
	if len(b.segments) == 0 {
		return nil, &BindingError{Path: b.path, Err: ErrEmptyPath}
	}
	acc, err := b.root.ResolveProperty(b.segments)
	if err != nil {
		return nil, b.wrap(err)
	}
	if acc.Stride() != b.stride {
		return nil, &BindingError{
			Path: b.path,
			Err:  fmt.Errorf("%w: property has %d components, binding expects %d", ErrStrideMismatch, acc.Stride(), b.stride),
		}
	}
	b.accessor = acc
	return acc, nil
}

// Get reads the current property value into dst[:Stride()].
func (b *PropertyBinding) Get(dst []float64) error {
	acc, err := b.Resolve()
	if err != nil {
		return err
	}
	if err := acc.Get(dst[:b.stride]); err != nil {
		b.accessor = nil
		return b.wrap(err)
	}
	return nil
}

// Set writes src[:Stride()] to the property.
func (b *PropertyBinding) Set(src []float64) error {
	acc, err := b.Resolve()
	if err != nil {
		return err
	}
	if err := acc.Set(src[:b.stride]); err != nil {
		b.accessor = nil
		return b.wrap(err)
	}
	return nil
}

// wrap turns err into a *BindingError carrying this binding's path.
func (b *PropertyBinding) wrap(err error) error {
	var be *BindingError
	if errors.As(err, &be) {
		if be.Path == "" {
			return &BindingError{Path: b.path, Segment: be.Segment, Err: be.Err}
		}
		return be
	}
	return &BindingError{Path: b.path, Err: err}
}
