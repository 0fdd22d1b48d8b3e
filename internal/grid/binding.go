package grid

// Binding connects one piece of grid state to its owner. When Value is set
// the caller owns the state (controlled) and the grid only reports changes
// through OnChange. When Value is nil the grid keeps the state itself.
// Initial seeds the internal state of an uncontrolled binding.
type Binding[T any] struct {
	Value    *T
	Initial  T
	OnChange func(T)
}

// Controlled returns a binding that reads *value and reports changes to onChange.
func Controlled[T any](value *T, onChange func(T)) Binding[T] {
	return Binding[T]{Value: value, OnChange: onChange}
}

// cell is the fallback storage used while a binding is uncontrolled.
type cell[T any] struct {
	value T
	set   bool
}

// Uncontrolled returns a binding seeded with initial whose state the grid keeps.
func Uncontrolled[T any](initial T, onChange func(T)) Binding[T] {
	return Binding[T]{Initial: initial, OnChange: onChange}
}

func (c *cell[T]) resolve(b Binding[T]) T {
	if b.Value != nil {
		return *b.Value
	}
	if !c.set {
		c.value = b.Initial
		c.set = true
	}
	return c.value
}

// update stores next in the fallback cell when uncontrolled and notifies the owner.
func (c *cell[T]) update(b Binding[T], next T) {
	if b.Value == nil {
		c.value = next
		c.set = true
	}
	if b.OnChange != nil {
		b.OnChange(next)
	}
}
