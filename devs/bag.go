package devs

// Bag groups the named ports owned by one side (input or output) of a
// component. The engine core only ever needs these two operations; the
// per-port typed accessors used inside user transition functions live on
// the concrete bag struct each model defines for itself.
type Bag interface {
	// IsEmpty reports true iff every port in the bag is empty.
	IsEmpty() bool
	// Clear empties every port in the bag.
	Clear()
}

// EmptyBag is a Bag with no ports, used by root models that expose no
// parent-facing input or output (the top-level model in a run).
type EmptyBag struct{}

// IsEmpty always returns true: an EmptyBag has no ports to hold values.
func (EmptyBag) IsEmpty() bool { return true }

// Clear is a no-op: an EmptyBag has nothing to clear.
func (EmptyBag) Clear() {}
