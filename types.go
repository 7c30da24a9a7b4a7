package jsonelem

// SlotPolicy controls how a composite key treats slotted children that are not
// instances of the expected element type.
type SlotPolicy int

const (
	SlotPermissive SlotPolicy = iota // Silently exclude non-conforming children.
	SlotStrict                       // Surface a slot_type error from the JSON accessor.
)

// EnumPolicy dictates when an enumeration alternative counts as a match.
type EnumPolicy int

const (
	EnumFirstDefined EnumPolicy = iota // First alternative yielding a defined value wins (0, "" and false match).
	EnumFirstTruthy                    // First alternative yielding a truthy value wins.
)

// CompileOptions bundles per-definition schema compilation policies.
type CompileOptions struct {
	Slot SlotPolicy
	Enum EnumPolicy
}

// AttrValue is a raw attribute read: Present reports whether the attribute
// exists on the element at all, independent of its (possibly empty) content.
type AttrValue struct {
	Raw     string
	Present bool
}

// Ptr renders the attribute in string-or-null form for the coercion
// primitives: nil when the attribute is absent.
func (a AttrValue) Ptr() *string {
	if !a.Present {
		return nil
	}
	raw := a.Raw
	return &raw
}

// Key binds a schema key name to its input; Required keys abort assembly when
// they resolve to undefined.
type Key struct {
	Name     string
	Input    Input
	Required bool
}
