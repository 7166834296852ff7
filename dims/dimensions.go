// Package dims provides a small value object with an ordered, restartable
// sequence view over its fields.
package dims

import "iter"

// Field name constants used by the sequence views.
const (
	FieldNameLength = "length"
	FieldNameWidth  = "width"
)

// Dimensions is a value object holding a length and a width.
// It is immutable after construction.
type Dimensions struct {
	length int
	width  int
}

// BuildDimensions is a factory method for Dimensions.
func BuildDimensions(length int, width int) Dimensions {
	return Dimensions{length: length, width: width}
}

// Length returns the length field.
func (d Dimensions) Length() int {
	return d.length
}

// Width returns the width field.
func (d Dimensions) Width() int {
	return d.width
}

// Fields returns a lazy, finite traversal over the value object's fields,
// yielding ("length", length) first and ("width", width) second.
//
// Each call returns a fresh traversal starting at the first field, so the
// sequence view is restartable and never exhausted by a previous iteration.
func (d Dimensions) Fields() iter.Seq2[string, int] {
	return func(yield func(string, int) bool) {
		if !yield(FieldNameLength, d.length) {
			return
		}

		yield(FieldNameWidth, d.width)
	}
}

// Entries returns the same traversal as Fields with each field wrapped in its
// own single-entry mapping: {"length": length} then {"width": width}.
func (d Dimensions) Entries() iter.Seq[map[string]int] {
	return func(yield func(map[string]int) bool) {
		for name, value := range d.Fields() {
			if !yield(map[string]int{name: value}) {
				return
			}
		}
	}
}
