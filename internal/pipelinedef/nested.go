package pipelinedef

import "github.com/buildkite/go-pipeline/ordered"

// NestedKind tags which NestedValue variant is populated.
type NestedKind int

const (
	NestedString NestedKind = iota
	NestedInt
	NestedBool
	NestedObject
	NestedArray
)

// NestedValue is the recursive sum used for plugin configuration,
// default_plugins entries, and any other free-form nested attribute
// (secrets, matrix, trigger build). Object preserves insertion order so
// emission is deterministic.
type NestedValue struct {
	Kind NestedKind

	String string
	Int    int
	Bool   bool
	Object *ordered.Map[string, NestedValue]
	Array  []NestedValue
}

// NewNestedString builds a NestedValue string leaf.
func NewNestedString(s string) NestedValue { return NestedValue{Kind: NestedString, String: s} }

// NewNestedInt builds a NestedValue integer leaf.
func NewNestedInt(i int) NestedValue { return NestedValue{Kind: NestedInt, Int: i} }

// NewNestedBool builds a NestedValue boolean leaf.
func NewNestedBool(b bool) NestedValue { return NestedValue{Kind: NestedBool, Bool: b} }

// NewNestedObject builds a NestedValue wrapping an ordered key/value map.
func NewNestedObject(m *ordered.Map[string, NestedValue]) NestedValue {
	return NestedValue{Kind: NestedObject, Object: m}
}

// NewNestedArray builds a NestedValue wrapping an ordered element list.
func NewNestedArray(elems []NestedValue) NestedValue {
	return NestedValue{Kind: NestedArray, Array: elems}
}
