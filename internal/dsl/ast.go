package dsl

import "github.com/buildkite/pipeline-validator/internal/span"

// valueKind tags which field of value is populated.
type valueKind int

const (
	vString valueKind = iota
	vInt
	vBool
	vIdent
	vArray
	vObject
	vMacro
	vChain
)

// value is a node of the raw parse tree: the DSL's expression language is
// small enough that one sum type covers string/int/bool literals, bare
// identifiers (including r#-raw ones and KnownList references), array and
// object literals, macro calls (cmd!(...), bazel!(...), ...), and fluent
// method chains (command(...).key(...).depends_on(...)).
type value struct {
	kind valueKind
	span span.Span

	str  string
	i    int
	b    bool

	ident string
	raw   bool // true if written as r#ident

	array []value

	// object carries both the field list of a braced literal and, when the
	// literal was a step's braced form (e.g. `command { ... }`), the
	// leading keyword in tag.
	object *object
	tag    string

	macro *macroCall
	chain *chain
}

type field struct {
	key     string
	keySpan span.Span
	val     value
}

type object struct {
	fields []field
}

func (o *object) get(key string) (value, bool) {
	if o == nil {
		return value{}, false
	}
	for _, f := range o.fields {
		if f.key == key {
			return f.val, true
		}
	}
	return value{}, false
}

type macroCall struct {
	name string
	args []value
	span span.Span
}

type call struct {
	name string
	args []value
	span span.Span
}

// chain is a step or builder expression: a head call, e.g. `command(...)`,
// followed by zero or more chained method calls, e.g. `.key(...)`.
type chain struct {
	head    call
	methods []call
}
