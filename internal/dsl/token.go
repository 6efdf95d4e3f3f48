// Package dsl parses the pipeline DSL's structured form (spec §6.1) into a
// pipelinedef.PipelineDef: a recursive-descent parser over a small
// expression language of braced object literals, fluent method chains,
// array literals, and macro calls (cmd!(...), bazel!(...), comptime!(...),
// runtime!(...), comptime_shell!(...)).
package dsl

type tokenType int

const (
	tEOF tokenType = iota
	tIllegal

	tIdent
	tString
	tInt
	tTrue
	tFalse

	tLBrace   // {
	tRBrace   // }
	tLParen   // (
	tRParen   // )
	tLBracket // [
	tRBracket // ]
	tColon    // :
	tComma    // ,
	tDot      // .
	tBang     // !
)

type tok struct {
	typ     tokenType
	literal string
	start   int
	end     int
}
