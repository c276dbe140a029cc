// Package ast defines the stack-node-type tag set the interpreter
// consumes: a fixed grammar of statement and expression forms, each
// with fixed child structure. The vm package never re-parses these
// nodes; it reifies one [Node] per partially-evaluated construct as a
// stack activation and resumes it across driver budget slices.
package ast
