// Package value implements the refcounted value graph of spec.md §3/§4.2:
// tagged-union values (nil/int/bool/real/string/object/function/array),
// variables that bind names to values, class-like "sets" and their
// instances ("objects"), and dual-indexed arrays.
//
// Go has a garbage collector, so nothing here is required for memory
// safety — but spec.md §8's testable properties assert refcounts as an
// external contract ("For every value, refcount equals the number of live
// holders pointing at it"), so this package maintains real, observable
// reference counts rather than delegating entirely to the GC. See
// SPEC_FULL.md "[Value Graph]" for the grounding and the rationale for
// keeping refcounts in a GC'd language.
package value
