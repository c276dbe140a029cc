package value

// FunctionKind distinguishes the two callable forms of spec.md §3
// "Function detail".
type FunctionKind uint8

const (
	// Internal is a host-implemented callable.
	Internal FunctionKind = iota
	// External is a scripted function: an AST statement list.
	External
)

// Arg is one entry of a function's ordered argument list, with an
// optional default value supplied for omitted tail arguments (spec.md
// §4.3 "Function call protocol").
type Arg struct {
	Name    string
	Default *Value // nil if the argument is required
}

// InternalFunc is the host-side signature for an INTERNAL function: it
// takes an opaque job context and returns a return-expression or an
// error (spec.md §3: "host-implemented callable taking the job context,
// returning a return-expression").
type InternalFunc func(job any, args []*Variable) (any, error)

// Function is spec.md §3's "Function detail". Body and BoundExpr are
// declared as `any` here rather than a concrete AST type: the value
// package must not import the ast package (ast imports value for
// literal construction), so function bodies are threaded through as
// opaque payloads that the vm package type-asserts back to ast.Node.
type Function struct {
	refs int32
	Kind FunctionKind
	Name string
	Args []Arg

	Host InternalFunc // set iff Kind == Internal

	Body       any // *ast.Node statement list, set iff Kind == External
	BoundExpr  any // the bound AST expression the function closed over, if any
	ClosureEnv any // *vm.Scope captured at definition time, if any
}

// NewInternalFunction wraps a host callable as a Function at refcount 1.
func NewInternalFunction(name string, args []Arg, fn InternalFunc) *Function {
	return &Function{refs: 1, Kind: Internal, Name: name, Args: args, Host: fn}
}

// NewExternalFunction wraps a scripted AST body as a Function at
// refcount 1.
func NewExternalFunction(name string, args []Arg, body any) *Function {
	return &Function{refs: 1, Kind: External, Name: name, Args: args, Body: body}
}

func (f *Function) Retain() *Function {
	if f == nil {
		return f
	}
	f.refs++
	return f
}

// RefCount reports the function's current reference count.
func (f *Function) RefCount() int32 { return f.refs }

func (f *Function) release() {
	f.refs--
	// Arg defaults and ClosureEnv are owned by the defining scope, not by
	// the function detail itself, so there is nothing further to release.
}

// Arity reports the number of declared arguments.
func (f *Function) Arity() int { return len(f.Args) }
