package value

// SetDetail is spec.md §3's "Set detail": a class-like template — a name,
// a member table of default-bound variables keyed by name, and a
// refcount. A SetDetail dies (per spec.md §3 "Lifecycles") "when all
// objects and symbol bindings release it".
type SetDetail struct {
	Name    string
	Members map[string]*Variable
	refs    int32
}

// NewSetDetail creates a set detail at refcount 1.
func NewSetDetail(name string) *SetDetail {
	return &SetDetail{Name: name, Members: make(map[string]*Variable), refs: 1}
}

func (s *SetDetail) Retain() *SetDetail {
	if s == nil {
		return s
	}
	s.refs++
	return s
}

func (s *SetDetail) Release() {
	if s == nil {
		return
	}
	s.refs--
	if s.refs > 0 {
		return
	}
	for _, m := range s.Members {
		m.Unbind()
	}
}

// RefCount reports the set detail's current reference count.
func (s *SetDetail) RefCount() int32 { return s.refs }

// ObjectInstance is spec.md §3's "Object": an instance of a set, owning a
// per-instance member table seeded from the set's own member defaults.
type ObjectInstance struct {
	Set     *SetDetail
	Members map[string]*Variable
}

// NewObjectInstance creates an instance of set, retaining it, and copies
// the set's member defaults into a fresh per-instance table.
func NewObjectInstance(set *SetDetail) *ObjectInstance {
	o := &ObjectInstance{Set: set.Retain(), Members: make(map[string]*Variable, len(set.Members))}
	for name, proto := range set.Members {
		o.Members[name] = NewVariable(name, proto.Get())
	}
	return o
}

func (o *ObjectInstance) release() {
	for _, m := range o.Members {
		m.Unbind()
	}
	o.Set.Release()
}
