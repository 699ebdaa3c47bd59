package reactive

// Dep is the subscriber set of one reactive field (or of one Ref/Computed).
// Subscribers are kept in insertion order so that notification order is
// deterministic.
type Dep struct {
	subs  []*Effect
	index map[*Effect]int
}

func newDep() *Dep {
	return &Dep{index: make(map[*Effect]int)}
}

// Len returns the number of subscribers.
func (d *Dep) Len() int {
	if d == nil {
		return 0
	}
	return len(d.subs)
}

// Has reports whether e is subscribed.
func (d *Dep) Has(e *Effect) bool {
	if d == nil {
		return false
	}
	_, ok := d.index[e]
	return ok
}

// Subscribers returns a snapshot of the subscribers in subscription order.
func (d *Dep) Subscribers() []*Effect {
	if d == nil || len(d.subs) == 0 {
		return nil
	}
	out := make([]*Effect, len(d.subs))
	copy(out, d.subs)
	return out
}

func (d *Dep) add(e *Effect) bool {
	if _, ok := d.index[e]; ok {
		return false
	}
	d.index[e] = len(d.subs)
	d.subs = append(d.subs, e)
	return true
}

func (d *Dep) remove(e *Effect) {
	i, ok := d.index[e]
	if !ok {
		return
	}
	// Preserve order; sets are small.
	copy(d.subs[i:], d.subs[i+1:])
	d.subs[len(d.subs)-1] = nil
	d.subs = d.subs[:len(d.subs)-1]
	delete(d.index, e)
	for j := i; j < len(d.subs); j++ {
		d.index[d.subs[j]] = j
	}
}

// targetDeps maps a field key to its subscriber set.
type targetDeps map[any]*Dep

// DepStore maps target → field → subscribers.
//
// Targets are identified by the uint64 identity assigned when they were made
// reactive. Entries live until the target is disposed; empty field sets are
// pruned when their last subscriber leaves.
type DepStore struct {
	targets map[uint64]targetDeps
}

func newDepStore() *DepStore {
	return &DepStore{targets: make(map[uint64]targetDeps)}
}

// Lookup returns the subscriber set for target/key, or nil if none exists.
func (s *DepStore) Lookup(target uint64, key any) *Dep {
	fields, ok := s.targets[target]
	if !ok {
		return nil
	}
	return fields[key]
}

// ensure returns the subscriber set for target/key, creating it if needed.
func (s *DepStore) ensure(target uint64, key any) *Dep {
	fields, ok := s.targets[target]
	if !ok {
		fields = make(targetDeps)
		s.targets[target] = fields
	}
	dep, ok := fields[key]
	if !ok {
		dep = newDep()
		fields[key] = dep
	}
	return dep
}

// Targets returns the number of targets with at least one field entry.
func (s *DepStore) Targets() int {
	return len(s.targets)
}

// Fields returns the number of tracked fields for target.
func (s *DepStore) Fields(target uint64) int {
	return len(s.targets[target])
}

// prune drops an empty field set and, if it was the last one, the target.
func (s *DepStore) prune(target uint64, key any) {
	fields, ok := s.targets[target]
	if !ok {
		return
	}
	if dep, ok := fields[key]; ok && dep.Len() == 0 {
		delete(fields, key)
	}
	if len(fields) == 0 {
		delete(s.targets, target)
	}
}

// drop removes every entry for target.
func (s *DepStore) drop(target uint64) {
	delete(s.targets, target)
}
