// SPDX-License-Identifier: MPL-2.0

package whitelist

// Overlay is a Store that reads through to a base Store and keeps every write
// in memory. The base is never modified.
type Overlay struct {
	base    Store
	pending *MemoryStore
	created map[string]bool
}

// NewOverlay wraps base.
func NewOverlay(base Store) *Overlay {
	return &Overlay{base: base, pending: NewMemoryStore(), created: make(map[string]bool)}
}

// Exists implements Store.
func (o *Overlay) Exists(ns string) (bool, error) {
	if o.created[ns] {
		return true, nil
	}
	return o.base.Exists(ns)
}

// Read implements Store.
func (o *Overlay) Read(ns string) (Set, error) {
	set := make(Set)
	if !o.created[ns] {
		base, err := o.base.Read(ns)
		if err != nil {
			return nil, err
		}
		set = base
	}
	if ok, _ := o.pending.Exists(ns); ok {
		added, err := o.pending.Read(ns)
		if err != nil {
			return nil, err
		}
		set = set.Union(added)
	}
	return set, nil
}

// EnsureInitialized implements Store.
func (o *Overlay) EnsureInitialized(ns string) error {
	exists, err := o.Exists(ns)
	if err != nil || exists {
		return err
	}
	o.created[ns] = true
	return o.pending.EnsureInitialized(ns)
}

// AppendMissing implements Store.
func (o *Overlay) AppendMissing(ns string, required Set) ([]string, error) {
	current, err := o.Read(ns)
	if err != nil {
		return nil, err
	}
	missing := required.Difference(current)
	if len(missing) == 0 {
		return nil, nil
	}
	if err := o.pending.EnsureInitialized(ns); err != nil {
		return nil, err
	}
	return o.pending.AppendMissing(ns, missing)
}

// Created returns the namespaces whose whitelist would be created, sorted.
func (o *Overlay) Created() []string {
	var out []string
	for _, ns := range o.pending.Namespaces() {
		if o.created[ns] {
			out = append(out, ns)
		}
	}
	return out
}

// Pending returns the entries that would be appended, per namespace.
func (o *Overlay) Pending() map[string][]string {
	out := make(map[string][]string)
	for _, ns := range o.pending.Namespaces() {
		if e := o.pending.Entries(ns); len(e) > 0 {
			out[ns] = e
		}
	}
	return out
}
