package queue

// Filter narrows a scan by sync state and/or type. Zero value matches everything.
type Filter struct {
	Synced *bool
	Types  []Type
}

// Match reports whether the item satisfies the filter.
func (f Filter) Match(item *Item) bool {
	if f.Synced != nil && item.Synced != *f.Synced {
		return false
	}
	if len(f.Types) == 0 {
		return true
	}
	for _, t := range f.Types {
		if item.Type == t {
			return true
		}
	}
	return false
}

// SyncedOnly matches items confirmed by the backend.
func SyncedOnly() Filter {
	v := true
	return Filter{Synced: &v}
}

// UnsyncedOnly matches items still waiting on the backend.
func UnsyncedOnly() Filter {
	v := false
	return Filter{Synced: &v}
}
