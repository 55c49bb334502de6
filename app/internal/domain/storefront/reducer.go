package storefront

// Reduce is the only way a session's State changes.
func Reduce(s State, e Event) State {
	if e == nil {
		return s
	}
	return e.apply(s)
}
