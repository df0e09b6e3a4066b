package pricing

// ruleSelector describes how to pick one rule out of a candidate set.
type ruleSelector[T any] struct {
	// preferred narrows the pool to tagged rules when at least one candidate is tagged.
	preferred func(T) bool
	// contains reports whether the rule's range covers the looked-up value.
	contains func(T) bool
	// lower is the lower bound used to find the open-ended rule.
	lower func(T) float64
	// openEnded guards the open-ended fallback; nil accepts it unconditionally.
	openEnded func(T) bool
}

// selectRule applies tag preference, then range containment, then falls back
// to the candidate with the highest lower bound.
func selectRule[T any](candidates []T, sel ruleSelector[T]) (T, bool) {
	var zero T
	if len(candidates) == 0 {
		return zero, false
	}

	pool := candidates
	if sel.preferred != nil {
		tagged := make([]T, 0, len(candidates))
		for _, c := range candidates {
			if sel.preferred(c) {
				tagged = append(tagged, c)
			}
		}
		if len(tagged) > 0 {
			pool = tagged
		}
	}

	for _, c := range pool {
		if sel.contains(c) {
			return c, true
		}
	}

	top := pool[0]
	for _, c := range pool[1:] {
		if sel.lower(c) > sel.lower(top) {
			top = c
		}
	}
	if sel.openEnded != nil && !sel.openEnded(top) {
		return zero, false
	}
	return top, true
}
