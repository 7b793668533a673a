package nudge

// Resolver ranks event keys so that only one nudge goes out per creator per
// evaluation cycle.
type Resolver struct {
	ranks map[string]int
}

// NewResolver creates a resolver from explicit ranks. Higher wins.
func NewResolver(ranks map[string]int) *Resolver {
	r := &Resolver{ranks: make(map[string]int, len(ranks))}
	for k, v := range ranks {
		r.ranks[k] = v
	}
	return r
}

// DefaultResolver returns the standard ranking.
func DefaultResolver() *Resolver {
	return NewResolver(map[string]int{
		KeyFirstRequest:         60,
		KeyFirstDealCompleted:   50,
		KeyFirstBrandVisit:      40,
		KeySecondVisitNoRequest: 30,
		KeyInactive7d:           20,
		KeyPostSignupWelcome:    10,
	})
}

// Rank returns the rank of key, 0 when unranked.
func (r *Resolver) Rank(key string) int {
	return r.ranks[key]
}

// Pick returns the highest-ranked key. Ties go to the lexicographically
// smallest key so the result never depends on input order.
func (r *Resolver) Pick(keys []string) (string, bool) {
	if len(keys) == 0 {
		return "", false
	}

	best := keys[0]
	for _, k := range keys[1:] {
		rk, rb := r.Rank(k), r.Rank(best)
		if rk > rb || (rk == rb && k < best) {
			best = k
		}
	}
	return best, true
}
