package promptgen

// Range is an inclusive cardinality bound.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// normalized clamps negatives to zero and swaps an inverted range.
func (rg Range) normalized() Range {
	if rg.Min < 0 {
		rg.Min = 0
	}
	if rg.Max < 0 {
		rg.Max = 0
	}
	if rg.Min > rg.Max {
		rg.Min, rg.Max = rg.Max, rg.Min
	}
	return rg
}

// SampleMany returns forced (deduplicated, order kept) followed by a random
// subset of the remaining pool members. The subset size is a random value
// in rg minus len(forced), floored at zero and capped at what the pool can
// supply.
func SampleMany(r Rand, pool []string, rg Range, forced []string) []string {
	if len(pool) == 0 && len(forced) == 0 {
		return nil
	}
	rg = rg.normalized()

	out := make([]string, 0, rg.Max+len(forced))
	seen := make(map[string]struct{}, len(forced))
	for _, f := range forced {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}

	want := randBetween(r, rg.Min, rg.Max) - len(out)
	if want <= 0 || len(pool) == 0 {
		return out
	}

	available := make([]string, 0, len(pool))
	for _, p := range pool {
		if _, ok := seen[p]; ok {
			continue
		}
		available = append(available, p)
	}
	if want > len(available) {
		want = len(available)
	}

	// partial Fisher-Yates: only the first want slots need to be settled
	for i := 0; i < want; i++ {
		j := i + r.Intn(len(available)-i)
		available[i], available[j] = available[j], available[i]
	}
	return append(out, available[:want]...)
}

// SampleOne picks a uniform random element of pool, or fallback when pool
// is empty.
func SampleOne[T any](r Rand, pool []T, fallback T) T {
	if len(pool) == 0 {
		return fallback
	}
	return pool[r.Intn(len(pool))]
}
