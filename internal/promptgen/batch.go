package promptgen

// Batch is the result of GenerateBatch.
type Batch struct {
	Prompts []Prompt
	// Exhausted counts prompts that are known duplicates because the retry
	// budget ran out.
	Exhausted int
}

// GenerateBatch composes count prompts. Every prompt is checked against
// existing and against the prompts produced earlier in the same batch. An
// input error aborts the batch and nothing is returned.
func (e *Engine) GenerateBatch(req Request, count int, existing []Prompt) (Batch, error) {
	if count <= 0 {
		return Batch{Prompts: []Prompt{}}, nil
	}

	seen := newFingerprintSet(existing)
	ids := newIDSet(existing)
	out := Batch{Prompts: make([]Prompt, 0, count)}
	for i := 0; i < count; i++ {
		res, err := e.composeUnique(req, seen)
		if err != nil {
			return Batch{}, err
		}
		if res.Exhausted {
			out.Exhausted++
		}
		res.Prompt.ID = ids.claim(res.Prompt.ID)
		seen.add(res.Prompt)
		out.Prompts = append(out.Prompts, res.Prompt)
	}

	if out.Exhausted > 0 {
		e.logger.Warn().
			Int("count", count).
			Int("exhausted", out.Exhausted).
			Msg("batch contains duplicate prompts")
	}
	return out, nil
}

// idSet keeps prompt ids distinct. Prompts composed in the same millisecond
// draw from a window of only 1000 ids.
type idSet map[int64]struct{}

func newIDSet(prompts []Prompt) idSet {
	set := make(idSet, len(prompts))
	for _, p := range prompts {
		set[p.ID] = struct{}{}
	}
	return set
}

// claim returns id, or the next unused id above it, and marks it used.
func (s idSet) claim(id int64) int64 {
	for {
		if _, ok := s[id]; !ok {
			s[id] = struct{}{}
			return id
		}
		id++
	}
}
