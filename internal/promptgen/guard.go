package promptgen

import "strings"

// MaxAttempts bounds the compositions tried for one prompt.
const MaxAttempts = 10

const fingerprintSep = "\x1f"

// Fingerprint is the coarse identity used for duplicate suppression. Photo
// style, lighting, quality, resolution and parameters are left out, so two
// prompts that only differ there count as duplicates.
func Fingerprint(p Prompt) string {
	return strings.Join([]string{
		p.UniformName,
		p.Material,
		p.Element,
		p.Color,
		p.Industry,
		p.Gender,
	}, fingerprintSep)
}

// Result is the outcome of ComposeUnique.
type Result struct {
	Prompt   Prompt
	Attempts int
	// Exhausted reports that every attempt collided and Prompt is the last
	// duplicate composed.
	Exhausted bool
}

type fingerprintSet map[string]struct{}

func newFingerprintSet(prompts ...[]Prompt) fingerprintSet {
	n := 0
	for _, list := range prompts {
		n += len(list)
	}
	set := make(fingerprintSet, n)
	for _, list := range prompts {
		for _, p := range list {
			set.add(p)
		}
	}
	return set
}

func (s fingerprintSet) add(p Prompt) { s[Fingerprint(p)] = struct{}{} }

func (s fingerprintSet) has(p Prompt) bool {
	_, ok := s[Fingerprint(p)]
	return ok
}

// ComposeUnique composes until the fingerprint is not in existing, giving
// up after MaxAttempts. Each attempt picks its record afresh. Only input
// errors are returned.
func (e *Engine) ComposeUnique(req Request, existing []Prompt) (Result, error) {
	res, err := e.composeUnique(req, newFingerprintSet(existing))
	if err != nil {
		return Result{}, err
	}
	res.Prompt.ID = newIDSet(existing).claim(res.Prompt.ID)
	return res, nil
}

func (e *Engine) composeUnique(req Request, seen fingerprintSet) (Result, error) {
	var res Result
	for res.Attempts < MaxAttempts {
		rec, err := e.PickRecord(req)
		if err != nil {
			return Result{}, err
		}
		res.Prompt = e.Compose(req, rec)
		res.Attempts++
		if !seen.has(res.Prompt) {
			return res, nil
		}
	}

	res.Exhausted = true
	e.logger.Warn().
		Int("attempts", res.Attempts).
		Str("uniform_id", res.Prompt.UniformID).
		Msg("duplicate avoidance exhausted, keeping last prompt")
	return res, nil
}
