package rubrics

// Result holds one reward array per scorer, index-aligned with the batch
type Result struct {
	Names    []string             `json:"scorers"`
	Rewards  map[string][]float64 `json:"rewards"`
	Outcomes map[string][]Outcome `json:"-"`
	Total    []float64            `json:"total"`
}

// NewResult allocates arrays of length n for every scorer in names
func NewResult(names []string, n int) *Result {
	r := &Result{
		Names:    append([]string(nil), names...),
		Rewards:  make(map[string][]float64, len(names)),
		Outcomes: make(map[string][]Outcome, len(names)),
		Total:    make([]float64, n),
	}
	for _, name := range names {
		r.Rewards[name] = make([]float64, n)
		r.Outcomes[name] = make([]Outcome, n)
	}
	return r
}

// Len returns the batch size
func (r *Result) Len() int {
	return len(r.Total)
}

// Set stores the outcomes of item i. Distinct indices may be set
// concurrently.
func (r *Result) Set(i int, outcomes []Outcome, total float64) {
	for _, o := range outcomes {
		r.Rewards[o.Scorer][i] = o.Reward()
		r.Outcomes[o.Scorer][i] = o
	}
	r.Total[i] = total
}

// Defaulted returns, per scorer, the indices whose outcome was defaulted
func (r *Result) Defaulted() map[string][]int {
	out := make(map[string][]int)
	for _, name := range r.Names {
		for i, o := range r.Outcomes[name] {
			if o.Defaulted {
				out[name] = append(out[name], i)
			}
		}
	}
	return out
}
