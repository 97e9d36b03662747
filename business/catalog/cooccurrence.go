package catalog

// Pair is an ordered (source, candidate) key. (a,b) says nothing about (b,a).
type Pair struct {
	Source    string
	Candidate string
}

// Affinity is one directional co-purchase strength in [0,1].
type Affinity struct {
	Source    string  `json:"source_item_id"`
	Candidate string  `json:"candidate_item_id"`
	Strength  float64 `json:"strength"`
}

// CooccurrenceTable is a sparse pair -> strength map. Absent pairs read as 0.
// A nil table behaves as an empty one.
type CooccurrenceTable struct {
	strength map[Pair]float64
	outgoing map[string][]string
	order    []Pair
}

// NewCooccurrenceTable keeps the last strength given for a repeated pair.
func NewCooccurrenceTable(affinities []Affinity) *CooccurrenceTable {
	t := &CooccurrenceTable{
		strength: make(map[Pair]float64, len(affinities)),
		outgoing: make(map[string][]string),
	}
	for _, a := range affinities {
		key := Pair{Source: a.Source, Candidate: a.Candidate}
		if _, exists := t.strength[key]; !exists {
			t.outgoing[a.Source] = append(t.outgoing[a.Source], a.Candidate)
			t.order = append(t.order, key)
		}
		t.strength[key] = a.Strength
	}
	return t
}

func (t *CooccurrenceTable) Strength(source, candidate string) float64 {
	if t == nil {
		return 0
	}
	return t.strength[Pair{Source: source, Candidate: candidate}]
}

// MaxFrom returns the highest affinity from any of sources to candidate.
func (t *CooccurrenceTable) MaxFrom(sources []string, candidate string) float64 {
	best := 0.0
	for _, s := range sources {
		if v := t.Strength(s, candidate); v > best {
			best = v
		}
	}
	return best
}

// Targets lists the candidates with an affinity from source, in load order.
func (t *CooccurrenceTable) Targets(source string) []string {
	if t == nil {
		return nil
	}
	return t.outgoing[source]
}

func (t *CooccurrenceTable) Pairs() []Affinity {
	if t == nil {
		return nil
	}
	out := make([]Affinity, 0, len(t.order))
	for _, p := range t.order {
		out = append(out, Affinity{Source: p.Source, Candidate: p.Candidate, Strength: t.strength[p]})
	}
	return out
}

func (t *CooccurrenceTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}
