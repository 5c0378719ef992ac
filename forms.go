package symdiff

import "unicode/utf8"

// FormKind names one display form of a simplified expression. The order of
// the constants breaks ties when selecting the best form.
type FormKind int

const (
	FormExpanded FormKind = iota
	FormSimplified
	FormFactored
	FormCleaned
)

func (k FormKind) String() string {
	switch k {
	case FormExpanded:
		return "expanded"
	case FormSimplified:
		return "simplified"
	case FormFactored:
		return "factored"
	case FormCleaned:
		return "cleaned"
	}
	return "unknown"
}

func (k FormKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Form is one rendering of an expression.
type Form struct {
	Kind  FormKind `json:"kind"`
	Expr  Expr     `json:"-"`
	Text  string   `json:"text"`
	LaTeX string   `json:"latex"`
	Nodes int      `json:"nodes"`
}

func newForm(kind FormKind, e Expr) Form {
	return Form{Kind: kind, Expr: e, Text: e.String(), LaTeX: e.LaTeX(), Nodes: NodeCount(e)}
}

// Forms holds the de-duplicated forms of an expression and the one chosen
// for display.
type Forms struct {
	Best Form   `json:"best"`
	All  []Form `json:"all"`
}

// GenerateForms builds the expanded, simplified, factored and cleaned
// forms of e. The expanded form is left out when it would exceed
// MaxExpandTerms.
func GenerateForms(e Expr) Forms { return defaultSimplifier.GenerateForms(e) }

func (s Simplifier) GenerateForms(e Expr) Forms {
	cleaned := s.Clean(e)
	simplified := s.Simplify(cleaned)
	var all []Form
	if expanded, ok := s.tryExpand(simplified); ok {
		all = append(all, newForm(FormExpanded, expanded))
	}
	all = append(all,
		newForm(FormSimplified, simplified),
		newForm(FormFactored, s.Factor(simplified)),
		newForm(FormCleaned, cleaned),
	)
	return Forms{Best: SelectBest(all), All: DedupeForms(all)}
}

// Canonical returns the best form that went through canonicalization,
// ignoring the cleaned form.
func (f *Forms) Canonical() Form {
	var canon []Form
	for _, form := range f.All {
		if form.Kind != FormCleaned {
			canon = append(canon, form)
		}
	}
	if len(canon) == 0 {
		return f.Best
	}
	return SelectBest(canon)
}

// SelectBest returns the form with the fewest nodes, then the shortest
// text, then the earliest kind.
func SelectBest(forms []Form) Form {
	var best Form
	for i, f := range forms {
		if i == 0 || better(f, best) {
			best = f
		}
	}
	return best
}

func better(a, b Form) bool {
	if a.Nodes != b.Nodes {
		return a.Nodes < b.Nodes
	}
	if la, lb := utf8.RuneCountInString(a.Text), utf8.RuneCountInString(b.Text); la != lb {
		return la < lb
	}
	return a.Kind < b.Kind
}

// DedupeForms keeps the first form of each canonical string, in order.
func DedupeForms(forms []Form) []Form {
	seen := make(map[string]bool, len(forms))
	out := make([]Form, 0, len(forms))
	for _, f := range forms {
		key := CanonicalString(f.Expr)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out
}
