package symdiff

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ============================================================
// Orchestrator
// ============================================================

// DefaultVariable is the differentiation variable used when none is given.
const DefaultVariable = "x"

// ErrorKind distinguishes the two failure classes for UI wording.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindMalformedInput
	KindUnsupportedExpression
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindMalformedInput:
		return "malformed_input"
	case KindUnsupportedExpression:
		return "unsupported_expression"
	}
	return "unknown"
}

// Result is the outcome of one derivative computation. On failure only
// Input, Variable and Err are set.
type Result struct {
	Input    string
	Variable string
	Tree     Expr   // parsed input
	First    *Forms // forms of the first derivative
	Second   *Forms // forms of the second derivative, when requested
	Err      error
}

// OK reports whether the computation succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Kind classifies Err.
func (r Result) Kind() ErrorKind {
	switch {
	case r.Err == nil:
		return KindNone
	case errors.Is(r.Err, ErrMalformedInput):
		return KindMalformedInput
	default:
		return KindUnsupportedExpression
	}
}

// Message is a single user-facing line describing the outcome.
func (r Result) Message() string {
	switch r.Kind() {
	case KindNone:
		return r.First.Best.Text
	case KindMalformedInput:
		var pe *ParseError
		if errors.As(r.Err, &pe) {
			return "Malformed input: " + pe.Msg
		}
		return "Malformed input: " + r.Err.Error()
	default:
		var ce *CalculationError
		if errors.As(r.Err, &ce) {
			return "Unsupported expression: " + ce.Msg
		}
		return "Unsupported expression: " + r.Err.Error()
	}
}

// Deriver runs parse, differentiate, clean, canonicalize and form
// selection. A Deriver is safe for concurrent use.
type Deriver struct {
	engine     *Engine
	simplifier Simplifier
	logger     *zap.Logger
	second     bool
}

// Option configures a Deriver.
type Option func(*Deriver)

// WithEngine replaces the default rule table.
func WithEngine(eng *Engine) Option { return func(d *Deriver) { d.engine = eng } }

// WithLogger sets the logger used for pipeline tracing.
func WithLogger(l *zap.Logger) Option { return func(d *Deriver) { d.logger = l } }

// WithMaxPasses caps the simplifier's fixed-point loops.
func WithMaxPasses(n int) Option { return func(d *Deriver) { d.simplifier.MaxPasses = n } }

// WithSecondDerivative also computes the second derivative.
func WithSecondDerivative(on bool) Option { return func(d *Deriver) { d.second = on } }

func NewDeriver(opts ...Option) *Deriver {
	d := &Deriver{engine: DefaultEngine(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	if d.engine == nil {
		d.engine = DefaultEngine()
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	return d
}

// ComputeDerivative differentiates text with respect to v using the
// default Deriver.
func ComputeDerivative(text, v string) Result {
	return NewDeriver().ComputeDerivative(text, v)
}

func (d *Deriver) ComputeDerivative(text, v string) Result {
	if v == "" {
		v = DefaultVariable
	}
	tree, err := d.parse(text, v)
	if err != nil {
		d.logger.Warn("derivative failed", zap.String("input", text), zap.String("variable", v), zap.Error(err))
		return Result{Input: text, Variable: v, Err: err}
	}
	res := d.DeriveExpr(tree, v)
	res.Input = text
	return res
}

func (d *Deriver) parse(text, v string) (Expr, error) {
	if err := ValidateVariable(v); err != nil {
		return nil, err
	}
	tree, err := Parse(text)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("parsed", zap.String("input", text), zap.Stringer("tree", tree))
	return tree, nil
}

// DeriveExpr differentiates an already parsed tree. Input is set to the
// serialized tree.
func (d *Deriver) DeriveExpr(tree Expr, v string) (res Result) {
	if v == "" {
		v = DefaultVariable
	}
	res = Result{Input: tree.String(), Variable: v}
	log := d.logger.With(zap.String("input", res.Input), zap.String("variable", v))
	defer func() {
		if p := recover(); p != nil {
			log.Error("derivative pipeline panicked", zap.Any("panic", p))
			res = Result{Input: tree.String(), Variable: v, Err: &CalculationError{Msg: fmt.Sprintf("internal error: %v", p)}}
		}
	}()

	if err := ValidateVariable(v); err != nil {
		res.Err = err
		return res
	}
	first, second, err := d.run(tree, v, log)
	if err != nil {
		log.Warn("derivative failed", zap.Error(err))
		res.Err = err
		return res
	}
	res.Tree, res.First, res.Second = tree, first, second
	return res
}

func (d *Deriver) run(tree Expr, v string, log *zap.Logger) (*Forms, *Forms, error) {
	first, err := d.derive(tree, v)
	if err != nil {
		return nil, nil, err
	}
	log.Debug("first derivative", zap.String("best", first.Best.Text), zap.Int("forms", len(first.All)))
	if !d.second {
		return first, nil, nil
	}

	second, err := d.derive(first.Canonical().Expr, v)
	if err != nil {
		return nil, nil, errors.Wrap(err, "second derivative")
	}
	log.Debug("second derivative", zap.String("best", second.Best.Text))
	return first, second, nil
}

func (d *Deriver) derive(e Expr, v string) (*Forms, error) {
	raw, err := d.engine.Differentiate(e, v)
	if err != nil {
		return nil, err
	}
	forms := d.simplifier.GenerateForms(raw)
	return &forms, nil
}

// Simplifier returns the simplifier configured for d.
func (d *Deriver) Simplifier() Simplifier { return d.simplifier }

// ValidateVariable checks that v is a single letter other than the
// constant e.
func ValidateVariable(v string) error {
	if utf8.RuneCountInString(v) != 1 {
		return &ParseError{Pos: -1, Msg: fmt.Sprintf("variable must be a single letter, got %q", v)}
	}
	r, _ := utf8.DecodeRuneInString(v)
	if !isLetter(r) || v == "e" {
		return &ParseError{Pos: -1, Msg: fmt.Sprintf("invalid variable %q", v)}
	}
	return nil
}

// ============================================================
// Batches
// ============================================================

// BatchItem is one input of DeriveBatch.
type BatchItem struct {
	Expr     string `json:"expr"`
	Variable string `json:"variable,omitempty"`
}

// DeriveBatch computes every item in order. The error combines the
// failures of all items; results are returned for every item regardless.
func (d *Deriver) DeriveBatch(items []BatchItem) ([]Result, error) {
	results := make([]Result, len(items))
	var errs error
	for i, item := range items {
		results[i] = d.ComputeDerivative(item.Expr, item.Variable)
		if err := results[i].Err; err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "item %d (%s)", i, strings.TrimSpace(item.Expr)))
		}
	}
	return results, errs
}
