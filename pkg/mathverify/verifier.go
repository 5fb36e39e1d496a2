// Package mathverify extracts answer expressions from model output and checks
// them for mathematical equivalence against a reference answer.
package mathverify

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultTolerance      = 1e-6
	DefaultMaxInputLength = 100_000
)

var (
	// ErrInputTooLarge is returned when a text exceeds Options.MaxInputLength
	ErrInputTooLarge = errors.New("input exceeds maximum length")
	// ErrEvaluation is returned when the expression engine fails unexpectedly
	ErrEvaluation = errors.New("expression evaluation failed")
)

// probe points used to compare expressions with free variables
var probes = []float64{0.5, 1.3, 2.7, -1.9}

// Verifier is the answer-equivalence capability used by the accuracy reward
type Verifier interface {
	// Parse extracts zero or more normalized answers from free text
	Parse(text string) ([]Answer, error)
	// Verify reports whether any answer is equivalent to the reference
	Verify(gold string, answers []Answer) (bool, error)
}

// Answer is a normalized candidate answer
type Answer struct {
	// Raw is the text as extracted from the completion
	Raw string
	// Expr is the normalized expression
	Expr string
	// Value is set when the expression evaluates to a constant
	Value   float64
	Numeric bool
}

// String returns the canonical text form of the answer
func (a Answer) String() string {
	if a.Numeric {
		return strconv.FormatFloat(a.Value, 'f', -1, 64)
	}
	return strings.TrimSpace(a.Raw)
}

// Forms returns the distinct non-empty texts the answer can be matched by:
// the extracted text as written, then the canonical form.
func (a Answer) Forms() []string {
	var forms []string
	for _, f := range []string{strings.TrimSpace(a.Raw), a.String()} {
		if f == "" || (len(forms) > 0 && forms[0] == f) {
			continue
		}
		forms = append(forms, f)
	}
	return forms
}

// Options configures the default verifier
type Options struct {
	// Tolerance is the relative tolerance for numeric equality
	Tolerance float64 `mapstructure:"tolerance" yaml:"tolerance"`
	// MaxInputLength bounds the size of texts the verifier will look at
	MaxInputLength int `mapstructure:"max_input_length" yaml:"max_input_length"`
}

// MathVerifier is the default Verifier built on the govaluate engine
type MathVerifier struct {
	tolerance float64
	maxInput  int
}

// New creates a verifier. Zero options fall back to the defaults.
func New(opts Options) *MathVerifier {
	v := &MathVerifier{
		tolerance: opts.Tolerance,
		maxInput:  opts.MaxInputLength,
	}
	if v.tolerance <= 0 {
		v.tolerance = DefaultTolerance
	}
	if v.maxInput <= 0 {
		v.maxInput = DefaultMaxInputLength
	}
	return v
}

// Parse extracts the most specific answer expression in text
func (v *MathVerifier) Parse(text string) (answers []Answer, err error) {
	if len(text) > v.maxInput {
		return nil, fmt.Errorf("%w: %d bytes", ErrInputTooLarge, len(text))
	}
	defer recoverEvaluation(&err)

	raw, ok := extractCandidate(text)
	if !ok {
		return nil, nil
	}

	answer := Answer{Raw: raw, Expr: Normalize(raw)}
	if expr, cerr := compile(answer.Expr); cerr == nil && len(expr.vars) == 0 {
		answer.Value, answer.Numeric = expr.evaluate(nil)
	}

	return []Answer{answer}, nil
}

// Verify reports whether any of the answers is equivalent to gold
func (v *MathVerifier) Verify(gold string, answers []Answer) (ok bool, err error) {
	if len(gold) > v.maxInput {
		return false, fmt.Errorf("%w: gold has %d bytes", ErrInputTooLarge, len(gold))
	}
	defer recoverEvaluation(&err)

	goldExpr := Normalize(ExtractBoxedAnswer(gold))
	if goldExpr == "" {
		return false, nil
	}

	for _, a := range answers {
		if v.Equivalent(goldExpr, a.Expr) {
			return true, nil
		}
	}
	return false, nil
}

// Equivalent compares two normalized expressions. Tuples are compared
// element-wise in order.
func (v *MathVerifier) Equivalent(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if strings.EqualFold(a, b) {
		return true
	}

	left, right := splitTopLevel(a), splitTopLevel(b)
	if len(left) != len(right) {
		return false
	}
	if len(left) == 1 {
		return v.equivalentScalar(a, b)
	}
	for i := range left {
		if !v.equivalentScalar(left[i], right[i]) {
			return false
		}
	}
	return true
}

func (v *MathVerifier) equivalentScalar(a, b string) bool {
	if strings.EqualFold(a, b) {
		return true
	}

	ea, err := compile(a)
	if err != nil {
		return false
	}
	eb, err := compile(b)
	if err != nil {
		return false
	}

	if !sameVars(ea.vars, eb.vars) {
		return false
	}

	if len(ea.vars) == 0 {
		x, okA := ea.evaluate(nil)
		y, okB := eb.evaluate(nil)
		return okA && okB && v.close(x, y)
	}

	// symbolic: agree at every probe where both sides are defined
	checked := 0
	for i, p := range probes {
		bindings := make(map[string]float64, len(ea.vars))
		for j, name := range ea.vars {
			bindings[name] = p + 0.37*float64(i+j)
		}
		x, okA := ea.evaluate(bindings)
		y, okB := eb.evaluate(bindings)
		if okA != okB {
			return false
		}
		if !okA {
			continue
		}
		if !v.close(x, y) {
			return false
		}
		checked++
	}
	return checked > 0
}

func (v *MathVerifier) close(x, y float64) bool {
	scale := math.Max(1, math.Max(math.Abs(x), math.Abs(y)))
	return math.Abs(x-y) <= v.tolerance*scale
}

func sameVars(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func recoverEvaluation(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrEvaluation, r)
	}
}

// VerifierFuncs adapts plain functions to the Verifier interface
type VerifierFuncs struct {
	ParseFunc  func(text string) ([]Answer, error)
	VerifyFunc func(gold string, answers []Answer) (bool, error)
}

// Parse calls ParseFunc
func (f VerifierFuncs) Parse(text string) ([]Answer, error) {
	if f.ParseFunc == nil {
		return nil, nil
	}
	return f.ParseFunc(text)
}

// Verify calls VerifyFunc
func (f VerifierFuncs) Verify(gold string, answers []Answer) (bool, error) {
	if f.VerifyFunc == nil {
		return false, nil
	}
	return f.VerifyFunc(gold, answers)
}
