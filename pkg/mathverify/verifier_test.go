package mathverify

import (
	"errors"
	"strings"
	"testing"
)

func TestMathVerifier_ParseAndVerify(t *testing.T) {
	tests := []struct {
		name string
		text string
		gold string
		want bool
	}{
		{"boxed integer", `The answer is \boxed{4}`, "4", true},
		{"boxed fraction vs decimal", `\boxed{\frac{1}{2}}`, "0.5", true},
		{"dfrac vs frac", `\boxed{\dfrac{3}{4}}`, `\frac{3}{4}`, true},
		{"radicals", `\boxed{2\sqrt{2}}`, `\sqrt{8}`, true},
		{"nested constructs", `\boxed{\frac{\sqrt{4}}{2}}`, "1", true},
		{"equation phrase", "So the final answer is x = 5.", "5", true},
		{"symbolic", `\boxed{2x+2}`, "2(x+1)", true},
		{"tuple", `\boxed{(1, 2)}`, "1,2", true},
		{"tuple order matters", `\boxed{(2, 1)}`, "1,2", false},
		{"last number fallback", "I computed 3 and then 7", "7", true},
		{"text answer", `\boxed{True}`, "true", true},
		{"thousands separator", `\boxed{1,000}`, "1000", true},
		{"percent", `\boxed{50\%}`, "50", true},
		{"units in phrase", "The answer is 12 apples", "12", true},
		{"boxed gold", "The answer is 4", `\boxed{4}`, true},
		{"last boxed wins", `\boxed{3} no wait \boxed{4}`, "4", true},
		{"wrong answer", `\boxed{5}`, "4", false},
		{"different variables", `\boxed{y+1}`, "x+1", false},
		{"empty gold", `\boxed{4}`, "", false},
	}

	v := New(Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers, err := v.Parse(tt.text)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			got, err := v.Verify(tt.gold, answers)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Verify(%q, %+v) = %v, want %v", tt.gold, answers, got, tt.want)
			}
		})
	}
}

func TestMathVerifier_ParseEmpty(t *testing.T) {
	v := New(Options{})

	answers, err := v.Parse("")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(answers) != 0 {
		t.Errorf("Expected no answers, got %+v", answers)
	}

	ok, err := v.Verify("4", answers)
	if err != nil || ok {
		t.Errorf("Verify() = %v, %v; want false, nil", ok, err)
	}
}

func TestMathVerifier_InputTooLarge(t *testing.T) {
	v := New(Options{MaxInputLength: 100})

	if _, err := v.Parse(strings.Repeat("a", 101)); !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("Parse() error = %v, want ErrInputTooLarge", err)
	}
	if _, err := v.Verify(strings.Repeat("1", 101), nil); !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("Verify() error = %v, want ErrInputTooLarge", err)
	}
}

func TestAnswer_Forms(t *testing.T) {
	v := New(Options{})

	tests := []struct {
		text string
		want []string
	}{
		{`\boxed{4}`, []string{"4"}},
		{`\boxed{3/4}`, []string{"3/4", "0.75"}},
		{`\boxed{1,000}`, []string{"1,000", "1000"}},
		{`\boxed{\frac{1}{2}}`, []string{`\frac{1}{2}`, "0.5"}},
		{`\boxed{ x+1 }`, []string{"x+1"}},
	}

	for _, tt := range tests {
		answers, err := v.Parse(tt.text)
		if err != nil || len(answers) != 1 {
			t.Fatalf("Parse(%q) = %+v, %v", tt.text, answers, err)
		}
		got := answers[0].Forms()
		if len(got) != len(tt.want) {
			t.Fatalf("Forms(%q) = %q, want %q", tt.text, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Forms(%q)[%d] = %q, want %q", tt.text, i, got[i], tt.want[i])
			}
		}
	}
}

func TestAnswer_String(t *testing.T) {
	v := New(Options{})

	tests := []struct {
		text string
		want string
	}{
		{`\boxed{4}`, "4"},
		{`\boxed{4.50}`, "4.5"},
		{`\boxed{x+1}`, "x+1"},
		{`\boxed{ Paris }`, "Paris"},
	}

	for _, tt := range tests {
		answers, err := v.Parse(tt.text)
		if err != nil || len(answers) != 1 {
			t.Fatalf("Parse(%q) = %+v, %v", tt.text, answers, err)
		}
		if got := answers[0].String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"$4$", "4"},
		{`\frac{1}{2}`, "((1)/(2))"},
		{"x^2", "x**2"},
		{`2\pi`, "2*pi"},
		{"1,000", "1000"},
		{"y = 3x", "3*x"},
		{"5 cm", "5"},
		{`90^\circ`, "90"},
		{`\text{True}`, "True"},
		{`\sqrt[3]{8}`, "root((8),(3))"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.expected {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestExtractBoxedAnswers(t *testing.T) {
	got := ExtractBoxedAnswers(`a \boxed{1} b \fbox{2} c \boxed{{3}} d \boxed{4`)
	want := []string{"1", "2", "{3}"}

	if len(got) != len(want) {
		t.Fatalf("ExtractBoxedAnswers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("answer %d = %q, want %q", i, got[i], want[i])
		}
	}

	if ExtractBoxedAnswer("no box") != "no box" {
		t.Error("ExtractBoxedAnswer should return text unchanged without a box")
	}
}

func TestVerifierFuncs(t *testing.T) {
	var v Verifier = VerifierFuncs{
		VerifyFunc: func(gold string, answers []Answer) (bool, error) {
			return gold == "ok", nil
		},
	}

	answers, err := v.Parse("anything")
	if err != nil || answers != nil {
		t.Errorf("Parse() = %v, %v", answers, err)
	}
	if ok, _ := v.Verify("ok", nil); !ok {
		t.Error("Expected VerifyFunc to be called")
	}
}
