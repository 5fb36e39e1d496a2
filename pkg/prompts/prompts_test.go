package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/rizome-dev/go-rewards/pkg/parsers"
)

func TestSystemPromptMentionsMarkers(t *testing.T) {
	m := parsers.DefaultMarkers()
	for _, marker := range []string{m.OpenReasoning, m.CloseReasoning, m.OpenAnswer, m.CloseAnswer, `\` + m.Boxed + "{"} {
		if !strings.Contains(SystemPrompt, marker) {
			t.Errorf("SystemPrompt does not mention %q", marker)
		}
	}
}

func TestSystemPromptQuotesTags(t *testing.T) {
	for _, quoted := range []string{"`<think>` and `</think>` tags", "`<solution>` and `</solution>` tags"} {
		if !strings.Contains(SystemPrompt, quoted) {
			t.Errorf("SystemPrompt does not contain %q", quoted)
		}
	}
}

func TestMathFewShotFollowsTemplate(t *testing.T) {
	parser := parsers.NewThinkParser()

	for i, msg := range MathFewShot {
		if msg.Role != "assistant" {
			continue
		}
		if !parser.FollowsTemplate(msg.Content) {
			t.Errorf("few-shot message %d does not follow the template", i)
		}
		answer, err := parser.Parse(context.Background(), msg.Content)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if !strings.Contains(answer, `\boxed{`) {
			t.Errorf("few-shot message %d has no boxed answer: %q", i, answer)
		}
	}
}

func TestFormatPrompt(t *testing.T) {
	tests := []struct {
		name      string
		system    string
		fewShot   []Message
		wantLen   int
		wantFirst string
	}{
		{"system and few-shot", SystemPrompt, MathFewShot, len(MathFewShot) + 2, "system"},
		{"no system prompt", "", MathFewShot, len(MathFewShot) + 1, "user"},
		{"question only", "", nil, 1, "user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatPrompt(tt.system, tt.fewShot, "What is 2+2?")
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tt.wantLen)
			}
			if got[0].Role != tt.wantFirst {
				t.Errorf("first role = %s, want %s", got[0].Role, tt.wantFirst)
			}
			last := got[len(got)-1]
			if last.Role != "user" || last.Content != "What is 2+2?" {
				t.Errorf("last message = %+v", last)
			}
		})
	}
}
