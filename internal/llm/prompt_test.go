package llm

import (
	"strings"
	"testing"
)

func TestBuildSystemPrompt_Deterministic(t *testing.T) {
	req := ExtractRequest{DocumentText: "Revenue grew 20% in Q3.", SourceName: "report.pdf"}
	a := BuildSystemPrompt(req)
	b := BuildSystemPrompt(req)
	if a != b {
		t.Fatal("BuildSystemPrompt() not deterministic for identical input")
	}
}

func TestBuildSystemPrompt_Contents(t *testing.T) {
	doc := "Revenue grew 20% in Q3."
	got := BuildSystemPrompt(ExtractRequest{DocumentText: doc})

	wantFragments := []string{
		// schema definition embedded as JSON
		`"` + TopLevelField + `"`,
		`"required"`,
		`"Key"`,
		`"Value"`,
		`"Comment"`,
		// the four ordered method steps
		"1. IDENTIFY SOURCE",
		"2. EXTRACT CORE VALUE",
		"3. DETERMINE KEY",
		"4. CAPTURE CONTEXT/RESIDUAL",
		// fidelity rules
		"100% Capture",
		"exact original wording",
		"ONLY the JSON object",
		// the document itself
		doc,
	}
	for _, frag := range wantFragments {
		if !strings.Contains(got, frag) {
			t.Errorf("system prompt missing %q", frag)
		}
	}
}

func TestBuildSystemPrompt_StepsOrdered(t *testing.T) {
	got := BuildSystemPrompt(ExtractRequest{DocumentText: "x"})
	steps := []string{"1. IDENTIFY SOURCE", "2. EXTRACT CORE VALUE", "3. DETERMINE KEY", "4. CAPTURE CONTEXT/RESIDUAL"}
	last := -1
	for _, s := range steps {
		idx := strings.Index(got, s)
		if idx < 0 {
			t.Fatalf("step %q missing", s)
		}
		if idx <= last {
			t.Fatalf("step %q out of order", s)
		}
		last = idx
	}
}
