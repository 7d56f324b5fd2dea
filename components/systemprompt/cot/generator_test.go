package cot

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	got := New(WithSteps("- Review the draft.")).Generate()
	want := `# IDENTITY and PURPOSE
- This is a conversation with a helpful and friendly AI assistant.

# INTERNAL ASSISTANT STEPS
- Review the draft.

# OUTPUT INSTRUCTIONS
- Always respond using the proper JSON schema.
- Always use the available additional information and context to enhance the response.`
	if got != want {
		t.Errorf("expect:\n%s\ngot:\n%s", want, got)
	}
	if strings.Contains(got, "EXTRA INFORMATION") {
		t.Error("unexpected context section")
	}
}
