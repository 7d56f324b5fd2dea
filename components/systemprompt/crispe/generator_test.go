package crispe

import (
	"strings"
	"testing"

	"github.com/bububa/content-agents/components/systemprompt"
)

func TestGenerate(t *testing.T) {
	g := New(
		WithCapacities("- Market News Monitor"),
		WithBackground("- You track financial news."),
		WithStatements("- Monitor the news about Inflation 2024."),
		WithPersonalities("- Be concise."),
	)
	got := g.Generate()
	for _, want := range []string{"# CAPACITY and ROLE\n- Market News Monitor", "# STATEMENT and TASK", "- Be concise."} {
		if !strings.Contains(got, want) {
			t.Errorf("expect %q in prompt:\n%s", want, got)
		}
	}
	if strings.Contains(got, "EXTRA INFORMATION") || strings.Contains(got, "FOLLOWUP") {
		t.Errorf("unexpected sections in prompt:\n%s", got)
	}

	g.AddContextProviders(systemprompt.NewStaticProvider("monitor_financial_news", "rates held"))
	got = g.Generate()
	if !strings.Contains(got, "- Always use the available additional information") {
		t.Errorf("expect context instruction in prompt:\n%s", got)
	}
	if !strings.HasSuffix(got, "## monitor_financial_news\nrates held") {
		t.Errorf("expect context at the end of prompt:\n%s", got)
	}
	if n := strings.Count(g.Generate(), "- Always use the available additional information"); n != 1 {
		t.Errorf("expect context instruction once, got %d", n)
	}
}
