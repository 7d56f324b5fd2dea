package systemprompt

import (
	"errors"
	"slices"
	"testing"
)

func TestBaseGeneratorProviders(t *testing.T) {
	var g BaseGenerator
	g.AddContextProviders(
		NewStaticProvider("news", "rates held"),
		NewStaticProvider("analysis", "cpi 3.4"),
		NewStaticProvider("news", "duplicate"),
	)
	if l := len(g.ContextProviders()); l != 2 {
		t.Fatalf("expect 2 providers, got %d", l)
	}
	p, err := g.ContextProvider("news")
	if err != nil {
		t.Fatal(err)
	}
	if p.Info() != "rates held" {
		t.Errorf("expect first provider kept, got %s", p.Info())
	}
	g.RemoveContextProviders("news")
	if _, err := g.ContextProvider("news"); !errors.Is(err, ErrContextProviderNotFound) {
		t.Errorf("expect ErrContextProviderNotFound, got %v", err)
	}
	if l := len(g.ContextProviders()); l != 1 {
		t.Errorf("expect 1 provider, got %d", l)
	}
}

func TestRender(t *testing.T) {
	var g BaseGenerator
	g.AddContextProviders(NewStaticProvider("empty", ""), NewStaticProvider("news", "rates held"))
	got := g.Render(
		Section{Title: "ROLE", Lines: []string{"- analyst"}},
		Section{Title: "SKIPPED"},
	)
	want := "# ROLE\n- analyst\n\n# EXTRA INFORMATION AND CONTEXT\n## news\nrates held"
	if got != want {
		t.Errorf("expect %q, got %q", want, got)
	}
}

func TestBullets(t *testing.T) {
	got := Bullets("Market analyst", "- already a bullet", "  ", " padded ")
	want := []string{"- Market analyst", "- already a bullet", "- padded"}
	if !slices.Equal(got, want) {
		t.Errorf("expect %q, got %q", want, got)
	}
}
