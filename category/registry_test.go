package category_test

import (
	"slices"
	"testing"

	"fintrack/core/category"
)

func TestColorFor_KnownNames(t *testing.T) {
	seen := map[string]string{}
	for _, name := range category.Defaults() {
		color := category.ColorFor(name)
		if other, ok := seen[color]; ok {
			t.Errorf("Default categories %q and %q share color %s", name, other, color)
		}
		seen[color] = name
	}
	if got := category.ColorFor("Moradia"); got != "bg-red-500" {
		t.Errorf("ColorFor(Moradia) got %s, want bg-red-500", got)
	}
}

func TestColorFor_FallbackIsDeterministic(t *testing.T) {
	// "Pets" = 80+101+116+115 = 412, 412 % 6 = 4.
	if got := category.ColorFor("Pets"); got != "bg-lime-500" {
		t.Errorf("ColorFor(Pets) got %s, want bg-lime-500", got)
	}
	for i := 0; i < 10; i++ {
		if category.ColorFor("Viagem") != category.ColorFor("Viagem") {
			t.Fatal("ColorFor is not deterministic")
		}
	}
	if category.ColorFor("") == "" {
		t.Error("Expected a fallback color for an empty name")
	}
}

func TestRegistry_SeededWithDefaults(t *testing.T) {
	r := category.NewRegistry()
	if !slices.Equal(r.Names(), category.Defaults()) {
		t.Errorf("Expected defaults %v, got %v", category.Defaults(), r.Names())
	}
}

func TestRegistry_AddKeepsFirstSeenOrder(t *testing.T) {
	r := category.NewRegistry("Moradia")

	if !r.Add("Pets") {
		t.Error("Expected Pets to be added")
	}
	if r.Add("Pets") {
		t.Error("Expected duplicate Pets to be ignored")
	}
	if !r.Add("pets") {
		t.Error("Expected names to be case-sensitive")
	}
	if r.Add("   ") {
		t.Error("Expected blank name to be ignored")
	}

	want := []string{"Moradia", "Pets", "pets"}
	if got := r.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() got %v, want %v", got, want)
	}
	if !r.Contains("Pets") || r.Contains("Lazer") {
		t.Error("Contains returned an unexpected result")
	}

	entries := r.Entries()
	if len(entries) != 3 || entries[0].Color != "bg-red-500" {
		t.Errorf("Unexpected entries %+v", entries)
	}
}
