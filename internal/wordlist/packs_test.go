package wordlist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/typetest/internal/model"
)

func TestBuiltinTiers(t *testing.T) {
	tiers, err := BuiltinTiers()
	if err != nil {
		t.Fatalf("builtin tiers: %v", err)
	}
	for _, d := range model.Difficulties {
		if len(tiers[d]) < 100 {
			t.Fatalf("expected at least 100 %s words, got %d", d, len(tiers[d]))
		}
	}
	filter := FilterForLang(BuiltinName)
	for _, w := range tiers[model.DifficultyHard] {
		if !filter(w) {
			t.Fatalf("builtin word %q does not pass the english filter", w)
		}
	}
}

func TestSplitTiers(t *testing.T) {
	tiers := SplitTiers([]string{"cat", "house", "sandwich", "dog", "kitchen"})
	if got := tiers[model.DifficultyEasy]; len(got) != 2 {
		t.Fatalf("expected 2 easy words, got %v", got)
	}
	if got := tiers[model.DifficultyMedium]; len(got) != 2 {
		t.Fatalf("expected 2 medium words, got %v", got)
	}
	if got := tiers[model.DifficultyHard]; len(got) != 1 || got[0] != "sandwich" {
		t.Fatalf("expected sandwich as hard, got %v", got)
	}
}

func TestSplitTiersFallsBackToAllWords(t *testing.T) {
	tiers := SplitTiers([]string{"ab", "cd"})
	if got := tiers[model.DifficultyHard]; len(got) != 2 {
		t.Fatalf("expected fallback to all words, got %v", got)
	}
}

func TestLoadPackFormats(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "pirate.txt")
	if err := os.WriteFile(txt, []byte("arr\n\n# comment\nmatey\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	js := filepath.Join(dir, "german.json")
	if err := os.WriteFile(js, []byte(`{"name":"deutsch","words":["haus","straße"]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	pack, err := LoadPack(txt)
	if err != nil {
		t.Fatalf("load txt: %v", err)
	}
	if pack.Name != "pirate" || len(pack.Words) != 2 {
		t.Fatalf("unexpected txt pack: %+v", pack)
	}
	pack, err = LoadPack(js)
	if err != nil {
		t.Fatalf("load json: %v", err)
	}
	if pack.Name != "deutsch" || len(pack.Words) != 2 {
		t.Fatalf("unexpected json pack: %+v", pack)
	}

	names, err := ListPacks(dir)
	if err != nil {
		t.Fatalf("list packs: %v", err)
	}
	want := []string{"english", "german", "pirate"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pirate.txt"), []byte("arr\nmatey\nscallywag\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tiers, err := Resolve(dir, "pirate")
	if err != nil {
		t.Fatalf("resolve pirate: %v", err)
	}
	if got := tiers[model.DifficultyHard]; len(got) != 1 || got[0] != "scallywag" {
		t.Fatalf("unexpected hard tier: %v", got)
	}
	if _, err := Resolve(dir, ""); err != nil {
		t.Fatalf("resolve builtin: %v", err)
	}
	if _, err := Resolve(dir, "klingon"); err == nil {
		t.Fatalf("expected error for missing language")
	}
}
