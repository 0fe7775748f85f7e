package wordlist

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/verte-zerg/typetest/internal/model"
)

// BuiltinName is the language served from the embedded word lists.
const BuiltinName = "english"

const (
	easyMaxLen  = 4
	hardMinLen  = 8
	packExtTxt  = ".txt"
	packExtJSON = ".json"
)

//go:embed builtin/*.txt
var builtinFS embed.FS

// Pack is a named word list.
type Pack struct {
	Name  string   `json:"name"`
	Words []string `json:"words"`
}

// Tiers maps each difficulty to its words.
type Tiers map[model.Difficulty][]string

// BuiltinTiers returns the embedded English tiers.
func BuiltinTiers() (Tiers, error) {
	tiers := Tiers{}
	for _, d := range model.Difficulties {
		data, err := builtinFS.ReadFile("builtin/" + string(d) + ".txt")
		if err != nil {
			return nil, fmt.Errorf("failed to read builtin %s words: %w", d, err)
		}
		words, err := readWords(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse builtin %s words: %w", d, err)
		}
		tiers[d] = words
	}
	return tiers, nil
}

// SplitTiers groups words by rune length: easy up to 4, hard from 8, medium in between.
// An empty tier falls back to the whole list.
func SplitTiers(words []string) Tiers {
	tiers := Tiers{}
	for _, w := range words {
		n := utf8.RuneCountInString(w)
		switch {
		case n <= easyMaxLen:
			tiers[model.DifficultyEasy] = append(tiers[model.DifficultyEasy], w)
		case n >= hardMinLen:
			tiers[model.DifficultyHard] = append(tiers[model.DifficultyHard], w)
		default:
			tiers[model.DifficultyMedium] = append(tiers[model.DifficultyMedium], w)
		}
	}
	for _, d := range model.Difficulties {
		if len(tiers[d]) == 0 {
			tiers[d] = append([]string(nil), words...)
		}
	}
	return tiers
}

// LoadPack reads a language pack. Text packs hold one word per line and take
// their name from the file; JSON packs are {"name": ..., "words": [...]}.
func LoadPack(path string) (Pack, error) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch strings.ToLower(filepath.Ext(path)) {
	case packExtTxt:
		words, err := LoadWords(path)
		if err != nil {
			return Pack{}, err
		}
		return Pack{Name: base, Words: words}, nil
	case packExtJSON:
		data, err := os.ReadFile(path)
		if err != nil {
			return Pack{}, err
		}
		var pack Pack
		if err := json.Unmarshal(data, &pack); err != nil {
			return Pack{}, fmt.Errorf("failed to decode %s: %w", path, err)
		}
		if pack.Name == "" {
			pack.Name = base
		}
		if len(pack.Words) == 0 {
			return Pack{}, fmt.Errorf("language pack %s has no words", path)
		}
		return pack, nil
	default:
		return Pack{}, fmt.Errorf("unsupported language pack %s", path)
	}
}

// ListPacks returns the language names found in dir, plus the builtin one, sorted.
// A missing directory is not an error.
func ListPacks(dir string) ([]string, error) {
	names := map[string]struct{}{BuiltinName: {}}
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read language directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != packExtTxt && ext != packExtJSON {
			continue
		}
		names[strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))] = struct{}{}
	}
	out := make([]string, 0, len(names))
	for name := range names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// Resolve loads the tiers for a language. A pack file in dir takes precedence
// over the builtin English lists.
func Resolve(dir, lang string) (Tiers, error) {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		lang = BuiltinName
	}
	for _, ext := range []string{packExtTxt, packExtJSON} {
		path := filepath.Join(dir, lang+ext)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		pack, err := LoadPack(path)
		if err != nil {
			return nil, err
		}
		words := Filter(pack.Words, FilterForLang(lang))
		if len(words) == 0 {
			return nil, fmt.Errorf("language pack %s has no usable words", path)
		}
		return SplitTiers(words), nil
	}
	if lang == BuiltinName {
		return BuiltinTiers()
	}
	return nil, fmt.Errorf("language %q not found in %s", lang, dir)
}
