package locale_test

import (
	"testing"

	"github.com/sumoniya0512-oss/mobifix/internal/model/locale"
)

func TestParseLanguage(t *testing.T) {
	cases := []struct {
		raw  string
		want locale.Language
		ok   bool
	}{
		{"en", locale.English, true},
		{"English", locale.English, true},
		{"en-IN", locale.English, true},
		{"ta", locale.Tamil, true},
		{"Tamil", locale.Tamil, true},
		{"hi", locale.Hindi, true},
		{"  HINDI ", locale.Hindi, true},
		{"fr", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, ok := locale.ParseLanguage(tc.raw)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseLanguage(%q) = (%q, %v), want (%q, %v)", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestSeedPacksComplete(t *testing.T) {
	packs := locale.Seed()
	if len(packs) != 3 {
		t.Fatalf("unexpected pack count: %d", len(packs))
	}

	reference := packs[0].Strings
	for _, pack := range packs {
		if pack.Name == "" {
			t.Errorf("pack %s has no display name", pack.Language)
		}
		if len(pack.ExamplePrompts) == 0 {
			t.Errorf("pack %s has no example prompts", pack.Language)
		}
		// Every pack must cover the same UI string keys.
		for key := range reference {
			if _, ok := pack.Strings[key]; !ok {
				t.Errorf("pack %s missing string %q", pack.Language, key)
			}
		}
		if len(pack.Strings) != len(reference) {
			t.Errorf("pack %s has %d strings, want %d", pack.Language, len(pack.Strings), len(reference))
		}
	}
}

func TestMemoryStore(t *testing.T) {
	store := locale.NewMemoryStore(locale.Seed())

	if got := len(store.List()); got != 3 {
		t.Fatalf("unexpected list length: %d", got)
	}

	pack, ok := store.FindByLanguage(locale.Tamil)
	if !ok {
		t.Fatal("expected Tamil pack")
	}
	if pack.Language != locale.Tamil {
		t.Fatalf("unexpected pack: %+v", pack.Language)
	}

	if _, ok := store.FindByLanguage("fr"); ok {
		t.Fatal("unexpected pack for unsupported language")
	}
}
