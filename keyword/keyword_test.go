package keyword

import "testing"

func testTable() Table {
	return Table{
		"en": {"target": "target", "speaking": "speaking", "style": "style"},
		"es": {"destino": "target", "idioma": "speaking", "estilo": "style"},
	}
}

func TestResolve(t *testing.T) {
	tbl := testTable()
	cases := []struct {
		name  string
		lang  string
		kw    string
		want  string
		found bool
	}{
		{"direct hit", "es", "destino", "target", true},
		{"case insensitive", "es", "DESTINO", "target", true},
		{"english fallback", "es", "target", "target", true},
		{"unknown keyword", "es", "ziel", "", false},
		{"unknown language falls back to en", "de", "style", "style", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Resolve(tbl, tc.lang, tc.kw)
			if ok != tc.found || got != tc.want {
				t.Fatalf("Resolve(%q,%q) = %q,%v want %q,%v", tc.lang, tc.kw, got, ok, tc.want, tc.found)
			}
		})
	}
}

func TestNormalizePronoun(t *testing.T) {
	pronouns := Table{
		"en": {"he": PronounMale, "him": PronounMale, "she": PronounFemale, "they": PronounNeutral},
		"es": {"él": PronounMale, "ella": PronounFemale},
	}
	cases := []struct {
		phrase string
		want   string
	}{
		{"she/her", PronounFemale},
		{"he him his", PronounMale},
		{"they/them", PronounNeutral},
		{"ella", PronounFemale},
		{"", PronounNeutral},
		{"xyzzy", PronounNeutral},
		// whole-word only: "shell" must not match "she"
		{"shell", PronounNeutral},
	}
	for _, tc := range cases {
		if got := NormalizePronoun(pronouns, tc.phrase); got != tc.want {
			t.Errorf("NormalizePronoun(%q) = %q, want %q", tc.phrase, got, tc.want)
		}
	}
}

func TestInfer(t *testing.T) {
	keys := Table{
		"en": {"target": "target", "style": "style"},
		"es": {"destino": "target", "idioma": "speaking", "estilo": "style"},
		"pt": {"destino": "target", "idioma": "speaking", "estilo": "style", "alvo": "target"},
	}
	valid := func(lang string, p Pair) bool {
		_, ok := keys[lang][p.Key]
		return ok
	}
	langs := []string{"en", "es", "pt"}
	priority := []string{"es", "pt", "en"}

	t.Run("current language wins when everything validates", func(t *testing.T) {
		got := Infer(langs, "en", priority, []Pair{{Key: "target", Value: "es"}}, valid)
		if got != "en" {
			t.Fatalf("got %q, want en", got)
		}
	})
	t.Run("unique maximum switches language", func(t *testing.T) {
		got := Infer(langs, "en", priority, []Pair{{Key: "alvo", Value: "es"}}, valid)
		if got != "pt" {
			t.Fatalf("got %q, want pt", got)
		}
	})
	t.Run("tie broken by priority list", func(t *testing.T) {
		// "idioma" validates under both es and pt; es leads the priority list.
		got := Infer(langs, "en", priority, []Pair{{Key: "idioma", Value: "es"}}, valid)
		if got != "es" {
			t.Fatalf("got %q, want es", got)
		}
	})
	t.Run("nothing validates anywhere keeps current", func(t *testing.T) {
		got := Infer(langs, "en", priority, []Pair{{Key: "ziel", Value: "x"}}, valid)
		if got != "en" {
			t.Fatalf("got %q, want en", got)
		}
	})
	t.Run("no pairs keeps current", func(t *testing.T) {
		if got := Infer(langs, "es", priority, nil, valid); got != "es" {
			t.Fatalf("got %q, want es", got)
		}
	})
}
