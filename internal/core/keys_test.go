package core

import "testing"

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Liga", "liga"},
		{"accent", "País", "pais"},
		{"accent and space", "Média Gols", "media_gols"},
		{"surrounding whitespace", "  Odd Casa  ", "odd_casa"},
		{"hyphen", "Odd-Visitante", "odd_visitante"},
		{"byte order mark", "\uFEFFLiga", "liga"},
		{"quotes stripped", `"Horário"`, "horario"},
		{"apostrophe stripped", "Time d'Casa", "time_dcasa"},
		{"runs collapse", "a  -  b__c", "a_b_c"},
		{"leading and trailing separators", "_-casa-_", "casa"},
		{"punctuation dropped", "Odd (Casa)!", "odd_casa"},
		{"upper case accents", "ÇÃO", "cao"},
		{"no decomposition letters", "Straße Ærø", "strasse_aero"},
		{"digits kept", "Gols 1T", "gols_1t"},
		{"non-breaking space", "Odd\u00a0Casa", "odd_casa"},
		{"tab", "Odd\tCasa", "odd_casa"},
		{"only symbols", "!!!", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeKey(tt.input); got != tt.want {
				t.Errorf("NormalizeKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeKey_Idempotent(t *testing.T) {
	inputs := []string{
		"Liga", "País", "Média Gols", " Odd-Casa ", "\uFEFFHorário",
		"Straße", "a  -  b__c", "Column 9", "", "ÇÃO é Ñ",
	}

	for _, in := range inputs {
		once := NormalizeKey(in)
		if twice := NormalizeKey(once); twice != once {
			t.Errorf("NormalizeKey not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeKeys(t *testing.T) {
	got := NormalizeKeys([]string{"Liga", "Odd Casa"})
	if len(got) != 2 || got[0] != "liga" || got[1] != "odd_casa" {
		t.Errorf("NormalizeKeys() = %v", got)
	}
}
