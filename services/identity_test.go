package services

import (
	"regexp"
	"testing"
)

func TestCanonicalProject(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Residencial Alfa Bloco A", "ALFA"},
		{"Alfa Bloco B", "ALFA"},
		{"ALFA  torre 2", "ALFA"},
		{"EMPREENDIMETO Beta Torre 2", "BETA"},
		{"Emprendimento Beta", "BETA"},
		{"Res. Gama II", "GAMA"},
		{"Edifício Delta - Apto 101", "DELTA"},
		{"Omega Cobertura", "OMEGA"},
		{"Sigma 3 Quartos", "SIGMA"},
		{"Sigma 2 e 3 quartos", "SIGMA"},
		{"Vista Park 2", "VISTA PARK"},
		{"Condomínio Jardins (Fase 1)", "JARDINS"},
		{"Ilha Bela Blocos A e B", "ILHA BELA"},
		{"Alfa Blue", "ALFA BLUE"},
		{"Solar das Águas Studio", "SOLAR DAS AGUAS"},
		{"Vista 2000", "VISTA 2000"},
		{"Residencial", "RESIDENCIAL"},
		{"EMP_012", "EMP_012"},
		{"Empreendimentos Alfa", "ALFA"},
		{"Parque dos Empreendimentos", "PARQUE DOS EMPREENDIMENTOS"},
		{"", "N/A"},
		{"   ", "N/A"},
	}
	for _, tt := range tests {
		if got := CanonicalProject(tt.name); got != tt.want {
			t.Errorf("CanonicalProject(%q) = %q; want %q", tt.name, got, tt.want)
		}
	}
}

func TestCanonicalProjectIsIdempotent(t *testing.T) {
	names := []string{
		"Residencial Alfa Bloco A",
		"RESIDENCIAL RES ALFA",
		"Res. Gama II",
		"Edifício Delta - Apto 101",
		"Condomínio Jardins (Fase 1) Torre B",
		"Empreendimento Residencial Beta 3",
		"EMP_012",
		"X",
	}
	for _, n := range names {
		once := CanonicalProject(n)
		if twice := CanonicalProject(once); twice != once {
			t.Errorf("CanonicalProject not idempotent for %q: %q then %q", n, once, twice)
		}
	}
}

// No similarity matching: only the rules decide, so near-identical names
// and sequential codes stay distinct.
func TestCanonicalProjectDoesNotFuzzyMatch(t *testing.T) {
	pairs := [][2]string{
		{"Alfa", "Alpha"},
		{"EMP_012", "EMP_013"},
		{"Parque Sul", "Parque Sol"},
	}
	for _, p := range pairs {
		if CanonicalProject(p[0]) == CanonicalProject(p[1]) {
			t.Errorf("%q and %q should stay distinct projects", p[0], p[1])
		}
	}
}

func TestCustomIdentityRules(t *testing.T) {
	rules := append([]IdentityRule{
		{Name: "vila-prefix", Stage: StagePrefix, Pattern: regexp.MustCompile(`^VILA\s+`)},
	}, DefaultIdentityRules...)
	n := NewIdentityNormalizer(rules)
	if got := n.Canonical("Vila Residencial Kappa Torre 1"); got != "KAPPA" {
		t.Errorf("Canonical = %q; want KAPPA", got)
	}
	if got := CanonicalProject("Vila Kappa"); got != "VILA KAPPA" {
		t.Errorf("default rules must not include the custom prefix, got %q", got)
	}
}
