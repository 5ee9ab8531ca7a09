package services

import (
	"regexp"
	"strings"

	"market-dashboard/models"
	"market-dashboard/utils"
)

// RuleStage orders identity rules: all spelling fixes run before prefix
// stripping, which runs before suffix stripping.
type RuleStage int

const (
	StageSpelling RuleStage = iota
	StagePrefix
	StageSuffix
)

// IdentityRule rewrites a folded, uppercased project name.
type IdentityRule struct {
	Name    string
	Stage   RuleStage
	Pattern *regexp.Regexp
	Replace string
}

func rule(name string, stage RuleStage, pattern, replace string) IdentityRule {
	return IdentityRule{Name: name, Stage: stage, Pattern: regexp.MustCompile(pattern), Replace: replace}
}

// DefaultIdentityRules collapse phase, tower and unit naming of one
// development into a single project identity.
var DefaultIdentityRules = []IdentityRule{
	rule("empreendimento-misspelling", StageSpelling,
		`\b(?:EMPREENDIMETO|EMPREENDIMNETO|EMPRENDIMENTO|EMPREEDIMENTO|EMPREENDIEMNTO|EMPEENDIMENTO|EMPREENDMENTO)\b`,
		"EMPREENDIMENTO"),
	rule("empreendimento-abbreviation", StageSpelling, `^EMPREEND\.?\s+`, "EMPREENDIMENTO "),

	rule("generic-prefix", StagePrefix,
		`^(?:EMPREENDIMENTOS?|RESIDENCIAL|RES\.?|CONDOMINIO|COND\.|EDIFICIO)\s+`, ""),

	rule("parenthesized-qualifier", StageSuffix, `\s*\([^)]*\)$`, ""),
	rule("trailing-separator", StageSuffix, `\s*[-,/.:]+$`, ""),
	rule("block-tower-phase", StageSuffix,
		`\s+(?:BLOCOS?|BL|TORRES?|TR|QUADRAS?|QD|FASES?|ETAPAS?|MODULOS?)(?:\.\s*|\s+)[A-Z0-9]{1,3}(?:\s*(?:E|,|/|-)\s*[A-Z0-9]{1,3})*$`, ""),
	rule("unit-number", StageSuffix,
		`\s+(?:APTOS?|APARTAMENTOS?|AP|UNIDADES?|UNID|UN|CASAS?|SALAS?|LOJAS?|LOTES?)(?:\.\s*|\s+)(?:NO?\.?\s*)?\d+[A-Z]?$`, ""),
	rule("typology", StageSuffix,
		`\s+(?:COBERTURAS?|DUPLEX|TRIPLEX|GARDENS?|STUDIOS?|LOFTS?|FLATS?)$`, ""),
	rule("room-count", StageSuffix,
		`\s+(?:\d\s*(?:E|/|,)\s*)*\d\s*(?:QUARTOS?|QTOS?|QTS?|DORMITORIOS?|DORMS?|SUITES?)$`, ""),
	rule("roman-numeral", StageSuffix, `\s+(?:I|II|III|IV|V|VI|VII|VIII|IX|X)$`, ""),
	rule("trailing-number", StageSuffix, `\s+\d{1,3}$`, ""),
}

// maxIdentityPasses bounds the fixed-point loop for custom rule sets.
const maxIdentityPasses = 32

// IdentityNormalizer derives canonical project identities.
type IdentityNormalizer struct {
	rules []IdentityRule
}

// NewIdentityNormalizer orders rules by stage, keeping the given order
// within a stage.
func NewIdentityNormalizer(rules []IdentityRule) *IdentityNormalizer {
	ordered := make([]IdentityRule, 0, len(rules))
	for _, stage := range []RuleStage{StageSpelling, StagePrefix, StageSuffix} {
		for _, r := range rules {
			if r.Stage == stage {
				ordered = append(ordered, r)
			}
		}
	}
	return &IdentityNormalizer{rules: ordered}
}

var defaultIdentity = NewIdentityNormalizer(DefaultIdentityRules)

// CanonicalProject returns the project identity of name using
// DefaultIdentityRules.
func CanonicalProject(name string) string {
	return defaultIdentity.Canonical(name)
}

// Canonical folds accents and case, then applies the rules until a full pass
// changes nothing. The result is a fixed point, so Canonical is idempotent.
// Names are never matched by similarity: "ALFA" and "ALPHA" stay two
// projects, and codes like "EMP_123" are kept verbatim.
func (n *IdentityNormalizer) Canonical(name string) string {
	s := utils.Fold(name)
	if s == "" {
		return models.NotAvailable
	}

	for pass := 0; pass < maxIdentityPasses; pass++ {
		before := s
		for _, r := range n.rules {
			next := strings.TrimSpace(r.Pattern.ReplaceAllString(s, r.Replace))
			if next == "" {
				continue
			}
			s = strings.Join(strings.Fields(next), " ")
		}
		if s == before {
			break
		}
	}
	return s
}
