package extract

import "graphkb/pkg/common"

// Pattern maps an explicit trigger phrase to a relationship type. Reversed
// marks passive phrasings ("founded by", "created by"): the mention after
// the phrase is the acting party, so the edge runs from the later mention
// to the earlier one.
type Pattern struct {
	Phrase   string
	Type     string
	Reversed bool
}

// TypePairRule resolves a relationship for a pair of entity labels. A rule
// matches when any of its keywords occurs in the segment; a rule without
// keywords is the default for its pair.
type TypePairRule struct {
	Keywords []string
	Type     string
}

// Tables holds the static heuristic configuration of the relationship
// inferrer. Built once at startup and passed by reference; never mutated.
type Tables struct {
	Phrases   []Pattern
	Verbs     map[string]string
	TypePairs map[[2]common.EntityLabel][]TypePairRule
}

// DefaultTables returns the built-in heuristic tables.
func DefaultTables() *Tables {
	return &Tables{
		Phrases:   defaultPhrases,
		Verbs:     defaultVerbs,
		TypePairs: defaultTypePairs,
	}
}

var defaultPhrases = []Pattern{
	// employment and leadership
	{Phrase: "works for", Type: "WORKS_FOR"},
	{Phrase: "works at", Type: "WORKS_AT"},
	{Phrase: "employed by", Type: "WORKS_FOR"},
	{Phrase: "hired by", Type: "HIRED", Reversed: true},
	{Phrase: "ceo of", Type: "LEADS"},
	{Phrase: "president of", Type: "LEADS"},
	{Phrase: "director of", Type: "LEADS"},
	{Phrase: "head of", Type: "LEADS"},
	{Phrase: "led by", Type: "LEADS", Reversed: true},
	{Phrase: "managed by", Type: "MANAGES", Reversed: true},
	{Phrase: "manages", Type: "MANAGES"},
	{Phrase: "reports to", Type: "REPORTS_TO"},

	// creation
	{Phrase: "founded by", Type: "FOUNDED", Reversed: true},
	{Phrase: "founded", Type: "FOUNDED"},
	{Phrase: "co-founded", Type: "FOUNDED"},
	{Phrase: "created by", Type: "CREATED", Reversed: true},
	{Phrase: "created", Type: "CREATED"},
	{Phrase: "developed by", Type: "DEVELOPS", Reversed: true},
	{Phrase: "developed", Type: "DEVELOPS"},
	{Phrase: "invented by", Type: "INVENTED", Reversed: true},
	{Phrase: "invented", Type: "INVENTED"},
	{Phrase: "designed by", Type: "DESIGNED", Reversed: true},
	{Phrase: "built by", Type: "BUILT", Reversed: true},
	{Phrase: "released by", Type: "RELEASED", Reversed: true},
	{Phrase: "released", Type: "RELEASED"},
	{Phrase: "written by", Type: "WROTE", Reversed: true},
	{Phrase: "wrote", Type: "WROTE"},
	{Phrase: "published by", Type: "PUBLISHED", Reversed: true},
	{Phrase: "published", Type: "PUBLISHED"},

	// location
	{Phrase: "located in", Type: "LOCATED_IN"},
	{Phrase: "based in", Type: "BASED_IN"},
	{Phrase: "headquartered in", Type: "HEADQUARTERED_IN"},
	{Phrase: "lives in", Type: "LIVES_IN"},
	{Phrase: "operates in", Type: "OPERATES_IN"},
	{Phrase: "moved to", Type: "MOVED_TO"},

	// usage and dependency
	{Phrase: "depends on", Type: "DEPENDS_ON"},
	{Phrase: "used by", Type: "USES", Reversed: true},
	{Phrase: "uses", Type: "USES"},
	{Phrase: "requires", Type: "REQUIRES"},
	{Phrase: "built on", Type: "BUILT_ON"},
	{Phrase: "based on", Type: "BASED_ON"},
	{Phrase: "implements", Type: "IMPLEMENTS"},
	{Phrase: "replaces", Type: "REPLACES"},
	{Phrase: "supersedes", Type: "REPLACES"},

	// ownership and corporate structure
	{Phrase: "owned by", Type: "OWNS", Reversed: true},
	{Phrase: "owns", Type: "OWNS"},
	{Phrase: "acquired by", Type: "ACQUIRED", Reversed: true},
	{Phrase: "acquired", Type: "ACQUIRED"},
	{Phrase: "subsidiary of", Type: "SUBSIDIARY_OF"},
	{Phrase: "division of", Type: "PART_OF"},

	// collaboration
	{Phrase: "partnered with", Type: "PARTNERED_WITH"},
	{Phrase: "collaborates with", Type: "COLLABORATES_WITH"},
	{Phrase: "works with", Type: "WORKS_WITH"},
	{Phrase: "merged with", Type: "MERGED_WITH"},
	{Phrase: "competes with", Type: "COMPETES_WITH"},

	// hierarchy and membership
	{Phrase: "part of", Type: "PART_OF"},
	{Phrase: "belongs to", Type: "BELONGS_TO"},
	{Phrase: "member of", Type: "MEMBER_OF"},
	{Phrase: "type of", Type: "TYPE_OF"},
	{Phrase: "kind of", Type: "TYPE_OF"},
	{Phrase: "consists of", Type: "CONTAINS"},
	{Phrase: "contains", Type: "CONTAINS"},
	{Phrase: "includes", Type: "INCLUDES"},

	// academic
	{Phrase: "studied at", Type: "STUDIED_AT"},
	{Phrase: "graduated from", Type: "GRADUATED_FROM"},
	{Phrase: "teaches at", Type: "TEACHES_AT"},
	{Phrase: "researches", Type: "RESEARCHES"},

	// causal
	{Phrase: "caused by", Type: "CAUSES", Reversed: true},
	{Phrase: "causes", Type: "CAUSES"},
	{Phrase: "leads to", Type: "LEADS_TO"},
	{Phrase: "results in", Type: "RESULTS_IN"},
	{Phrase: "prevents", Type: "PREVENTS"},
	{Phrase: "enables", Type: "ENABLES"},

	// security
	{Phrase: "threatens", Type: "THREATENS"},
	{Phrase: "attacks", Type: "ATTACKS"},
	{Phrase: "targets", Type: "TARGETS"},
	{Phrase: "exploits", Type: "EXPLOITS"},
	{Phrase: "protects against", Type: "PROTECTS_AGAINST"},
	{Phrase: "mitigates", Type: "MITIGATES"},
	{Phrase: "detects", Type: "DETECTS"},

	// compliance
	{Phrase: "complies with", Type: "COMPLIES_WITH"},
	{Phrase: "regulated by", Type: "REGULATES", Reversed: true},
	{Phrase: "governed by", Type: "GOVERNS", Reversed: true},
	{Phrase: "certified by", Type: "CERTIFIES", Reversed: true},
	{Phrase: "audited by", Type: "AUDITS", Reversed: true},

	// financial
	{Phrase: "invested in", Type: "INVESTED_IN"},
	{Phrase: "funded by", Type: "FUNDS", Reversed: true},
	{Phrase: "funds", Type: "FUNDS"},
	{Phrase: "sponsors", Type: "SPONSORS"},
	{Phrase: "pays", Type: "PAYS"},

	// communication
	{Phrase: "announced", Type: "ANNOUNCED"},
	{Phrase: "reported", Type: "REPORTED"},
	{Phrase: "described", Type: "DESCRIBES"},
	{Phrase: "refers to", Type: "REFERS_TO"},
}

// defaultVerbs maps action verb stems to relationship types. Stems match
// inflected forms by prefix, so "develop" covers develops, developed and
// developing.
var defaultVerbs = map[string]string{
	"develop":    "DEVELOPS",
	"creat":      "CREATES",
	"build":      "BUILDS",
	"design":     "DESIGNS",
	"produc":     "PRODUCES",
	"releas":     "RELEASED",
	"launch":     "LAUNCHED",
	"threaten":   "THREATENS",
	"attack":     "ATTACKS",
	"exploit":    "EXPLOITS",
	"protect":    "PROTECTS",
	"defend":     "PROTECTS",
	"support":    "SUPPORTS",
	"maintain":   "MAINTAINS",
	"implement":  "IMPLEMENTS",
	"provid":     "PROVIDES",
	"enabl":      "ENABLES",
	"improv":     "IMPROVES",
	"replac":     "REPLACES",
	"requir":     "REQUIRES",
	"analyz":     "ANALYZES",
	"investigat": "INVESTIGATES",
	"regulat":    "REGULATES",
	"teach":      "TEACHES",
	"stud":       "STUDIES",
}

var defaultTypePairs = map[[2]common.EntityLabel][]TypePairRule{
	{common.LabelPerson, common.LabelOrganization}: {
		{Keywords: []string{"found", "creat", "establish"}, Type: "FOUNDED"},
		{Keywords: []string{"ceo", "lead", "president", "director", "chief", "head"}, Type: "LEADS"},
		{Keywords: []string{"work", "employ", "join"}, Type: "WORKS_FOR"},
		{Type: "ASSOCIATED_WITH"},
	},
	{common.LabelOrganization, common.LabelPerson}: {
		{Keywords: []string{"hire", "employ"}, Type: "EMPLOYS"},
		{Type: "ASSOCIATED_WITH"},
	},
	{common.LabelPerson, common.LabelLocation}: {
		{Keywords: []string{"live", "resid", "born"}, Type: "LIVES_IN"},
		{Type: "LOCATED_IN"},
	},
	{common.LabelOrganization, common.LabelLocation}: {
		{Keywords: []string{"headquarter"}, Type: "HEADQUARTERED_IN"},
		{Type: "LOCATED_IN"},
	},
	{common.LabelPerson, common.LabelPerson}: {
		{Keywords: []string{"work", "collaborat", "partner"}, Type: "WORKS_WITH"},
		{Keywords: []string{"marri", "famil"}, Type: "RELATED_TO_PERSON"},
		{Type: "KNOWS"},
	},
	{common.LabelOrganization, common.LabelOrganization}: {
		{Keywords: []string{"acquir", "bought", "purchas"}, Type: "ACQUIRED"},
		{Keywords: []string{"partner", "collaborat", "alliance"}, Type: "PARTNERED_WITH"},
		{Keywords: []string{"compet", "rival"}, Type: "COMPETES_WITH"},
		{Type: "ASSOCIATED_WITH"},
	},
	{common.LabelPerson, common.LabelConcept}: {
		{Keywords: []string{"develop", "invent", "creat", "research", "stud"}, Type: "WORKS_ON"},
		{Type: "ASSOCIATED_WITH"},
	},
	{common.LabelOrganization, common.LabelConcept}: {
		{Keywords: []string{"develop", "build", "creat", "sell"}, Type: "DEVELOPS"},
		{Keywords: []string{"use", "deploy", "adopt"}, Type: "USES"},
		{Type: "ASSOCIATED_WITH"},
	},
	{common.LabelConcept, common.LabelConcept}: {
		{Keywords: []string{"type of", "kind of", "form of", "variant"}, Type: "TYPE_OF"},
		{Keywords: []string{"part of", "component", "element"}, Type: "PART_OF"},
		{Keywords: []string{"use", "require", "depend"}, Type: "USES"},
	},
}
