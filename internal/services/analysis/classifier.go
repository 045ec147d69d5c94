package analysis

import "strings"

const (
	urgencyCompositeWeight    = 0.6
	confidenceCompositeWeight = 0.4

	highImpactBand   = 1e7 // 1 crore
	mediumImpactBand = 1e6 // 10 lakh

	riskHighIncrement   = 0.3
	riskMediumIncrement = 0.2
	riskLowIncrement    = 0.1
	riskHighCut         = 0.6
	riskMediumCut       = 0.3
)

// Category precedence. An announcement matching several keyword sets takes
// the first category in this order; important is the default. Asserted by
// keyword presence alone, so an important announcement mentioning "portal"
// in passing classifies technical - known precision tradeoff.
var categoryPrecedence = []Category{CategoryTechnical, CategoryAdministrative, CategoryRoutine}

type typeRule struct {
	annType  string
	keywords []string
}

// Ordered: first rule with a keyword hit decides the type.
var typeRules = []typeRule{
	{"quarterly_results", []string{"quarterly results", "quarterly result", "q1 results", "q2 results", "q3 results", "q4 results"}},
	{"annual_results", []string{"annual results", "annual result", "financial results"}},
	{"merger_acquisition", []string{"merger", "acquisition", "amalgamation"}},
	{"order_win", []string{"order", "contract", "tender", "work order", "purchase order"}},
	{"dividend", []string{"dividend"}},
	{"bonus", []string{"bonus"}},
	{"rights_issue", []string{"rights issue"}},
	{"buyback", []string{"buyback", "buy-back"}},
	{"investment", []string{"investment", "funding", "capital infusion"}},
	{"management_change", []string{"resignation", "appointment", "ceo", "managing director", "board change", "management change"}},
	{"board_meeting", []string{"board meeting"}},
	{"regulatory", []string{"sebi", "rbi", "regulatory", "penalty", "litigation", "investigation"}},
	{"technical", []string{"technical glitch", "technical issue", "system maintenance"}},
	{"administrative", []string{"administrative", "procedural", "designation"}},
	{"compliance", []string{"compliance", "intimation", "disclosure", "filing"}},
}

// Classifier derives the composite score, priority tiers, category, risk
// level, and the alert decision. Pure function of the accumulated analysis.
type Classifier struct {
	taxonomy *Taxonomy
}

// NewClassifier returns a classifier over the taxonomy's priority tables
// and keyword sets.
func NewClassifier(taxonomy *Taxonomy) *Classifier {
	return &Classifier{taxonomy: taxonomy}
}

// ClassifyType maps announcement text to a coarse type used by the
// confidence prior and the fine priority table. text must be lower-cased.
func (c *Classifier) ClassifyType(text string) string {
	for _, rule := range typeRules {
		if containsAny(text, rule.keywords) {
			return rule.annType
		}
	}
	return "general"
}

// Composite combines urgency and confidence into the headline score.
func (c *Classifier) Composite(urgency, confidence float64) float64 {
	return clamp01(urgency*urgencyCompositeWeight + confidence*confidenceCompositeWeight)
}

// CoarsePriority buckets the composite score against the urgency thresholds.
func (c *Classifier) CoarsePriority(composite float64) Priority {
	switch {
	case composite >= c.taxonomy.Thresholds.HighUrgency:
		return PriorityHigh
	case composite >= c.taxonomy.Thresholds.MediumUrgency:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// FinePriority refines the coarse band with the announcement-type priority
// table and raw financial-impact bands. Routine categories map to the
// routine tiers so downstream consumers can deprioritize without losing
// genuinely material routine filings.
func (c *Classifier) FinePriority(annType string, category Category, composite, financialImpact float64) Priority {
	if category == CategoryRoutine || category == CategoryTechnical || category == CategoryAdministrative {
		if composite >= c.taxonomy.Thresholds.MediumUrgency {
			return PriorityRoutineImportant
		}
		return PriorityRoutine
	}

	typeBand := c.typeBand(annType)
	impactBand := impactBand(financialImpact)

	if typeBand == PriorityHigh && impactBand == PriorityHigh && composite >= c.taxonomy.Thresholds.HighUrgency {
		return PriorityCritical
	}
	return maxPriority(typeBand, impactBand)
}

func (c *Classifier) typeBand(annType string) Priority {
	for _, t := range c.taxonomy.TypePriorities.High {
		if t == annType {
			return PriorityHigh
		}
	}
	for _, t := range c.taxonomy.TypePriorities.Medium {
		if t == annType {
			return PriorityMedium
		}
	}
	return PriorityLow
}

func impactBand(financialImpact float64) Priority {
	switch {
	case financialImpact > highImpactBand:
		return PriorityHigh
	case financialImpact > mediumImpactBand:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func maxPriority(a, b Priority) Priority {
	rank := map[Priority]int{PriorityLow: 0, PriorityMedium: 1, PriorityHigh: 2}
	if rank[a] >= rank[b] {
		return a
	}
	return b
}

// Categorize checks the category keyword sets in fixed precedence order;
// important is the default when nothing matches.
func (c *Classifier) Categorize(text string) Category {
	lowered := strings.ToLower(text)
	for _, category := range categoryPrecedence {
		if containsAny(lowered, c.taxonomy.CategoryKeywords[string(category)]) {
			return category
		}
	}
	return CategoryImportant
}

// RiskScore accumulates tier-specific increments per matched risk term,
// capped at 1.0.
func (c *Classifier) RiskScore(text string) float64 {
	lowered := strings.ToLower(text)
	score := 0.0
	for _, term := range c.taxonomy.RiskTerms.High {
		if strings.Contains(lowered, term) {
			score += riskHighIncrement
		}
	}
	for _, term := range c.taxonomy.RiskTerms.Medium {
		if strings.Contains(lowered, term) {
			score += riskMediumIncrement
		}
	}
	for _, term := range c.taxonomy.RiskTerms.Low {
		if strings.Contains(lowered, term) {
			score += riskLowIncrement
		}
	}
	return clamp01(score)
}

// RiskLevelFor buckets a risk score.
func (c *Classifier) RiskLevelFor(score float64) RiskLevel {
	switch {
	case score >= riskHighCut:
		return RiskHigh
	case score >= riskMediumCut:
		return RiskMedium
	default:
		return RiskLow
	}
}
