package analysis

import (
	"math"
	"testing"
)

func TestClassifyType(t *testing.T) {
	c := NewClassifier(loadTestTaxonomy(t))

	tests := []struct {
		text string
		want string
	}{
		{"quarterly results for q2", "quarterly_results"},
		{"annual results declared", "annual_results"},
		{"merger with subsidiary approved", "merger_acquisition"},
		{"work order received from ministry", "order_win"},
		{"interim dividend declared", "dividend"},
		{"buyback of equity shares", "buyback"},
		{"resignation of chief financial officer", "management_change"},
		{"board meeting scheduled", "board_meeting"},
		{"sebi penalty imposed", "regulatory"},
		{"technical glitch in trading portal", "technical"},
		{"compliance certificate under regulation", "compliance"},
		{"something else entirely", "general"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := c.ClassifyType(tt.text); got != tt.want {
				t.Errorf("ClassifyType(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestComposite(t *testing.T) {
	c := NewClassifier(loadTestTaxonomy(t))

	if got := c.Composite(1.0, 1.0); got != 1.0 {
		t.Errorf("Composite(1,1) = %v, want 1.0", got)
	}
	if got := c.Composite(0.5, 0.25); math.Abs(got-0.4) > 1e-9 {
		t.Errorf("Composite(0.5,0.25) = %v, want 0.4", got)
	}
	if got := c.Composite(0, 0); got != 0 {
		t.Errorf("Composite(0,0) = %v, want 0", got)
	}
}

func TestCoarsePriority(t *testing.T) {
	c := NewClassifier(loadTestTaxonomy(t))

	tests := []struct {
		composite float64
		want      Priority
	}{
		{0.9, PriorityHigh},
		{0.8, PriorityHigh},
		{0.7, PriorityMedium},
		{0.6, PriorityMedium},
		{0.5, PriorityLow},
		{0, PriorityLow},
	}
	for _, tt := range tests {
		if got := c.CoarsePriority(tt.composite); got != tt.want {
			t.Errorf("CoarsePriority(%v) = %s, want %s", tt.composite, got, tt.want)
		}
	}
}

func TestFinePriority(t *testing.T) {
	c := NewClassifier(loadTestTaxonomy(t))

	tests := []struct {
		name      string
		annType   string
		category  Category
		composite float64
		impact    float64
		want      Priority
	}{
		{"critical order win", "order_win", CategoryImportant, 0.85, 5e7, PriorityCritical},
		{"high type low impact", "order_win", CategoryImportant, 0.5, 0, PriorityHigh},
		{"impact band lifts general", "general", CategoryImportant, 0.5, 2e7, PriorityHigh},
		{"medium impact band", "general", CategoryImportant, 0.5, 5e6, PriorityMedium},
		{"low everything", "general", CategoryImportant, 0.2, 0, PriorityLow},
		{"routine category", "board_meeting", CategoryRoutine, 0.2, 0, PriorityRoutine},
		{"material routine", "board_meeting", CategoryRoutine, 0.7, 0, PriorityRoutineImportant},
		{"technical category", "technical", CategoryTechnical, 0.1, 0, PriorityRoutine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.FinePriority(tt.annType, tt.category, tt.composite, tt.impact)
			if got != tt.want {
				t.Errorf("FinePriority(%s, %s, %v, %v) = %s, want %s",
					tt.annType, tt.category, tt.composite, tt.impact, got, tt.want)
			}
		})
	}
}

func TestCategorizePrecedence(t *testing.T) {
	c := NewClassifier(loadTestTaxonomy(t))

	tests := []struct {
		name string
		text string
		want Category
	}{
		{"technical beats routine", "technical glitch during board meeting", CategoryTechnical},
		{"administrative beats routine", "procedural clarification on designation", CategoryAdministrative},
		{"routine", "board meeting intimation", CategoryRoutine},
		{"important default", "order worth 150 crore from ministry of defense", CategoryImportant},
		{"empty defaults important", "", CategoryImportant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Categorize(tt.text); got != tt.want {
				t.Errorf("Categorize(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestRiskScoring(t *testing.T) {
	c := NewClassifier(loadTestTaxonomy(t))

	tests := []struct {
		name      string
		text      string
		wantLevel RiskLevel
	}{
		{"multiple high risk terms", "penalty imposed, litigation pending, investigation ongoing", RiskHigh},
		{"two medium terms", "arbitration proceedings over alleged breach", RiskMedium},
		{"clean text", "record quarter with strong growth", RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := c.RiskScore(tt.text)
			if score < 0 || score > 1 {
				t.Fatalf("risk score %v out of [0,1]", score)
			}
			if got := c.RiskLevelFor(score); got != tt.wantLevel {
				t.Errorf("risk level for %q = %s (score %v), want %s", tt.text, got, score, tt.wantLevel)
			}
		})
	}
}

func TestRiskScoreCap(t *testing.T) {
	c := NewClassifier(loadTestTaxonomy(t))

	text := "penalty fine litigation investigation fraud default insolvency bankruptcy dispute arbitration violation breach delay resignation"
	if got := c.RiskScore(text); got != 1.0 {
		t.Errorf("saturated risk score = %v, want cap at 1.0", got)
	}
}
