package domain

type RiskLevel string

const (
	RiskNotApplicable RiskLevel = "N/A"
	RiskSafe          RiskLevel = "SAFE"
	RiskLow           RiskLevel = "LOW"
	RiskMedium        RiskLevel = "MEDIUM"
	RiskHigh          RiskLevel = "HIGH"
	RiskCritical      RiskLevel = "CRITICAL"
)

// Judgment is the human-facing verdict label, bound 1:1 to a risk level.
// The wire values are the Korean verdicts the reviewers work with.
type Judgment string

const (
	JudgmentNotApplicable Judgment = "불필요"
	JudgmentPass          Judgment = "통과"
	JudgmentCaution       Judgment = "주의"
	JudgmentSuggestEdit   Judgment = "수정제안"
	JudgmentRecommendEdit Judgment = "수정권고"
	JudgmentReject        Judgment = "게재불가"
)

// NotMedicalAdScore is the sentinel meaning the text is not a medical
// advertisement at all.
const NotMedicalAdScore = -1

// riskBands is the single source of truth for score -> level -> judgment.
// Lower bounds are inclusive; bands are ordered descending for lookup.
var riskBands = []struct {
	min      int
	level    RiskLevel
	judgment Judgment
}{
	{81, RiskCritical, JudgmentReject},
	{61, RiskHigh, JudgmentRecommendEdit},
	{31, RiskMedium, JudgmentSuggestEdit},
	{11, RiskLow, JudgmentCaution},
	{0, RiskSafe, JudgmentPass},
}

// ClampRiskScore bounds a score to [-1, 100]. Any negative value is the
// not-applicable sentinel.
func ClampRiskScore(score int) int {
	if score < 0 {
		return NotMedicalAdScore
	}
	if score > 100 {
		return 100
	}
	return score
}

// RiskLevelFor maps a risk score to its band. The score is clamped first.
func RiskLevelFor(score int) RiskLevel {
	score = ClampRiskScore(score)
	if score < 0 {
		return RiskNotApplicable
	}
	for _, band := range riskBands {
		if score >= band.min {
			return band.level
		}
	}
	return RiskSafe
}

// JudgmentFor maps a risk level to its verdict label.
func JudgmentFor(level RiskLevel) Judgment {
	if level == RiskNotApplicable {
		return JudgmentNotApplicable
	}
	for _, band := range riskBands {
		if band.level == level {
			return band.judgment
		}
	}
	return JudgmentCaution
}

// JudgmentResult is the outcome of the risk-judgment pipeline for one text.
type JudgmentResult struct {
	Violations       []Violation   `json:"violations"`
	AIViolations     []AIViolation `json:"ai_violations"`
	RiskScore        int           `json:"risk_score"`
	KeywordRiskScore int           `json:"keyword_risk_score"`
	RiskLevel        RiskLevel     `json:"risk_level"`
	Judgment         Judgment      `json:"judgment"`
	Summary          string        `json:"summary"`
	AIAnalysis       string        `json:"ai_analysis,omitempty"`
}

// ApplyRiskScore sets the authoritative score and derives level and
// judgment from it. It is the only way the three fields change together.
func (r *JudgmentResult) ApplyRiskScore(score int) {
	r.RiskScore = ClampRiskScore(score)
	r.RiskLevel = RiskLevelFor(r.RiskScore)
	r.Judgment = JudgmentFor(r.RiskLevel)
}

func (r *JudgmentResult) ViolationCount() int {
	return len(r.Violations) + len(r.AIViolations)
}
