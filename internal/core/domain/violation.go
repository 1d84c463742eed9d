package domain

type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// BaseScore maps a severity class to its fixed keyword base score.
func (s Severity) BaseScore() int {
	switch s {
	case SeverityHigh:
		return 30
	case SeverityMedium:
		return 20
	case SeverityLow:
		return 10
	default:
		return 0
	}
}

func (s Severity) Valid() bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return true
	default:
		return false
	}
}

// RepetitionBonusPerHit is added for every occurrence after the first.
const RepetitionBonusPerHit = 5

// KeywordEntry is one row of the prohibited-keyword table.
type KeywordEntry struct {
	Keyword     string   `json:"keyword"`
	Category    string   `json:"category"`
	Severity    Severity `json:"severity"`
	Law         string   `json:"law"`
	Description string   `json:"description"`
}

// Violation is a keyword-scan finding. Immutable once created.
type Violation struct {
	Keyword         string   `json:"keyword"`
	Category        string   `json:"category"`
	Severity        Severity `json:"severity"`
	BaseScore       int      `json:"score"`
	Count           int      `json:"count"`
	RepetitionBonus int      `json:"repetition_bonus"`
	TotalScore      int      `json:"total_score"`
	Law             string   `json:"law"`
	Description     string   `json:"description"`
	Context         string   `json:"context"`
}

// AIViolation is a finding reported by the structured extraction stage.
// The schema is looser than a keyword Violation on purpose.
type AIViolation struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}
