package usecase

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/medscreen/adscreen/internal/core/domain"
)

// JudgmentPayload is the structured answer the extraction stage demands.
type JudgmentPayload struct {
	IsMedicalAd bool                 `json:"is_medical_ad"`
	RiskScore   int                  `json:"risk_score"`
	Violations  []domain.AIViolation `json:"violations"`
	Summary     string               `json:"summary"`
}

// ParseJudgmentPayload extracts the judgment JSON from an LLM response.
// Two strategies, in order: a fenced ```json block, then a best-effort
// brace-matched substring containing "risk_score". A response without a
// parseable risk_score field is an ErrExtraction failure, never coerced
// to 0.
func ParseJudgmentPayload(raw string) (JudgmentPayload, error) {
	if block, ok := fencedJSONBlock(raw); ok {
		if payload, ok := decodeJudgment(block); ok {
			return payload, nil
		}
	}
	for _, candidate := range braceCandidates(raw) {
		if payload, ok := decodeJudgment(candidate); ok {
			return payload, nil
		}
	}
	return JudgmentPayload{}, domain.WrapError(domain.ErrExtraction, "parse judgment",
		errors.New("no parseable risk_score in response"))
}

func decodeJudgment(s string) (JudgmentPayload, bool) {
	// risk_score must be present, not merely zero-valued.
	var probe struct {
		IsMedicalAd bool                 `json:"is_medical_ad"`
		RiskScore   *float64             `json:"risk_score"`
		Violations  []domain.AIViolation `json:"violations"`
		Summary     string               `json:"summary"`
	}
	if err := json.Unmarshal([]byte(s), &probe); err != nil || probe.RiskScore == nil {
		return JudgmentPayload{}, false
	}

	payload := JudgmentPayload{
		IsMedicalAd: probe.IsMedicalAd,
		RiskScore:   int(*probe.RiskScore),
		Violations:  probe.Violations,
		Summary:     strings.TrimSpace(probe.Summary),
	}
	if payload.Violations == nil {
		payload.Violations = []domain.AIViolation{}
	}
	for i := range payload.Violations {
		payload.Violations[i].Severity = domain.Severity(strings.ToUpper(string(payload.Violations[i].Severity)))
	}
	return payload, true
}

func fencedJSONBlock(raw string) (string, bool) {
	const fence = "```json"
	start := strings.Index(raw, fence)
	if start < 0 {
		return "", false
	}
	rest := raw[start+len(fence):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// braceCandidates yields balanced {...} substrings that mention
// risk_score, outermost first.
func braceCandidates(raw string) []string {
	var out []string
	for i := 0; i < len(raw); i++ {
		if raw[i] != '{' {
			continue
		}
		depth := 0
		for j := i; j < len(raw); j++ {
			switch raw[j] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					candidate := raw[i : j+1]
					if strings.Contains(candidate, `"risk_score"`) {
						out = append(out, candidate)
					}
					i = j
					j = len(raw)
				}
			}
		}
	}
	return out
}
