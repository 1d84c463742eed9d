package usecase

import (
	"testing"

	"github.com/medscreen/adscreen/internal/core/domain"
)

func TestParseJudgmentFencedBlock(t *testing.T) {
	raw := "분석 결과는 다음과 같습니다.\n```json\n{\"is_medical_ad\": true, \"risk_score\": 72, \"violations\": [{\"type\": \"과장광고\", \"description\": \"효과 보장 문구\", \"severity\": \"high\"}], \"summary\": \"심각한 위반\"}\n```\n감사합니다."

	payload, err := ParseJudgmentPayload(raw)
	if err != nil {
		t.Fatalf("expected fenced block to parse, got %v", err)
	}
	if payload.RiskScore != 72 || !payload.IsMedicalAd {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if len(payload.Violations) != 1 || payload.Violations[0].Severity != domain.SeverityHigh {
		t.Fatalf("severity should be upper-cased, got %+v", payload.Violations)
	}
	if payload.Summary != "심각한 위반" {
		t.Fatalf("unexpected summary: %q", payload.Summary)
	}
}

func TestParseJudgmentBraceScanFallback(t *testing.T) {
	raw := `응답: {"is_medical_ad": false, "risk_score": -1, "violations": [], "summary": "의료광고 아님"} 끝.`

	payload, err := ParseJudgmentPayload(raw)
	if err != nil {
		t.Fatalf("expected brace-scan fallback to parse, got %v", err)
	}
	if payload.RiskScore != -1 || payload.IsMedicalAd {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestParseJudgmentPrefersFencedBlock(t *testing.T) {
	raw := "{\"risk_score\": 5}\n```json\n{\"risk_score\": 40, \"summary\": \"fenced\"}\n```"

	payload, err := ParseJudgmentPayload(raw)
	if err != nil || payload.RiskScore != 40 {
		t.Fatalf("expected the fenced block to win, got %+v err=%v", payload, err)
	}
}

func TestParseJudgmentMissingRiskScoreIsExtractionError(t *testing.T) {
	_, err := ParseJudgmentPayload(`{"is_medical_ad": true, "summary": "없음"}`)
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("a payload without risk_score must carry the extraction kind, got %v", err)
	}
}

func TestParseJudgmentGarbageIsExtractionError(t *testing.T) {
	for _, raw := range []string{"", "위험점수는 40점입니다.", "```json\nnot json\n```", "{broken"} {
		if _, err := ParseJudgmentPayload(raw); !domain.IsKind(err, domain.ErrExtraction) {
			t.Fatalf("expected extraction kind for %q, got %v", raw, err)
		}
	}
}

func TestParseJudgmentNestedObject(t *testing.T) {
	raw := `{"risk_score": 85, "violations": [{"type": "보장", "description": "x", "severity": "HIGH"}], "summary": "s"}`
	payload, err := ParseJudgmentPayload(raw)
	if err != nil || payload.RiskScore != 85 {
		t.Fatalf("balanced nested braces should parse, got %+v err=%v", payload, err)
	}
}
