package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/medscreen/adscreen/internal/core/domain"
	"github.com/medscreen/adscreen/internal/core/ports"
)

type reasonerFake struct {
	completeText string
	completeErr  error
	jsonText     string
	jsonErr      error

	completePrompts []string
	jsonPrompts     []string
}

func (f *reasonerFake) Complete(_ context.Context, prompt string) (string, error) {
	f.completePrompts = append(f.completePrompts, prompt)
	if f.completeErr != nil {
		return "", f.completeErr
	}
	return f.completeText, nil
}

func (f *reasonerFake) CompleteJSON(_ context.Context, prompt string) (string, error) {
	f.jsonPrompts = append(f.jsonPrompts, prompt)
	if f.jsonErr != nil {
		return "", f.jsonErr
	}
	return f.jsonText, nil
}

type retrieverFake struct {
	context string
	err     error
	calls   int
}

func (f *retrieverFake) RetrieveContext(_ context.Context, _ string, _ int) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.context, nil
}

func newTestPipeline(reasoner *reasonerFake, retriever *retrieverFake) *JudgmentPipeline {
	scorer := NewKeywordScorer(testKeywordEntries())
	var r ports.ReasoningClient
	if reasoner != nil {
		r = reasoner
	}
	var c ports.ContextRetriever
	if retriever != nil {
		c = retriever
	}
	return NewJudgmentPipeline(scorer, r, c, 5, PipelineTimeouts{})
}

func TestJudgeWithoutAIReturnsKeywordResult(t *testing.T) {
	reasoner := &reasonerFake{}
	p := newTestPipeline(reasoner, nil)

	result := p.Judge(context.Background(), "최고의 병원", domain.JudgeOptions{UseAI: false})

	if len(reasoner.completePrompts) != 0 {
		t.Fatal("AI must not be called when the flag is off")
	}
	if result.RiskScore != result.KeywordRiskScore {
		t.Fatalf("keyword-only result expected, got %+v", result)
	}
}

func TestJudgeAppliesExtractedScore(t *testing.T) {
	reasoner := &reasonerFake{
		completeText: "상세 분석 본문",
		jsonText:     "```json\n{\"is_medical_ad\": true, \"risk_score\": 85, \"violations\": [{\"type\": \"과장\", \"description\": \"d\", \"severity\": \"HIGH\"}], \"summary\": \"게재 불가 수준\"}\n```",
	}
	p := newTestPipeline(reasoner, nil)

	result := p.Judge(context.Background(), "최고의 병원", domain.JudgeOptions{UseAI: true})

	if result.RiskScore != 85 || result.RiskLevel != domain.RiskCritical || result.Judgment != domain.JudgmentReject {
		t.Fatalf("extracted score should drive the verdict, got %+v", result)
	}
	if result.AIAnalysis != "상세 분석 본문" {
		t.Fatalf("stage-2 prose should be retained, got %q", result.AIAnalysis)
	}
	if len(result.AIViolations) != 1 {
		t.Fatalf("expected AI violations, got %+v", result.AIViolations)
	}
	if len(result.Violations) != 1 {
		t.Fatal("keyword violations must be preserved for audit")
	}
	if result.Summary != "게재 불가 수준" {
		t.Fatalf("summary should be replaced, got %q", result.Summary)
	}
	if result.KeywordRiskScore != domain.SeverityMedium.BaseScore() {
		t.Fatalf("keyword score must survive as audit field, got %d", result.KeywordRiskScore)
	}
}

func TestJudgeNotMedicalAdSentinelOverridesKeywords(t *testing.T) {
	reasoner := &reasonerFake{
		completeText: "의료광고가 아닙니다",
		jsonText:     `{"is_medical_ad": false, "risk_score": -1, "violations": [], "summary": "일반 제품 광고"}`,
	}
	p := newTestPipeline(reasoner, nil)

	result := p.Judge(context.Background(), "100% 효과 보장", domain.JudgeOptions{UseAI: true})

	if result.RiskScore != domain.NotMedicalAdScore || result.RiskLevel != domain.RiskNotApplicable {
		t.Fatalf("sentinel must short-circuit to N/A regardless of keyword findings, got %+v", result)
	}
	if result.Judgment != domain.JudgmentNotApplicable {
		t.Fatalf("expected 불필요, got %s", result.Judgment)
	}
}

func TestJudgeAnalysisFailureDegradesToKeywords(t *testing.T) {
	reasoner := &reasonerFake{completeErr: errors.New("provider timeout")}
	p := newTestPipeline(reasoner, nil)

	result := p.Judge(context.Background(), "최고의 병원", domain.JudgeOptions{UseAI: true})

	if result.RiskScore != result.KeywordRiskScore {
		t.Fatalf("keyword score must be retained on stage-2 failure, got %+v", result)
	}
	if result.AIAnalysis == "" {
		t.Fatal("the degradation must surface in the analysis text")
	}
	if len(reasoner.jsonPrompts) != 0 {
		t.Fatal("extraction must not run after an analysis failure")
	}
}

func TestJudgeExtractionErrorRetainsKeywordScore(t *testing.T) {
	reasoner := &reasonerFake{completeText: "분석", jsonErr: errors.New("provider 500")}
	p := newTestPipeline(reasoner, nil)

	result := p.Judge(context.Background(), "최고의 병원", domain.JudgeOptions{UseAI: true})

	want := domain.SeverityMedium.BaseScore()
	if result.RiskScore != want {
		t.Fatalf("expected keyword score %d after extraction error, got %d", want, result.RiskScore)
	}
}

func TestJudgeUnparseableExtractionNeverReportsZero(t *testing.T) {
	reasoner := &reasonerFake{completeText: "분석", jsonText: "점수를 드릴 수 없습니다"}
	p := newTestPipeline(reasoner, nil)

	result := p.Judge(context.Background(), "100% 효과 보장", domain.JudgeOptions{UseAI: true})

	if result.RiskScore == 0 {
		t.Fatal("an unparseable extraction must never be coerced to risk_score=0")
	}
	if result.RiskScore != result.KeywordRiskScore {
		t.Fatalf("keyword score must be authoritative after parse failure, got %+v", result)
	}
}

func TestJudgeRetrievalFailureStillAnalyzes(t *testing.T) {
	reasoner := &reasonerFake{
		completeText: "분석",
		jsonText:     `{"risk_score": 15, "violations": [], "summary": "경미"}`,
	}
	retriever := &retrieverFake{err: errors.New("vector store down")}
	p := newTestPipeline(reasoner, retriever)

	result := p.Judge(context.Background(), "최고의 병원", domain.JudgeOptions{UseAI: true, UseContext: true})

	if retriever.calls != 1 {
		t.Fatal("retrieval should have been attempted")
	}
	if len(reasoner.completePrompts) != 1 {
		t.Fatal("analysis must proceed without statute context")
	}
	if result.RiskScore != 15 {
		t.Fatalf("expected extracted score, got %d", result.RiskScore)
	}
}

func TestJudgeIncludesStatuteContextInPrompt(t *testing.T) {
	reasoner := &reasonerFake{
		completeText: "분석",
		jsonText:     `{"risk_score": 10, "violations": [], "summary": "안전"}`,
	}
	retriever := &retrieverFake{context: "## 관련 의료법 조항\n제56조 ..."}
	p := newTestPipeline(reasoner, retriever)

	p.Judge(context.Background(), "최고의 병원", domain.JudgeOptions{UseAI: true, UseContext: true})

	if len(reasoner.completePrompts) != 1 {
		t.Fatal("expected one analysis call")
	}
	if prompt := reasoner.completePrompts[0]; !containsAll(prompt, "제56조", "최고의 병원", "최고") {
		t.Fatalf("prompt must carry statute context, ad text and keyword findings:\n%s", prompt)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
