package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/medscreen/adscreen/internal/core/domain"
	"github.com/medscreen/adscreen/internal/core/ports"
)

// PipelineTimeouts bound each suspending collaborator call so one stalled
// call cannot stall a worker slot beyond itself.
type PipelineTimeouts struct {
	Retrieval  time.Duration
	Analysis   time.Duration
	Extraction time.Duration
}

func (t PipelineTimeouts) normalize() PipelineTimeouts {
	out := t
	if out.Retrieval <= 0 {
		out.Retrieval = 15 * time.Second
	}
	if out.Analysis <= 0 {
		out.Analysis = 90 * time.Second
	}
	if out.Extraction <= 0 {
		out.Extraction = 30 * time.Second
	}
	return out
}

// JudgmentPipeline fuses the keyword scan with a two-stage AI judgment.
// Collaborators are injected once at construction; either may be nil,
// which disables the AI stages.
type JudgmentPipeline struct {
	scorer        *KeywordScorer
	reasoner      ports.ReasoningClient
	retriever     ports.ContextRetriever
	retrievalTopK int
	timeouts      PipelineTimeouts
}

func NewJudgmentPipeline(
	scorer *KeywordScorer,
	reasoner ports.ReasoningClient,
	retriever ports.ContextRetriever,
	retrievalTopK int,
	timeouts PipelineTimeouts,
) *JudgmentPipeline {
	if retrievalTopK <= 0 {
		retrievalTopK = 5
	}
	return &JudgmentPipeline{
		scorer:        scorer,
		reasoner:      reasoner,
		retriever:     retriever,
		retrievalTopK: retrievalTopK,
		timeouts:      timeouts.normalize(),
	}
}

// ScoreKeywords runs the keyword stage alone.
func (p *JudgmentPipeline) ScoreKeywords(text string) *domain.JudgmentResult {
	result := p.scorer.Score(text)
	result.KeywordRiskScore = result.RiskScore
	return result
}

// Judge runs the full three-stage fusion. Collaborator failures degrade
// to the keyword-stage result; they never abort the pipeline.
func (p *JudgmentPipeline) Judge(ctx context.Context, text string, opts domain.JudgeOptions) *domain.JudgmentResult {
	result := p.ScoreKeywords(text)

	if !opts.UseAI || p.reasoner == nil {
		return result
	}

	statuteContext := ""
	if opts.UseContext && p.retriever != nil {
		retrievalCtx, cancel := context.WithTimeout(ctx, p.timeouts.Retrieval)
		retrieved, err := p.retriever.RetrieveContext(retrievalCtx, text, p.retrievalTopK)
		cancel()
		if err != nil {
			slog.Warn("statute_retrieval_degraded", "error", err)
		} else {
			statuteContext = retrieved
		}
	}

	analysisCtx, cancel := context.WithTimeout(ctx, p.timeouts.Analysis)
	analysis, err := p.reasoner.Complete(analysisCtx, analysisPrompt(text, result.Violations, statuteContext))
	cancel()
	if err != nil {
		result.AIAnalysis = fmt.Sprintf("AI 분석 중 오류 발생: %v", err)
		slog.Warn("ai_analysis_degraded", "error", err)
		return result
	}
	result.AIAnalysis = analysis

	extractionCtx, cancel := context.WithTimeout(ctx, p.timeouts.Extraction)
	raw, err := p.reasoner.CompleteJSON(extractionCtx, extractionPrompt(analysis, len(result.Violations), result.KeywordRiskScore))
	cancel()
	if err != nil {
		slog.Warn("judgment_extraction_degraded", "error", err, "keyword_risk_score", result.KeywordRiskScore)
		return result
	}

	payload, err := ParseJudgmentPayload(raw)
	if err != nil {
		// Keyword score stays authoritative; an unparseable answer must
		// never be reported as risk_score=0.
		slog.Warn("judgment_extraction_unparseable", "error", err, "keyword_risk_score", result.KeywordRiskScore)
		return result
	}

	result.ApplyRiskScore(payload.RiskScore)
	result.AIViolations = payload.Violations
	if payload.Summary != "" {
		result.Summary = payload.Summary
	}
	return result
}
