package usecase

import (
	"fmt"
	"strings"

	"github.com/medscreen/adscreen/internal/core/domain"
)

const maxKeywordFindingsInPrompt = 10

// analysisPrompt builds the stage-2 free-text analysis prompt: the ad
// text, the top keyword findings, and any retrieved statute context.
func analysisPrompt(text string, violations []domain.Violation, statuteContext string) string {
	var b strings.Builder

	b.WriteString("당신은 대한민국 의료법 전문가입니다. 다음 의료 광고 텍스트를 분석하여 의료법 위반 여부를 판단하세요.\n")

	if statuteContext != "" {
		b.WriteString("\n")
		b.WriteString(statuteContext)
		b.WriteString("\n")
	}

	if len(violations) > 0 {
		b.WriteString("\n## 키워드 분석 결과\n다음 위반 키워드가 발견되었습니다:\n")
		limit := len(violations)
		if limit > maxKeywordFindingsInPrompt {
			limit = maxKeywordFindingsInPrompt
		}
		for _, v := range violations[:limit] {
			fmt.Fprintf(&b, "- %s (%s, %s)\n", v.Keyword, v.Category, v.Severity)
		}
	}

	b.WriteString("\n## 분석 대상 광고 텍스트\n")
	b.WriteString(text)
	b.WriteString(`

## 요청사항
위 법규 조항을 근거로 광고의 위반 여부를 판정하고, 각 판정에 대해 정확한 법규 조항을 인용해주세요.

다음 형식으로 분석 결과를 제공하세요:

**위반 사항:**
- 발견된 위반 내용을 구체적으로 나열

**법적 근거:**
- 해당하는 의료법 조항 명시

**권고 사항:**
- 광고 수정 방안 제시

**전체 평가:**
- 위험도 (안전/낮음/보통/높음/매우높음)
- 종합 의견
`)
	return b.String()
}

// extractionPrompt builds the stage-3 prompt constraining the model to a
// single JSON judgment object.
func extractionPrompt(analysisText string, keywordViolationCount, keywordRiskScore int) string {
	return fmt.Sprintf(`다음은 의료광고에 대한 AI 분석 결과입니다. 이 분석을 바탕으로 위험점수와 위반사항을 JSON 형식으로 추출하세요.

## AI 분석 결과
%s

## 키워드 분석 결과
- 발견된 위반 키워드: %d건
- 키워드 위험점수: %d점

## 요청사항
1. 먼저 이 광고가 의료광고인지 판단하세요. 의료기관, 의료행위, 의료기기, 의약품 등 의료 관련 내용이 포함되어야 의료광고입니다.
2. 의료광고인 경우 위험점수(0-100점)를 산정하세요.
3. 의료광고가 아닌 경우 위험점수를 -1로 설정하세요.

반드시 다음 JSON 형식으로만 응답하세요:

`+"```json"+`
{
  "is_medical_ad": true,
  "risk_score": 0,
  "violations": [
    {"type": "위반유형", "description": "설명", "severity": "HIGH"}
  ],
  "summary": "한 줄 요약"
}
`+"```"+`

위험점수 산정 기준:
- -1점: 의료광고 아님 (불필요)
- 0-10점: 위반 없음, 안전 (통과)
- 11-30점: 경미한 위반, 주의 필요 (주의)
- 31-60점: 중간 수준 위반, 수정 필요 (수정제안)
- 61-80점: 심각한 위반, 반드시 수정 (수정권고)
- 81-100점: 매우 심각한 위반, 게재 불가 (게재불가)

위험도와 판정은 위험점수 기반으로 시스템이 자동 계산합니다.
`, analysisText, keywordViolationCount, keywordRiskScore)
}
