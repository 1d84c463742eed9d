package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/medscreen/adscreen/internal/core/domain"
)

const contextWindowRunes = 30

// KeywordScorer performs the deterministic lexical scan over the
// prohibited-keyword table. The table is a read-only process-wide
// constant validated at startup.
type KeywordScorer struct {
	entries []domain.KeywordEntry
}

func NewKeywordScorer(entries []domain.KeywordEntry) *KeywordScorer {
	return &KeywordScorer{entries: entries}
}

// Score scans the text and returns a keyword-only judgment. The result is
// fully derived from the input; scoring the same text twice yields
// identical output.
func (s *KeywordScorer) Score(text string) *domain.JudgmentResult {
	result := &domain.JudgmentResult{
		Violations:   []domain.Violation{},
		AIViolations: []domain.AIViolation{},
	}

	lower := strings.ToLower(text)
	total := 0
	for _, entry := range s.entries {
		keyword := strings.ToLower(entry.Keyword)
		count := strings.Count(lower, keyword)
		if count == 0 {
			continue
		}

		base := entry.Severity.BaseScore()
		bonus := 0
		if count > 1 {
			bonus = (count - 1) * domain.RepetitionBonusPerHit
		}

		result.Violations = append(result.Violations, domain.Violation{
			Keyword:         entry.Keyword,
			Category:        entry.Category,
			Severity:        entry.Severity,
			BaseScore:       base,
			Count:           count,
			RepetitionBonus: bonus,
			TotalScore:      base + bonus,
			Law:             entry.Law,
			Description:     entry.Description,
			Context:         contextSnippet(text, entry.Keyword, contextWindowRunes),
		})
		total += base + bonus
	}

	result.ApplyRiskScore(total)
	result.KeywordRiskScore = result.RiskScore
	result.Summary = keywordSummary(result)
	return result
}

// contextSnippet returns the text around the first occurrence of keyword,
// window runes on each side, ellipsis-truncated at text boundaries.
func contextSnippet(text, keyword string, window int) string {
	runes := []rune(text)
	lowerRunes := []rune(strings.ToLower(text))
	keywordRunes := []rune(strings.ToLower(keyword))

	// Lowercasing can change rune counts for exotic scripts; fall back to
	// the lowered text so the offsets stay consistent.
	if len(runes) != len(lowerRunes) {
		runes = lowerRunes
	}

	idx := runeIndex(lowerRunes, keywordRunes)
	if idx < 0 {
		return ""
	}

	start := idx - window
	if start < 0 {
		start = 0
	}
	end := idx + len(keywordRunes) + window
	if end > len(runes) {
		end = len(runes)
	}

	snippet := string(runes[start:end])
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(runes) {
		snippet = snippet + "..."
	}
	return snippet
}

func runeIndex(haystack, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func keywordSummary(result *domain.JudgmentResult) string {
	if len(result.Violations) == 0 {
		return "위반 키워드가 발견되지 않았습니다."
	}

	counts := map[string]int{}
	order := []string{}
	for _, v := range result.Violations {
		if _, seen := counts[v.Category]; !seen {
			order = append(order, v.Category)
		}
		counts[v.Category]++
	}
	sort.Strings(order)

	parts := make([]string, 0, len(order))
	for _, category := range order {
		parts = append(parts, fmt.Sprintf("%s %d건", category, counts[category]))
	}

	return fmt.Sprintf("총 %d개의 위반 키워드 발견 (%s). 위험도: %s, 총점: %d점",
		len(result.Violations), strings.Join(parts, ", "), result.RiskLevel, result.RiskScore)
}
