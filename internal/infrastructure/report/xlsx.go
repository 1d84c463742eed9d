// Package report renders a finished batch as an xlsx workbook for the
// advertising review team.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/medscreen/adscreen/internal/core/domain"
)

const (
	resultSheet  = "심사결과"
	summarySheet = "요약"
)

// Write renders the batch into w. Results appear in completion order,
// matching what the status endpoint reported while the batch ran.
func Write(w io.Writer, batch *domain.Batch) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultSheet); err != nil {
		return fmt.Errorf("rename result sheet: %w", err)
	}

	header := []any{"파일명", "처리 결과", "위험점수", "위험도", "판정", "위반 건수", "OCR 신뢰도", "오류"}
	if err := f.SetSheetRow(resultSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	judgmentCounts := map[domain.Judgment]int{}
	for i, result := range batch.Results {
		row := buildResultRow(result)
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(resultSheet, cell, &row); err != nil {
			return fmt.Errorf("write result row %d: %w", i+1, err)
		}
		if result.Success && result.Analysis != nil {
			judgmentCounts[result.Analysis.Judgment]++
		}
	}

	if err := writeSummary(f, batch, judgmentCounts); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func buildResultRow(result domain.FileResult) []any {
	if !result.Success || result.Analysis == nil {
		return []any{result.Filename, "실패", "", "", "", "", "", result.Error}
	}

	analysis := result.Analysis
	confidence := ""
	if result.OCR != nil {
		confidence = fmt.Sprintf("%.2f", result.OCR.Confidence)
	}
	score := any(analysis.RiskScore)
	if analysis.RiskScore == domain.NotMedicalAdScore {
		score = "N/A"
	}
	return []any{
		result.Filename,
		"성공",
		score,
		string(analysis.RiskLevel),
		string(analysis.Judgment),
		analysis.ViolationCount(),
		confidence,
		"",
	}
}

func writeSummary(f *excelize.File, batch *domain.Batch, judgmentCounts map[domain.Judgment]int) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	rows := [][]any{
		{"배치 ID", batch.ID},
		{"상태", string(batch.Status)},
		{"전체 파일", batch.Total},
		{"처리 완료", batch.Processed},
		{"오류", len(batch.Errors)},
		{},
		{"판정", "건수"},
	}
	for _, judgment := range []domain.Judgment{
		domain.JudgmentReject,
		domain.JudgmentRecommendEdit,
		domain.JudgmentSuggestEdit,
		domain.JudgmentCaution,
		domain.JudgmentPass,
		domain.JudgmentNotApplicable,
	} {
		if count := judgmentCounts[judgment]; count > 0 {
			rows = append(rows, []any{string(judgment), count})
		}
	}

	for i := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(summarySheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}
	return nil
}
