package domain

import "testing"

func TestRiskLevelForBandBoundaries(t *testing.T) {
	cases := []struct {
		score int
		level RiskLevel
	}{
		{-1, RiskNotApplicable},
		{0, RiskSafe},
		{10, RiskSafe},
		{11, RiskLow},
		{30, RiskLow},
		{31, RiskMedium},
		{60, RiskMedium},
		{61, RiskHigh},
		{80, RiskHigh},
		{81, RiskCritical},
		{100, RiskCritical},
	}
	for _, tc := range cases {
		if got := RiskLevelFor(tc.score); got != tc.level {
			t.Errorf("score %d: expected %s, got %s", tc.score, tc.level, got)
		}
	}
}

func TestRiskLevelForClampsOutOfRange(t *testing.T) {
	if got := RiskLevelFor(250); got != RiskCritical {
		t.Fatalf("expected CRITICAL for overflow score, got %s", got)
	}
	if got := RiskLevelFor(-42); got != RiskNotApplicable {
		t.Fatalf("expected N/A for negative score, got %s", got)
	}
}

func TestJudgmentForIsBoundOneToOne(t *testing.T) {
	cases := map[RiskLevel]Judgment{
		RiskNotApplicable: JudgmentNotApplicable,
		RiskSafe:          JudgmentPass,
		RiskLow:           JudgmentCaution,
		RiskMedium:        JudgmentSuggestEdit,
		RiskHigh:          JudgmentRecommendEdit,
		RiskCritical:      JudgmentReject,
	}
	for level, judgment := range cases {
		if got := JudgmentFor(level); got != judgment {
			t.Errorf("level %s: expected %s, got %s", level, judgment, got)
		}
	}
}

func TestApplyRiskScoreDerivesLevelAndJudgmentTogether(t *testing.T) {
	var r JudgmentResult
	r.ApplyRiskScore(72)
	if r.RiskScore != 72 || r.RiskLevel != RiskHigh || r.Judgment != JudgmentRecommendEdit {
		t.Fatalf("unexpected derivation: %+v", r)
	}

	r.ApplyRiskScore(NotMedicalAdScore)
	if r.RiskLevel != RiskNotApplicable || r.Judgment != JudgmentNotApplicable {
		t.Fatalf("sentinel must short-circuit to N/A, got %+v", r)
	}
}

func TestSeverityBaseScores(t *testing.T) {
	if SeverityHigh.BaseScore() != 30 || SeverityMedium.BaseScore() != 20 || SeverityLow.BaseScore() != 10 {
		t.Fatal("severity base scores changed")
	}
	if Severity("UNKNOWN").BaseScore() != 0 {
		t.Fatal("unknown severity must score zero")
	}
}

func TestBatchCloneIsolatesSlices(t *testing.T) {
	b := &Batch{
		ID:     "b1",
		Tasks:  []FileTask{{Filename: "a.jpg", State: TaskPending}},
		Errors: []string{"first"},
	}
	c := b.Clone()
	c.Tasks[0].State = TaskFailed
	c.Errors = append(c.Errors, "second")

	if b.Tasks[0].State != TaskPending {
		t.Fatal("clone must not share task backing array")
	}
	if len(b.Errors) != 1 {
		t.Fatal("clone must not share errors slice")
	}
}
