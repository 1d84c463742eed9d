package domain

import "time"

type OCREngine string

const (
	EngineNaver  OCREngine = "naver"
	EnginePaddle OCREngine = "paddle"
)

func ParseOCREngine(s string) OCREngine {
	if OCREngine(s) == EnginePaddle {
		return EnginePaddle
	}
	return EngineNaver
}

// JudgeOptions are the pipeline flags carried per call and per batch.
type JudgeOptions struct {
	UseAI      bool
	UseContext bool
}

// OCRExtraction is what the OCR collaborator yields for one image.
type OCRExtraction struct {
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"`
	FieldCount int       `json:"fields_count"`
	Engine     OCREngine `json:"engine"`
}

// BatchItem is one submitted unit of work: image content plus its
// display name.
type BatchItem struct {
	Filename string
	Content  []byte
}

type TaskState string

const (
	TaskPending   TaskState = "pending"
	TaskOCR       TaskState = "ocr"
	TaskAnalyzing TaskState = "analyzing"
	TaskCompleted TaskState = "completed"
	TaskFailed    TaskState = "failed"
)

// Terminal states are absorbing; no transition leaves them.
func (s TaskState) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// FileTask tracks one item's lifecycle inside a batch. It is mutated only
// through the orchestrator's state-update operations.
type FileTask struct {
	Filename string    `json:"filename"`
	State    TaskState `json:"status"`
	Progress int       `json:"progress"`
	Error    string    `json:"error,omitempty"`
}

// FileResult is the per-item outcome appended in completion order.
type FileResult struct {
	Filename string          `json:"filename"`
	Success  bool            `json:"success"`
	Error    string          `json:"error,omitempty"`
	OCR      *OCRExtraction  `json:"ocr_result,omitempty"`
	Analysis *JudgmentResult `json:"analysis_result,omitempty"`
}

type BatchStatus string

const (
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
)

func (s BatchStatus) Terminal() bool {
	return s == BatchCompleted || s == BatchFailed
}

// Batch tracks a set of items submitted together. It becomes immutable
// once its status is terminal.
type Batch struct {
	ID                  string       `json:"batch_id"`
	Status              BatchStatus  `json:"status"`
	Total               int          `json:"total_files"`
	Processed           int          `json:"processed_files"`
	ProgressPercent     float64      `json:"progress_percent"`
	StartTime           time.Time    `json:"start_time"`
	EstimatedCompletion *time.Time   `json:"estimated_completion,omitempty"`
	ElapsedSeconds      float64      `json:"elapsed_seconds"`
	Tasks               []FileTask   `json:"file_statuses"`
	Results             []FileResult `json:"results"`
	Errors              []string     `json:"errors"`
	CompletedAt         *time.Time   `json:"completed_at,omitempty"`
}

// Clone returns a deep-enough copy for status-polling readers, so the
// live batch is never shared outside the store's lock.
func (b *Batch) Clone() *Batch {
	out := *b
	out.Tasks = append([]FileTask(nil), b.Tasks...)
	out.Results = append([]FileResult(nil), b.Results...)
	out.Errors = append([]string(nil), b.Errors...)
	if b.EstimatedCompletion != nil {
		eta := *b.EstimatedCompletion
		out.EstimatedCompletion = &eta
	}
	if b.CompletedAt != nil {
		done := *b.CompletedAt
		out.CompletedAt = &done
	}
	return &out
}
