package models

import "time"

// IgnoreIndex marks a label position that does not contribute to the loss.
const IgnoreIndex = -100

type Snippet struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Content   string `json:"content"`
	Text      string `json:"text"`
	Filename  string `json:"filename"`
	Language  string `json:"language"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

func NewSnippet(id, name, content, filename, language string) *Snippet {
	return &Snippet{
		ID:       id,
		Name:     name,
		Content:  content,
		Filename: filename,
		Language: language,
	}
}

type TokenSequence struct {
	InputIDs []int `json:"input_ids"`
	Labels   []int `json:"labels"`
}

func NewTokenSequence(ids []int) TokenSequence {
	labels := make([]int, len(ids))
	copy(labels, ids)
	return TokenSequence{InputIDs: ids, Labels: labels}
}

type Block struct {
	InputIDs      []int `json:"input_ids"`
	Labels        []int `json:"labels"`
	AttentionMask []int `json:"attention_mask"`
}

// PadCount is the number of trailing padding positions.
func (b Block) PadCount() int {
	n := 0
	for i := len(b.AttentionMask) - 1; i >= 0 && b.AttentionMask[i] == 0; i-- {
		n++
	}
	return n
}

type Split struct {
	Train []Block `json:"train"`
	Test  []Block `json:"test"`
}

type RunState string

const (
	RunStateRunning   RunState = "running"
	RunStateSucceeded RunState = "succeeded"
	RunStateFailed    RunState = "failed"
)

type Sample struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
}

// RunReport summarises a finished pipeline run.
type RunReport struct {
	RunID          string   `json:"run_id"`
	Repository     string   `json:"repository"`
	Snippets       int      `json:"snippets"`
	TrainBlocks    int      `json:"train_blocks"`
	TestBlocks     int      `json:"test_blocks"`
	VocabSize      int      `json:"vocab_size"`
	Steps          int      `json:"steps"`
	FinalTrainLoss float64  `json:"final_train_loss"`
	FinalEvalLoss  float64  `json:"final_eval_loss"`
	Checkpoints    []string `json:"checkpoints"`
	Samples        []Sample `json:"samples,omitempty"`
}

type RunStatus struct {
	ID         string     `json:"id"`
	State      RunState   `json:"state"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
	Report     *RunReport `json:"report,omitempty"`
}
