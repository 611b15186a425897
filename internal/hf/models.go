package hf

// Wire shapes for the HuggingFace inference API.

type inferenceRequest struct {
	Inputs     string               `json:"inputs"`
	Parameters *inferenceParameters `json:"parameters,omitempty"`
}

type inferenceParameters struct {
	CandidateLabels []string `json:"candidate_labels,omitempty"`
	MultiLabel      bool     `json:"multi_label,omitempty"`
}

type summaryResponse []struct {
	SummaryText string `json:"summary_text"`
}

// LabelScore is one entry of a ranked classification result.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// sentimentResponse is the return_all_scores shape: one ranked list per
// input sequence.
type sentimentResponse [][]LabelScore

// ZeroShotResult is a ranked multi-label category distribution. Labels
// and Scores are parallel, sorted by descending score.
type ZeroShotResult struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

type pinnedModelsRequest struct {
	PinnedModels []pinnedModel `json:"pinned_models"`
}

type pinnedModel struct {
	ModelID     string `json:"model_id"`
	ComputeType string `json:"compute_type"`
}
