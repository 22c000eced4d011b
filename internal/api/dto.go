package api

import (
	"time"

	"agentic-xai/internal/explain"
	"agentic-xai/internal/store"
)

// TaskRequest is the decision request body. Context may carry arbitrary
// JSON-compatible values.
type TaskRequest struct {
	TaskDescription string         `json:"task_description"`
	Context         map[string]any `json:"context"`
}

// TaskResponse is the synchronous decision payload. Confidence is always in
// [0,1]; presentation layers scale it themselves.
type TaskResponse struct {
	DecisionID       string          `json:"decision_id"`
	Decision         string          `json:"decision"`
	Confidence       float64         `json:"confidence"`
	Source           string          `json:"source"`
	ProcessingTimeMs int64           `json:"processing_time_ms"`
	Explanation      explain.Payload `json:"explanation"`
}

// DecisionDTO is the API representation of a persisted history record.
type DecisionDTO struct {
	ID                string             `json:"id"`
	TaskDescription   string             `json:"task_description"`
	Context           map[string]any     `json:"context"`
	Decision          string             `json:"decision"`
	ReasoningSteps    []string           `json:"reasoning_steps"`
	FeatureImportance map[string]float64 `json:"feature_importance"`
	Confidence        float64            `json:"confidence"`
	Source            string             `json:"source"`
	ModelName         string             `json:"model_name"`
	ProcessingTimeMs  int64              `json:"processing_time_ms"`
	CreatedAt         time.Time          `json:"created_at"`
}

// DecisionsResponse is the paginated history listing.
type DecisionsResponse struct {
	Items []DecisionDTO `json:"items"`
	Total int64         `json:"total"`
}

// DecisionFromModel converts a store.DecisionRecord into its DTO.
func DecisionFromModel(r store.DecisionRecord) DecisionDTO {
	return DecisionDTO{
		ID:                r.ID,
		TaskDescription:   r.TaskDescription,
		Context:           r.Context(),
		Decision:          r.Decision,
		ReasoningSteps:    r.Reasoning(),
		FeatureImportance: r.Importance(),
		Confidence:        round2(r.Confidence),
		Source:            r.Source,
		ModelName:         r.ModelName,
		ProcessingTimeMs:  r.ProcessingTimeMs,
		CreatedAt:         r.CreatedAt,
	}
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
