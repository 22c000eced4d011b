package store

import (
	"encoding/json"
	"strings"
	"time"
)

// DecisionRecord is the append-only history row written after the decision
// pipeline returns its result. The core computation never reads it.
type DecisionRecord struct {
	ID               string `gorm:"primaryKey;size:36"`
	TaskDescription  string `gorm:"type:text;index"`
	ContextJSON      string `gorm:"type:text"`
	Decision         string `gorm:"type:text"`
	ReasoningJSON    string `gorm:"type:text"`
	ImportanceJSON   string `gorm:"type:text"`
	Confidence       float64
	Source           string `gorm:"size:16;index"`
	ModelName        string `gorm:"size:64"`
	ProcessingTimeMs int64
	CreatedAt        time.Time `gorm:"autoCreateTime;index"`
}

// SetContext persists the request context as JSON.
func (r *DecisionRecord) SetContext(context map[string]any) {
	if context == nil {
		r.ContextJSON = "{}"
		return
	}
	payload, _ := json.Marshal(context)
	r.ContextJSON = string(payload)
}

// Context returns the unmarshalled request context.
func (r *DecisionRecord) Context() map[string]any {
	if strings.TrimSpace(r.ContextJSON) == "" {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(r.ContextJSON), &out); err != nil {
		return nil
	}
	return out
}

// SetReasoning stores the reasoning steps as JSON.
func (r *DecisionRecord) SetReasoning(steps []string) {
	if steps == nil {
		r.ReasoningJSON = "[]"
		return
	}
	payload, _ := json.Marshal(steps)
	r.ReasoningJSON = string(payload)
}

// Reasoning reads the stored reasoning steps.
func (r *DecisionRecord) Reasoning() []string {
	if strings.TrimSpace(r.ReasoningJSON) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(r.ReasoningJSON), &out); err != nil {
		return nil
	}
	return out
}

// SetImportance stores the feature importance map as JSON.
func (r *DecisionRecord) SetImportance(importance map[string]float64) {
	if importance == nil {
		r.ImportanceJSON = "{}"
		return
	}
	payload, _ := json.Marshal(importance)
	r.ImportanceJSON = string(payload)
}

// Importance reads the stored feature importance map.
func (r *DecisionRecord) Importance() map[string]float64 {
	if strings.TrimSpace(r.ImportanceJSON) == "" {
		return map[string]float64{}
	}
	var out map[string]float64
	if err := json.Unmarshal([]byte(r.ImportanceJSON), &out); err != nil {
		return map[string]float64{}
	}
	return out
}
