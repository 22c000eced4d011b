package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"agentic-xai/internal/agent"
	"agentic-xai/internal/explain"
	"agentic-xai/internal/store"
	"agentic-xai/internal/util"
)

// handleTask runs the full decision pipeline for one request: provider call
// (with transparent fallback), explanation derivation, then history write.
// Provider failures never surface here; a non-2xx response means invalid
// input or a genuine internal fault.
func (s *Server) handleTask(c *gin.Context) {
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.TaskDescription) == "" {
		s.renderError(c, http.StatusBadRequest, errors.New("task_description is required"))
		return
	}
	if req.Context == nil {
		req.Context = map[string]any{}
	}

	timer := util.StartTimer()

	// The request context bounds the outbound provider call: a client
	// disconnect abandons it instead of waiting it out.
	decision, err := s.provider.Decide(c.Request.Context(), req.TaskDescription, req.Context)
	if err != nil {
		// Unreachable while the fallback engine is chained in; a failure
		// here is a bug, not a provider outage.
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	payload := explain.Build(req.TaskDescription, req.Context, decision.Decision, decision.Reasoning, modelDetailsFor(decision))
	confidence := explain.Confidence(req.TaskDescription, req.Context, decision.Decision)
	elapsed := timer.ElapsedMs()

	resp := TaskResponse{
		DecisionID:       uuid.NewString(),
		Decision:         decision.Decision,
		Confidence:       confidence,
		Source:           decision.Source,
		ProcessingTimeMs: elapsed,
		Explanation:      payload,
	}

	// History is written after the core result exists; a write failure is
	// logged, never surfaced.
	record := &store.DecisionRecord{
		ID:               resp.DecisionID,
		TaskDescription:  req.TaskDescription,
		Decision:         decision.Decision,
		Confidence:       confidence,
		Source:           decision.Source,
		ModelName:        decision.ModelName,
		ProcessingTimeMs: elapsed,
	}
	record.SetContext(req.Context)
	record.SetReasoning(payload.ReasoningSteps)
	record.SetImportance(payload.FeatureImportance)
	if err := s.db.SaveDecision(record); err != nil {
		logrus.WithError(err).WithField("decision_id", resp.DecisionID).Warn("persist decision history")
	} else {
		dto := DecisionFromModel(*record)
		s.notifier.Broadcast(DecisionEvent{Type: "decision", Decision: &dto})
	}

	logrus.WithFields(logrus.Fields{
		"decision_id": resp.DecisionID,
		"source":      decision.Source,
		"confidence":  confidence,
		"elapsed_ms":  elapsed,
	}).Info("task processed")

	c.JSON(http.StatusOK, resp)
}

func modelDetailsFor(decision agent.Decision) explain.ModelDetails {
	if decision.Source == agent.SourceFallback {
		return explain.ModelDetails{
			Name: agent.FallbackModelName,
			Type: "deterministic rule-based fallback",
		}
	}
	return explain.ModelDetails{
		Name: decision.ModelName,
		Type: "large language model",
	}
}
