package agent

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"agentic-xai/internal/explain"
	"agentic-xai/internal/text"
)

// FallbackModelName identifies the deterministic path in model_details.
const FallbackModelName = "archetype-engine"

// Engine is the deterministic fallback decision path. It classifies the task
// against an ordered list of archetype matchers and synthesizes a
// recommendation from the task text and context. Identical input always
// yields identical output; the engine never fails.
type Engine struct {
	archetypes []archetype
}

type archetype struct {
	name  string
	match func(lower string) bool
	build func(task string, keys []string, taskContext map[string]any) (string, []string)
}

// NewEngine constructs the fallback engine with its archetype table.
func NewEngine() *Engine {
	e := &Engine{}
	e.archetypes = []archetype{
		{"comparison", matchComparison, buildComparison},
		{"yes-no", matchYesNo, buildYesNo},
		{"optimization", matchOptimization, buildOptimization},
		{"risk", matchRisk, buildRisk},
		{"planning", matchPlanning, buildPlanning},
		{"financial", matchFinancial, buildFinancial},
		{"technical", matchTechnical, buildTechnical},
		{"creative", matchCreative, buildCreative},
	}
	return e
}

// Enabled always reports true: the engine has no external dependency.
func (e *Engine) Enabled() bool {
	return e != nil
}

// Decide synthesizes a recommendation for the task. The error return exists
// only to satisfy Provider; it is always nil.
func (e *Engine) Decide(_ context.Context, taskDescription string, taskContext map[string]any) (Decision, error) {
	lower := strings.ToLower(taskDescription)
	keys := contextKeys(taskContext)

	decision, steps := buildContextual(taskDescription, keys, taskContext)
	for _, a := range e.archetypes {
		if a.match(lower) {
			decision, steps = a.build(taskDescription, keys, taskContext)
			break
		}
	}

	return Decision{
		Decision:  decision,
		Reasoning: steps,
		Source:    SourceFallback,
		ModelName: FallbackModelName,
	}, nil
}

func matchComparison(lower string) bool {
	return text.ContainsAny(lower, " vs ", " vs. ", "versus", "compare", "choose between", "select between")
}

func buildComparison(task string, keys []string, taskContext map[string]any) (string, []string) {
	left, right, ok := text.ComparisonPair(task)
	if !ok {
		salient := text.Salient(task, 2)
		switch len(salient) {
		case 2:
			left, right = salient[0], salient[1]
		case 1:
			left, right = salient[0], "the alternative"
		default:
			left, right = "the first option", "the alternative"
		}
	}

	var decision string
	if len(keys) > 0 {
		decision = fmt.Sprintf(
			"Weigh %s against %s on the factors you can measure, giving extra weight to %s; on the stated evidence, start with %s and keep %s as the contingency.",
			left, right, joinKeys(keys, 3), left, right)
	} else {
		decision = fmt.Sprintf(
			"Weigh %s against %s on cost, fit, and operational maturity; absent stronger evidence, start with %s and keep %s as the contingency.",
			left, right, left, right)
	}

	steps := []string{
		fmt.Sprintf("Classified the task as a comparison between %s and %s", left, right),
		"Derived the evaluation criteria implied by the task description",
		contextStep(keys, "Weighted the comparison using the supplied context factors"),
		fmt.Sprintf("Selected %s as the default recommendation pending a weighted criteria review", left),
	}
	return decision, steps
}

func matchYesNo(lower string) bool {
	if strings.Contains(lower, "how should") {
		return false
	}
	return text.ContainsAny(lower, "should i", "should we", "is it worth", "can i", "can we", "will it", "do we need")
}

func buildYesNo(task string, keys []string, taskContext map[string]any) (string, []string) {
	var positive, negative float64
	for _, key := range keys {
		switch v := taskContext[key].(type) {
		case float64:
			if v > 0 {
				positive += math.Min(v/10, 1)
			} else if v < 0 {
				negative += math.Min(math.Abs(v)/10, 1)
			}
		case int:
			if v > 0 {
				positive += math.Min(float64(v)/10, 1)
			} else if v < 0 {
				negative += math.Min(math.Abs(float64(v))/10, 1)
			}
		case bool:
			if v {
				positive++
			} else {
				negative++
			}
		case string:
			if text.ContainsAny(v, "good", "excellent", "high", "strong", "positive", "yes", "ready") {
				positive += 0.5
			}
			if text.ContainsAny(v, "bad", "poor", "low", "weak", "negative", "not ready", "blocked") {
				negative += 0.5
			}
		}
	}

	var decision string
	if positive >= negative {
		decision = "Yes, proceed: the supplied factors lean positive. Start with a scoped, reversible first step and re-evaluate once early results are in."
	} else {
		decision = "No, hold off for now: the stated factors lean negative. Close the riskiest gaps before committing to this course."
	}

	steps := []string{
		"Classified the task as a yes/no decision",
		fmt.Sprintf("Tallied %.1f supporting and %.1f opposing signals from the context", positive, negative),
		contextStep(keys, "Grounded the verdict in the supplied context factors"),
		"Recommended the side with the stronger net signal, with a reversible first step",
	}
	return decision, steps
}

func matchOptimization(lower string) bool {
	return text.ContainsAny(lower, "optimize", "improve", "maximize", "minimize", "best way", "most efficient", "speed up", "reduce")
}

func buildOptimization(task string, keys []string, taskContext map[string]any) (string, []string) {
	target := "the workflow in question"
	if salient := text.Salient(task, 2); len(salient) > 0 {
		target = strings.Join(salient, " ")
	}

	var decision string
	if len(keys) > 0 {
		decision = fmt.Sprintf(
			"Instrument %s before changing it: baseline %s, fix the single worst contributor, then re-measure and iterate.",
			target, joinKeys(keys, 3))
	} else {
		decision = fmt.Sprintf(
			"Instrument %s before changing it: establish a baseline, fix the single worst contributor, then re-measure and iterate.",
			target)
	}

	steps := []string{
		"Classified the task as an optimization problem",
		"Prioritized measurement before intervention to avoid optimizing the wrong thing",
		contextStep(keys, "Marked the supplied context factors as candidate baseline metrics"),
		"Recommended a measure-fix-remeasure loop targeting the largest contributor first",
	}
	return decision, steps
}

func matchRisk(lower string) bool {
	return text.ContainsAny(lower, "risk", "threat", "danger", " safe", "secure", "vulnerab")
}

func buildRisk(task string, keys []string, taskContext map[string]any) (string, []string) {
	riskFactors := 0
	mitigations := 0
	for _, key := range keys {
		lowerKey := strings.ToLower(key)
		if text.ContainsAny(lowerKey, "risk", "threat", "danger", "exposure") {
			riskFactors++
		}
		if text.ContainsAny(lowerKey, "mitigation", "backup", "protection", "insurance", "contingency") {
			mitigations++
		}
	}

	var decision string
	switch {
	case riskFactors > mitigations:
		decision = "Treat this as high exposure: enumerate the failure modes, put a mitigation against each, and only proceed once the worst case is survivable."
	case mitigations > 0:
		decision = "Proceed with the existing mitigations in place, add monitoring for the residual risks, and keep a rollback path ready."
	default:
		decision = "The stated risk profile is manageable: proceed with standard precautions and schedule a reassessment once new information arrives."
	}

	steps := []string{
		"Classified the task as a risk assessment",
		fmt.Sprintf("Counted %d risk-bearing and %d mitigating context factors", riskFactors, mitigations),
		contextStep(keys, "Ranked the supplied factors by their contribution to exposure"),
		"Matched the recommendation to the balance of exposure and mitigation",
	}
	return decision, steps
}

func matchPlanning(lower string) bool {
	return text.ContainsAny(lower, "plan", "strategy", "roadmap", "timeline", "schedule", "approach", "how should")
}

func buildPlanning(task string, keys []string, taskContext map[string]any) (string, []string) {
	timeline := lookupString(taskContext, "timeline", "deadline", "timeframe")
	priority := lookupString(taskContext, "priority", "importance", "urgency")

	var decision string
	switch {
	case text.ContainsAny(timeline, "urgent", "short", "immediate", "asap"):
		decision = "Run this as short sprints against a minimum viable outcome: the urgent timeline rewards rapid iterations over exhaustive upfront planning."
	case text.ContainsAny(priority, "high", "critical", "essential"):
		decision = "Plan this in full before executing: set milestones, assign owners, and track risk explicitly, since the priority justifies the overhead."
	default:
		decision = "Use a phased plan with checkpoints: enough structure to stay on course, enough slack to adjust as results come in."
	}

	steps := []string{
		"Classified the task as a planning decision",
		fmt.Sprintf("Read timeline=%q and priority=%q from the context", orUnspecified(timeline), orUnspecified(priority)),
		contextStep(keys, "Shaped the plan's depth around the supplied constraints"),
		"Matched planning rigor to the stated urgency and priority",
	}
	return decision, steps
}

func matchFinancial(lower string) bool {
	return text.ContainsAny(lower, "invest", "budget", "stock", "money", "financ", "cost", "price", "revenue")
}

func buildFinancial(task string, keys []string, taskContext map[string]any) (string, []string) {
	tolerance := lookupString(taskContext, "risk_tolerance", "risk_appetite")

	var decision string
	switch {
	case text.ContainsAny(tolerance, "high", "aggressive"):
		decision = "Allocate the majority to the higher-growth option and keep a defensive remainder; your stated risk tolerance supports an aggressive split."
	case text.ContainsAny(tolerance, "low", "conservative"):
		decision = "Favor the stable option and cap exposure to anything volatile; a low risk tolerance makes capital preservation the first objective."
	default:
		decision = "Split the allocation with a 10-15% reserve for contingencies and rebalance once actual costs or returns diverge from the estimate."
	}

	steps := []string{
		"Classified the task as a financial decision",
		fmt.Sprintf("Read risk tolerance %q from the context", orUnspecified(tolerance)),
		contextStep(keys, "Sized the allocation against the supplied financial factors"),
		"Matched the split to the stated tolerance with a contingency reserve",
	}
	return decision, steps
}

func matchTechnical(lower string) bool {
	return text.ContainsAny(lower, "database", "architecture", "deploy", "infrastructure", "backend", "software", "migrate", "server", " api", "code")
}

func buildTechnical(task string, keys []string, taskContext map[string]any) (string, []string) {
	subject := "the system"
	if salient := text.Salient(task, 2); len(salient) > 0 {
		subject = strings.Join(salient, " ")
	}

	var decision string
	if len(keys) > 0 {
		decision = fmt.Sprintf(
			"Prototype the change to %s behind a reversible boundary, validate it against %s, and only then commit to the full rollout.",
			subject, joinKeys(keys, 3))
	} else {
		decision = fmt.Sprintf(
			"Prototype the change to %s behind a reversible boundary, validate it under realistic load, and only then commit to the full rollout.",
			subject)
	}

	steps := []string{
		"Classified the task as a technical decision",
		fmt.Sprintf("Extracted the technical subject: %s", subject),
		contextStep(keys, "Treated the supplied context factors as validation criteria"),
		"Recommended an incremental, reversible rollout over a big-bang change",
	}
	return decision, steps
}

func matchCreative(lower string) bool {
	return text.ContainsAny(lower, "design", "creative", "content", "marketing", "brand", "campaign")
}

func buildCreative(task string, keys []string, taskContext map[string]any) (string, []string) {
	audience := lookupString(taskContext, "target_audience", "audience")

	var decision string
	if audience != "" {
		decision = fmt.Sprintf(
			"Anchor the creative direction in what resonates with %s: draft two contrasting concepts, test both with that audience, and iterate on the winner.",
			audience)
	} else {
		decision = "Draft two contrasting concepts, test both with a small slice of the intended audience, and iterate on whichever earns the stronger response."
	}

	steps := []string{
		"Classified the task as a creative decision",
		fmt.Sprintf("Read target audience %q from the context", orUnspecified(audience)),
		contextStep(keys, "Used the supplied context factors as creative constraints"),
		"Recommended concept testing over committing to a single untested direction",
	}
	return decision, steps
}

// buildContextual is the catch-all when no archetype matches.
func buildContextual(task string, keys []string, taskContext map[string]any) (string, []string) {
	var decision string
	switch {
	case len(keys) == 0:
		decision = "Gather more information before deciding: stakeholder needs, resource constraints, timeline, and success criteria are all unstated."
	case len(keys) > 3:
		decision = fmt.Sprintf(
			"Break the decision into sub-questions, one per major factor, starting with %s, and resolve them with a simple weighted matrix.",
			joinKeys(keys, 3))
	default:
		decision = fmt.Sprintf(
			"Take a balanced approach weighing %s: favor the option that performs acceptably on every factor over one that excels on a single dimension.",
			joinKeys(keys, 3))
	}

	steps := []string{
		"No specific archetype matched; applied general contextual analysis",
		fmt.Sprintf("Measured task complexity at %d words against %d context factors", len(text.Words(task)), len(keys)),
		contextStep(keys, "Ranked the supplied context factors by informational weight"),
		"Recommended the approach that best fits the available information",
	}
	return decision, steps
}

func contextKeys(taskContext map[string]any) []string {
	keys := make([]string, 0, len(taskContext))
	for key := range taskContext {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// joinKeys renders up to limit keys as a human-readable list, with
// underscores softened for display.
func joinKeys(keys []string, limit int) string {
	if len(keys) > limit {
		keys = keys[:limit]
	}
	display := make([]string, 0, len(keys))
	for _, key := range keys {
		display = append(display, strings.ReplaceAll(key, "_", " "))
	}
	switch len(display) {
	case 0:
		return ""
	case 1:
		return display[0]
	default:
		return strings.Join(display[:len(display)-1], ", ") + " and " + display[len(display)-1]
	}
}

func contextStep(keys []string, withContext string) string {
	if len(keys) == 0 {
		return "No context factors were supplied; relied on generally applicable heuristics"
	}
	return fmt.Sprintf("%s: %s", withContext, joinKeys(keys, 3))
}

// lookupString returns the first named context value that stringifies to a
// non-empty result.
func lookupString(taskContext map[string]any, names ...string) string {
	for _, name := range names {
		if value, ok := taskContext[name]; ok {
			if s := strings.TrimSpace(explain.StringifyValue(value)); s != "" && s != "null" {
				return s
			}
		}
	}
	return ""
}

func orUnspecified(s string) string {
	if s == "" {
		return "unspecified"
	}
	return s
}
