package agent

import (
	"fmt"
	"strings"

	"agentic-xai/internal/explain"
)

const systemInstruction = "You are an expert decision-making assistant. Reply with a strict JSON object containing keys decision, confidence, and reasoning. decision must be a clear, specific recommendation in one or two sentences. confidence must be a decimal between 0 and 1. reasoning must be an array of three to five short analysis steps. Emit nothing outside the JSON object."

// buildPrompt embeds the task description and the bounded context summary
// into the user prompt shared by every vendor client.
func buildPrompt(taskDescription string, taskContext map[string]any) string {
	builder := &strings.Builder{}
	builder.WriteString("Task:\n")
	builder.WriteString(strings.TrimSpace(taskDescription))
	builder.WriteString("\n\nContext:\n")
	if summary := explain.SummarizeContext(taskContext); summary != "" {
		builder.WriteString(summary)
	} else {
		builder.WriteString("No additional context provided.")
	}
	builder.WriteString("\n\n")
	fmt.Fprintf(builder, "Respond with JSON only: {\"decision\": string, \"confidence\": number, \"reasoning\": [string, ...]}.\n")
	builder.WriteString("Provide practical, actionable advice grounded in the stated context.\n")
	return builder.String()
}
