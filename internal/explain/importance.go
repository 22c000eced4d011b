package explain

import (
	"math"
	"strings"
)

// Feature importance is a presentation heuristic: weights describe the shape
// of each context value (magnitude, length, size), not its actual influence
// on the decision. This distinction is surfaced to callers via AnalysisType.

const importanceBase = 0.1

var salientValueWords = []string{"important", "critical", "key", "main", "urgent", "essential"}

// FeatureImportance assigns a relative weight to every context key,
// normalized so the weights sum to 1.0. The empty context yields an empty
// (non-nil) map; a single-key context yields weight 1.0 for that key.
func FeatureImportance(context map[string]any) map[string]float64 {
	weights := make(map[string]float64, len(context))
	if len(context) == 0 {
		return weights
	}

	total := 0.0
	for key, value := range context {
		raw := rawImportance(key, value)
		weights[key] = raw
		total += raw
	}

	if total <= 0 {
		// All raw scores zero: distribute uniformly.
		uniform := 1.0 / float64(len(context))
		for key := range context {
			weights[key] = uniform
		}
		return weights
	}

	for key, raw := range weights {
		weights[key] = raw / total
	}
	return weights
}

// rawImportance scores a single entry by its value shape. Key length adds a
// small descriptive bonus; the value's dynamic type drives the bulk of the
// score.
func rawImportance(key string, value any) float64 {
	keyWeight := math.Min(float64(len(key))/20.0, 0.5)

	var valueWeight float64
	switch v := value.(type) {
	case nil:
		valueWeight = 0.1
	case bool:
		if v {
			valueWeight = 0.8
		} else {
			valueWeight = 0.3
		}
	case float64:
		valueWeight = numericWeight(v)
	case int:
		valueWeight = numericWeight(float64(v))
	case int64:
		valueWeight = numericWeight(float64(v))
	case string:
		valueWeight = stringWeight(v)
	case []any:
		valueWeight = collectionWeight(len(v))
	case map[string]any:
		valueWeight = collectionWeight(len(v))
	default:
		valueWeight = 0.5
	}

	return importanceBase + math.Min(keyWeight+valueWeight, 1.0)
}

func numericWeight(v float64) float64 {
	if v == 0 || math.IsNaN(v) {
		return 0.1
	}
	return math.Min(math.Abs(v)/100.0, 1.0)
}

func stringWeight(v string) float64 {
	if v == "" {
		return 0.1
	}
	weight := math.Min(float64(len(v))/50.0, 1.0)
	if weight < 0.1 {
		weight = 0.1
	}
	lower := strings.ToLower(v)
	for _, word := range salientValueWords {
		if strings.Contains(lower, word) {
			weight *= 1.5
			break
		}
	}
	return weight
}

func collectionWeight(size int) float64 {
	if size == 0 {
		return 0.1
	}
	return math.Min(float64(size)/10.0, 1.0)
}
