package explain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// summaryEntryLimit bounds how many context entries feed the prompt summary.
const summaryEntryLimit = 5

// SummarizeContext reduces a context mapping to a short "key: value" string
// suitable for prompt embedding. Keys are visited in sorted order so the
// output is stable; only the first entries are included. An empty context
// yields an empty string.
func SummarizeContext(context map[string]any) string {
	if len(context) == 0 {
		return ""
	}
	keys := sortedKeys(context)
	if len(keys) > summaryEntryLimit {
		keys = keys[:summaryEntryLimit]
	}
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", key, StringifyValue(context[key])))
	}
	return strings.Join(parts, "; ")
}

// StringifyValue renders any JSON-compatible value losslessly for display.
// Collections are re-encoded as JSON; nil becomes "null".
func StringifyValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case []any, map[string]any:
		payload, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(payload)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func sortedKeys(context map[string]any) []string {
	keys := make([]string, 0, len(context))
	for key := range context {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
