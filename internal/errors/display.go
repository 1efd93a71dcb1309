package errors

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
)

const defaultDisplayMessage = "An unexpected error occurred"

// DisplayMessage returns the first non-empty hint attached to err, suitable for end users
func DisplayMessage(err error) string {
	// GetAllHints is post-order, innermost hint first
	for _, hint := range errors.GetAllHints(err) {
		if hint = strings.TrimSpace(hint); hint != "" {
			return hint
		}
	}
	return defaultDisplayMessage
}

// SafeDetails merges every reportable details map attached to err
func SafeDetails(err error) map[string]any {
	details := make(map[string]any)
	for _, sdp := range errors.GetAllSafeDetails(err) {
		for _, payload := range sdp.SafeDetails {
			jsonStr, ok := strings.CutPrefix(payload, "__json__:")
			if !ok {
				continue
			}
			var m map[string]any
			if err := json.Unmarshal([]byte(jsonStr), &m); err == nil {
				for k, v := range m {
					details[k] = v
				}
			}
		}
	}
	return details
}
