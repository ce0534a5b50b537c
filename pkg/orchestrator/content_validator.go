package orchestrator

import (
	"fmt"
	"math/big"
	"strings"
)

// ValidateMissionContent is the purely deterministic content check run
// after every tool execution. It returns "" (pass) or a
// failure reason. Today the only content it polices is a write_file
// result against a Fibonacci-sequence mission, since that is the one
// domain output whose correctness is cheap to check mechanically.
func ValidateMissionContent(toolName string, args, result map[string]any, missionText string) string {
	if toolName != "write_file" {
		return ""
	}
	if _, hasErr := result["error"]; hasErr {
		return ""
	}
	if !strings.Contains(strings.ToLower(missionText), "fibonacci") {
		return ""
	}

	content, _ := args["content"].(string)
	values, ok := parseIntCSV(content)
	if !ok {
		return "content is not a parseable comma-separated integer list"
	}
	if len(values) != 100 {
		return fmt.Sprintf("expected 100 values, got %d", len(values))
	}
	if values[0].Sign() != 0 || values[1].Cmp(big.NewInt(1)) != 0 {
		return "sequence does not start with 0, 1"
	}
	for i := 2; i < len(values); i++ {
		if new(big.Int).Add(values[i-1], values[i-2]).Cmp(values[i]) != 0 {
			return fmt.Sprintf("value at index %d (%d) is not the sum of the prior two (%d, %d)", i, values[i], values[i-2], values[i-1])
		}
	}
	return ""
}

func parseIntCSV(content string) ([]*big.Int, bool) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return []*big.Int{}, true
	}
	parts := strings.Split(trimmed, ",")
	out := make([]*big.Int, 0, len(parts))
	for _, p := range parts {
		n, ok := new(big.Int).SetString(strings.TrimSpace(p), 10)
		if !ok {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}
