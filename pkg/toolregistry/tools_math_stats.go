package toolregistry

import (
	"math"
	"sort"
)

var mathStatsSupported = map[string]bool{
	"add": true, "subtract": true, "multiply": true, "divide": true,
	"power": true, "sqrt": true, "abs": true,
	"mean": true, "median": true, "mode": true, "stdev": true, "variance": true,
	"min": true, "max": true, "sum": true,
}

var twoNumberOps = map[string]bool{"add": true, "subtract": true, "multiply": true, "divide": true, "power": true}
var singleNumberOps = map[string]bool{"sqrt": true, "abs": true}
var listOps = map[string]bool{"mean": true, "median": true, "mode": true, "stdev": true, "variance": true, "min": true, "max": true, "sum": true}

// MathStatsTool performs arithmetic and descriptive statistics on numbers.
type MathStatsTool struct{}

func (MathStatsTool) Name() string { return "math_stats" }
func (MathStatsTool) Description() string {
	return "Performs math calculations and statistics on numbers. " +
		"For single-number or two-number ops: add, subtract, multiply, divide, power, sqrt, abs. " +
		"For list ops: mean, median, mode, stdev, variance, min, max, sum."
}

func (MathStatsTool) Execute(args map[string]any) map[string]any {
	operation, _ := args["operation"].(string)
	if !mathStatsSupported[operation] {
		return map[string]any{
			"error":                "unknown operation '" + operation + "'",
			"supported_operations": sortedOpsSlice(mathStatsSupported),
		}
	}

	if twoNumberOps[operation] {
		a, aOK := asFloat(args["a"])
		b, bOK := asFloat(args["b"])
		if !aOK || !bOK {
			return map[string]any{"error": "'" + operation + "' requires numeric args 'a' and 'b'"}
		}
		switch operation {
		case "add":
			return map[string]any{"result": a + b}
		case "subtract":
			return map[string]any{"result": a - b}
		case "multiply":
			return map[string]any{"result": a * b}
		case "divide":
			if b == 0 {
				return map[string]any{"error": "division by zero"}
			}
			return map[string]any{"result": a / b}
		case "power":
			return map[string]any{"result": math.Pow(a, b)}
		}
	}

	if singleNumberOps[operation] {
		a, aOK := asFloat(args["a"])
		if !aOK {
			return map[string]any{"error": "'" + operation + "' requires numeric arg 'a'"}
		}
		if operation == "sqrt" {
			if a < 0 {
				return map[string]any{"error": "cannot take sqrt of a negative number"}
			}
			return map[string]any{"result": math.Sqrt(a)}
		}
		return map[string]any{"result": math.Abs(a)}
	}

	if listOps[operation] {
		rawNumbers, ok := args["numbers"].([]any)
		if !ok || len(rawNumbers) == 0 {
			return map[string]any{"error": "'" + operation + "' requires a non-empty list arg 'numbers'"}
		}
		numbers := make([]float64, len(rawNumbers))
		for i, v := range rawNumbers {
			f, ok := asFloat(v)
			if !ok {
				return map[string]any{"error": "'numbers' must contain only numeric values"}
			}
			numbers[i] = f
		}
		return evalListOp(operation, numbers)
	}

	return map[string]any{"error": "operation '" + operation + "' not implemented"}
}

func evalListOp(operation string, numbers []float64) map[string]any {
	switch operation {
	case "sum":
		return map[string]any{"result": sumFloats(numbers)}
	case "min":
		return map[string]any{"result": minFloat(numbers)}
	case "max":
		return map[string]any{"result": maxFloat(numbers)}
	case "mean":
		return map[string]any{"result": sumFloats(numbers) / float64(len(numbers))}
	case "median":
		return map[string]any{"result": medianFloat(numbers)}
	case "mode":
		return map[string]any{"result": modeFloat(numbers)}
	case "stdev":
		if len(numbers) < 2 {
			return map[string]any{"error": "stdev requires at least 2 values"}
		}
		return map[string]any{"result": math.Sqrt(sampleVariance(numbers))}
	case "variance":
		if len(numbers) < 2 {
			return map[string]any{"error": "variance requires at least 2 values"}
		}
		return map[string]any{"result": sampleVariance(numbers)}
	}
	return map[string]any{"error": "operation '" + operation + "' not implemented"}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func sumFloats(nums []float64) float64 {
	var total float64
	for _, n := range nums {
		total += n
	}
	return total
}

func minFloat(nums []float64) float64 {
	m := nums[0]
	for _, n := range nums[1:] {
		if n < m {
			m = n
		}
	}
	return m
}

func maxFloat(nums []float64) float64 {
	m := nums[0]
	for _, n := range nums[1:] {
		if n > m {
			m = n
		}
	}
	return m
}

func medianFloat(nums []float64) float64 {
	sorted := append([]float64(nil), nums...)
	sort.Float64s(sorted)
	n := len(sorted)
	mid := n / 2
	if n%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// modeFloat returns the most frequent value, ties broken by first
// occurrence, mirroring modern statistics.mode semantics (no error on
// multimodal input).
func modeFloat(nums []float64) float64 {
	counts := make(map[float64]int)
	order := make([]float64, 0, len(nums))
	for _, n := range nums {
		if counts[n] == 0 {
			order = append(order, n)
		}
		counts[n]++
	}
	best := order[0]
	bestCount := counts[best]
	for _, n := range order[1:] {
		if counts[n] > bestCount {
			best = n
			bestCount = counts[n]
		}
	}
	return best
}

// sampleVariance is the sample (n-1 denominator) variance, matching
// Python's statistics.variance/stdev.
func sampleVariance(nums []float64) float64 {
	mean := sumFloats(nums) / float64(len(nums))
	var sumSq float64
	for _, n := range nums {
		d := n - mean
		sumSq += d * d
	}
	return sumSq / float64(len(nums)-1)
}

func sortedOpsSlice(ops map[string]bool) []string {
	names := make([]string, 0, len(ops))
	for k := range ops {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
