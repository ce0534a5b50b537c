package toolregistry

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

var dataAnalysisOperations = map[string]bool{
	"summary_stats": true, "outliers": true, "percentiles": true, "distribution": true,
	"correlation": true, "normalize": true, "z_scores": true,
}

// DataAnalysisTool computes summary statistics, outliers, percentiles,
// distribution bins, correlation, normalization, and z-scores over a list
// of numbers.
type DataAnalysisTool struct{}

func (DataAnalysisTool) Name() string { return "data_analysis" }
func (DataAnalysisTool) Description() string {
	return "Analyze numeric data for summary statistics, outliers, percentiles, distribution, " +
		"correlation, normalization, and z-scores. " +
		"Required args: numbers (list of numbers), operation (string). " +
		"Operations: summary_stats, outliers, percentiles, distribution, correlation, normalize, z_scores. " +
		"Optional: threshold (for outliers, default 1.5), numbers_b (for correlation)."
}

func (DataAnalysisTool) Execute(args map[string]any) map[string]any {
	rawNumbers, ok := args["numbers"].([]any)
	operation, _ := args["operation"].(string)
	operation = strings.ToLower(strings.TrimSpace(operation))

	if !ok || len(rawNumbers) == 0 {
		return map[string]any{"error": "numbers must be a non-empty list of numbers"}
	}
	if operation == "" {
		return map[string]any{"error": "operation is required"}
	}
	if !dataAnalysisOperations[operation] {
		names := make([]string, 0, len(dataAnalysisOperations))
		for k := range dataAnalysisOperations {
			names = append(names, k)
		}
		sort.Strings(names)
		return map[string]any{"error": "unknown operation '" + operation + "'. Valid: " + strings.Join(names, ", ")}
	}

	nums := make([]float64, len(rawNumbers))
	for i, v := range rawNumbers {
		f, ok := asFloat(v)
		if !ok {
			return map[string]any{"error": "all items in numbers must be numeric"}
		}
		nums[i] = f
	}

	switch operation {
	case "summary_stats":
		return dataSummaryStats(nums)
	case "outliers":
		threshold := 1.5
		if t, ok := asFloat(args["threshold"]); ok {
			threshold = t
		}
		return dataOutliers(nums, threshold)
	case "percentiles":
		return dataPercentiles(nums)
	case "distribution":
		return dataDistribution(nums, 10)
	case "correlation":
		return dataCorrelation(nums, args)
	case "normalize":
		return dataNormalize(nums)
	case "z_scores":
		return dataZScores(nums)
	default:
		return map[string]any{"error": "operation '" + operation + "' not implemented"}
	}
}

func round6(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}

func dataSummaryStats(nums []float64) map[string]any {
	n := len(nums)
	total := sumFloats(nums)
	mean := total / float64(n)
	sorted := append([]float64(nil), nums...)
	sort.Float64s(sorted)
	median := medianFloat(sorted)
	var varianceSum float64
	for _, x := range nums {
		d := x - mean
		varianceSum += d * d
	}
	variance := varianceSum / float64(n)
	stdev := math.Sqrt(variance)
	mn, mx := minFloat(nums), maxFloat(nums)
	return map[string]any{
		"count":  n,
		"sum":    round6(total),
		"mean":   round6(mean),
		"median": round6(median),
		"stdev":  round6(stdev),
		"min":    mn,
		"max":    mx,
		"range":  round6(mx - mn),
	}
}

func percentileValue(sorted []float64, pct float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	k := (pct / 100) * float64(n-1)
	f := math.Floor(k)
	c := math.Ceil(k)
	if f == c {
		return sorted[int(k)]
	}
	return sorted[int(f)] + (k-f)*(sorted[int(c)]-sorted[int(f)])
}

func dataOutliers(nums []float64, threshold float64) map[string]any {
	sorted := append([]float64(nil), nums...)
	sort.Float64s(sorted)
	q1 := percentileValue(sorted, 25)
	q3 := percentileValue(sorted, 75)
	iqr := q3 - q1
	lower := q1 - threshold*iqr
	upper := q3 + threshold*iqr
	var outliers, nonOutliers []float64
	for _, x := range nums {
		if x < lower || x > upper {
			outliers = append(outliers, x)
		} else {
			nonOutliers = append(nonOutliers, x)
		}
	}
	if outliers == nil {
		outliers = []float64{}
	}
	if nonOutliers == nil {
		nonOutliers = []float64{}
	}
	return map[string]any{
		"outliers":     outliers,
		"non_outliers": nonOutliers,
		"q1":           round6(q1),
		"q3":           round6(q3),
		"iqr":          round6(iqr),
		"lower_bound":  round6(lower),
		"upper_bound":  round6(upper),
		"threshold":    threshold,
	}
}

func dataPercentiles(nums []float64) map[string]any {
	sorted := append([]float64(nil), nums...)
	sort.Float64s(sorted)
	return map[string]any{
		"p10": round6(percentileValue(sorted, 10)),
		"p25": round6(percentileValue(sorted, 25)),
		"p50": round6(percentileValue(sorted, 50)),
		"p75": round6(percentileValue(sorted, 75)),
		"p90": round6(percentileValue(sorted, 90)),
		"p95": round6(percentileValue(sorted, 95)),
		"p99": round6(percentileValue(sorted, 99)),
	}
}

func dataDistribution(nums []float64, numBins int) map[string]any {
	minVal, maxVal := minFloat(nums), maxFloat(nums)
	if minVal == maxVal {
		return map[string]any{"bins": []any{map[string]any{
			"range": fmt.Sprintf("%v-%v", minVal, maxVal), "count": len(nums),
		}}}
	}
	binWidth := (maxVal - minVal) / float64(numBins)
	bins := make([]any, 0, numBins)
	for i := 0; i < numBins; i++ {
		low := minVal + float64(i)*binWidth
		high := low + binWidth
		var count int
		for _, x := range nums {
			if i == numBins-1 {
				if x >= low && x <= high {
					count++
				}
			} else if x >= low && x < high {
				count++
			}
		}
		bins = append(bins, map[string]any{
			"range": fmt.Sprintf("%v-%v", round2Data(low), round2Data(high)),
			"count": count,
		})
	}
	return map[string]any{"bins": bins, "bin_width": round6(binWidth)}
}

func round2Data(f float64) float64 {
	return math.Round(f*100) / 100
}

func dataCorrelation(nums []float64, args map[string]any) map[string]any {
	rawB, ok := args["numbers_b"].([]any)
	if !ok || len(rawB) == 0 {
		return map[string]any{"error": "numbers_b is required for correlation operation"}
	}
	numsB := make([]float64, len(rawB))
	for i, v := range rawB {
		f, ok := asFloat(v)
		if !ok {
			return map[string]any{"error": "all items in numbers_b must be numeric"}
		}
		numsB[i] = f
	}
	if len(nums) != len(numsB) {
		return map[string]any{"error": "numbers and numbers_b must have the same length"}
	}
	n := float64(len(nums))
	meanA := sumFloats(nums) / n
	meanB := sumFloats(numsB) / n
	var cov, varA, varB float64
	for i := range nums {
		da := nums[i] - meanA
		db := numsB[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	cov /= n
	stdA := math.Sqrt(varA / n)
	stdB := math.Sqrt(varB / n)
	if stdA == 0 || stdB == 0 {
		return map[string]any{"correlation": 0.0, "note": "one or both series have zero variance"}
	}
	return map[string]any{"correlation": round6(cov / (stdA * stdB))}
}

func dataNormalize(nums []float64) map[string]any {
	minVal, maxVal := minFloat(nums), maxFloat(nums)
	if minVal == maxVal {
		out := make([]float64, len(nums))
		return map[string]any{"normalized": out}
	}
	normalized := make([]float64, len(nums))
	for i, x := range nums {
		normalized[i] = round6((x - minVal) / (maxVal - minVal))
	}
	return map[string]any{"normalized": normalized}
}

func dataZScores(nums []float64) map[string]any {
	n := float64(len(nums))
	mean := sumFloats(nums) / n
	var varianceSum float64
	for _, x := range nums {
		d := x - mean
		varianceSum += d * d
	}
	stdev := math.Sqrt(varianceSum / n)
	if stdev == 0 {
		return map[string]any{"z_scores": make([]float64, len(nums))}
	}
	scores := make([]float64, len(nums))
	for i, x := range nums {
		scores[i] = round6((x - mean) / stdev)
	}
	return map[string]any{"z_scores": scores}
}
