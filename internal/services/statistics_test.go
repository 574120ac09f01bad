package services

import (
	"math"
	"testing"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/models"
)

const float64Tolerance = 1e-9

func floatsEqual(a, b float64) bool {
	return math.Abs(a-b) < float64Tolerance
}

func TestAverage(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"Empty input returns zero", nil, 0},
		{"Single value", []float64{4}, 4},
		{"Whole numbers", []float64{1, 2, 3, 4, 5}, 3},
		{"Fractional mean", []float64{1, 2, 3, 4, 5, 5}, 10.0 / 3.0},
		{"Negative values", []float64{-2, 2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Average(tt.values); !floatsEqual(got, tt.expected) {
				t.Errorf("Average() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"Empty input returns zero", nil, 0},
		{"Odd count takes middle", []float64{3, 1, 2}, 2},
		{"Even count averages middle pair", []float64{1, 2, 3, 4, 5, 5}, 3.5},
		{"Unsorted input", []float64{5, 1, 4, 2, 3}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Median(tt.values); !floatsEqual(got, tt.expected) {
				t.Errorf("Median() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMedian_DoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Median(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("Median() mutated input: %v", values)
	}
}

func TestDistribution_FirstOccurrenceOrder(t *testing.T) {
	got := Distribution([]float64{5, 3, 5, 4, 3, 5})

	expected := []DistributionBucket{
		{Label: "5", Count: 3},
		{Label: "3", Count: 2},
		{Label: "4", Count: 1},
	}
	if len(got) != len(expected) {
		t.Fatalf("Distribution() returned %d buckets, want %d", len(got), len(expected))
	}
	for i, b := range expected {
		if got[i] != b {
			t.Errorf("Distribution()[%d] = %+v, want %+v", i, got[i], b)
		}
	}
}

func TestDistribution_Empty(t *testing.T) {
	if got := Distribution(nil); len(got) != 0 {
		t.Errorf("Distribution(nil) = %v, want empty", got)
	}
}

func TestMode(t *testing.T) {
	tests := []struct {
		name       string
		values     []float64
		expected   string
		expectedOK bool
	}{
		{"Empty input has no mode", nil, "", false},
		{"Clear winner", []float64{1, 2, 2, 3}, "2", true},
		{"Tie goes to first encountered", []float64{4, 2, 2, 4}, "4", true},
		{"Fractional label", []float64{3.5, 3.5, 1}, "3.5", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Mode(tt.values)
			if ok != tt.expectedOK {
				t.Fatalf("Mode() ok = %v, want %v", ok, tt.expectedOK)
			}
			if got != tt.expected {
				t.Errorf("Mode() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestPercentage(t *testing.T) {
	got := Percentage([]float64{1, 1, 2, 3})

	expected := map[string]float64{"1": 50, "2": 25, "3": 25}
	if len(got) != len(expected) {
		t.Fatalf("Percentage() returned %d buckets, want %d", len(got), len(expected))
	}
	total := 0.0
	for _, b := range got {
		want, ok := expected[b.Label]
		if !ok {
			t.Errorf("Percentage() unexpected label %q", b.Label)
			continue
		}
		if !floatsEqual(b.Percent, want) {
			t.Errorf("Percentage()[%q] = %v, want %v", b.Label, b.Percent, want)
		}
		total += b.Percent
	}
	if !floatsEqual(total, 100) {
		t.Errorf("Percentage() buckets sum to %v, want 100", total)
	}
}

func TestRange(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected RangeResult
	}{
		{"Empty input all zero", nil, RangeResult{}},
		{"Single value has zero range", []float64{7}, RangeResult{Min: 7, Max: 7, Range: 0}},
		{"Mixed values", []float64{4, 1, 5, 2}, RangeResult{Min: 1, Max: 5, Range: 4}},
		{"Negative values", []float64{-3, 2}, RangeResult{Min: -3, Max: 2, Range: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Range(tt.values); got != tt.expected {
				t.Errorf("Range() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestStandardDeviation(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"Empty input returns zero", nil, 0},
		{"Identical values have zero deviation", []float64{3, 3, 3}, 0},
		// population deviation of {2,4,4,4,5,5,7,9} is exactly 2
		{"Known population deviation", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StandardDeviation(tt.values); !floatsEqual(got, tt.expected) {
				t.Errorf("StandardDeviation() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestWeightedAverage(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		weights  []float64
		expected float64
	}{
		{"Empty input returns zero", nil, nil, 0},
		{"Length mismatch returns zero", []float64{1, 2}, []float64{1}, 0},
		{"Zero weight sum returns zero", []float64{1, 2}, []float64{0, 0}, 0},
		{"Equal weights match plain mean", []float64{2, 4}, []float64{1, 1}, 3},
		{"Heavier weight pulls result", []float64{2, 4}, []float64{3, 1}, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeightedAverage(tt.values, tt.weights); !floatsEqual(got, tt.expected) {
				t.Errorf("WeightedAverage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		scale    *models.ScaleRange
		expected []float64
	}{
		{"Empty input returns nil", nil, nil, nil},
		{"Data-derived bounds", []float64{1, 3, 5}, nil, []float64{0, 0.5, 1}},
		{"Explicit scale bounds", []float64{1, 3, 5}, &models.ScaleRange{Min: 1, Max: 5}, []float64{0, 0.5, 1}},
		{"Scale wider than data", []float64{2, 4}, &models.ScaleRange{Min: 0, Max: 10}, []float64{0.2, 0.4}},
		{"Zero span maps to zero", []float64{4, 4}, nil, []float64{0, 0}},
		{"Zero scale span maps to zero", []float64{4, 4}, &models.ScaleRange{Min: 4, Max: 4}, []float64{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.values, tt.scale)
			if len(got) != len(tt.expected) {
				t.Fatalf("Normalize() returned %d values, want %d", len(got), len(tt.expected))
			}
			for i := range got {
				if !floatsEqual(got[i], tt.expected[i]) {
					t.Errorf("Normalize()[%d] = %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestFormatStatValue(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected string
	}{
		{"Whole number drops decimals", 5, "5"},
		{"Half keeps one decimal", 3.5, "3.5"},
		{"Repeating fraction keeps precision", 10.0 / 3.0, "3.3333333333333335"},
		{"Zero", 0, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatStatValue(tt.value); got != tt.expected {
				t.Errorf("FormatStatValue() = %q, want %q", got, tt.expected)
			}
		})
	}
}
