package pipeline

import "math"

// StandardScaler centers each feature on its mean and divides by its
// population standard deviation. Constant features keep a scale of 1.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// FitScaler computes per-column mean and scale over X
func FitScaler(X [][]float64) *StandardScaler {
	if len(X) == 0 {
		return &StandardScaler{}
	}
	dims := len(X[0])
	s := &StandardScaler{Mean: make([]float64, dims), Scale: make([]float64, dims)}

	for _, row := range X {
		for j, v := range row {
			s.Mean[j] += v
		}
	}
	n := float64(len(X))
	for j := range s.Mean {
		s.Mean[j] /= n
	}

	for _, row := range X {
		for j, v := range row {
			d := v - s.Mean[j]
			s.Scale[j] += d * d
		}
	}
	for j := range s.Scale {
		s.Scale[j] = math.Sqrt(s.Scale[j] / n)
		if s.Scale[j] == 0 {
			s.Scale[j] = 1
		}
	}
	return s
}

// TransformRow scales a single vector
func (s *StandardScaler) TransformRow(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mean[j]) / s.Scale[j]
	}
	return out
}

// Transform scales every row of X
func (s *StandardScaler) Transform(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = s.TransformRow(row)
	}
	return out
}
