package il

// Score weights. The sum is clamped to 1.
const (
	WeightEmpty           = 0.40
	WeightThrows          = 0.40
	WeightReturnsConstant = 0.20
	WeightNoLogic         = 0.15
)

// Score is the incompleteness score in [0, 1]. Higher means more likely a stub.
func (f Facts) Score() float64 {
	s := 0.0
	if f.IsEmpty {
		s += WeightEmpty
	}
	if f.ThrowsNotImplemented {
		s += WeightThrows
	}
	if f.ReturnsConstant {
		s += WeightReturnsConstant
	}
	if f.HasNoLogic {
		s += WeightNoLogic
	}
	if s > 1 {
		return 1
	}
	return s
}
