package reactive

import (
	"math"
	"testing"
)

func TestSameValue(t *testing.T) {
	m := Object{}
	s := []int{1, 2}
	f := func() {}
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"equal ints", 1, 1, true},
		{"different ints", 1, 2, false},
		{"int vs float", 1, 1.0, false},
		{"nan", math.NaN(), math.NaN(), true},
		{"signed zero", 0.0, math.Copysign(0, -1), false},
		{"strings", "a", "a", true},
		{"nil", nil, nil, true},
		{"nil vs zero", nil, 0, false},
		{"same map", m, m, true},
		{"different maps", Object{"a": 1}, Object{"a": 1}, false},
		{"same slice", s, s, true},
		{"resliced", s, s[:1], false},
		{"funcs never equal", f, f, false},
		{"structs", struct{ X int }{1}, struct{ X int }{1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameValue(tt.a, tt.b); got != tt.want {
				t.Errorf("SameValue(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
