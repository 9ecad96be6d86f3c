package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductAvailableIn(t *testing.T) {
	tests := []struct {
		name    string
		shifts  []string
		shiftID string
		want    bool
	}{
		{"unrestricted with no shift running", nil, "", true},
		{"unrestricted during a shift", nil, "lunch", true},
		{"restricted inside its shift", []string{"lunch"}, "lunch", true},
		{"restricted outside its shift", []string{"lunch"}, "dinner", false},
		{"restricted with no shift running", []string{"morning"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product := &Product{ShiftIDs: tt.shifts}
			assert.Equal(t, tt.want, product.AvailableIn(tt.shiftID))
		})
	}
}
