package teacher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusinessID(t *testing.T) {
	tests := []struct {
		phone  string
		wantID string
		wantOK bool
	}{
		{phone: "+91 98765-43210", wantID: "TEACH43210", wantOK: true},
		{phone: "12", wantID: "TEACH12", wantOK: true},
		{phone: "(022) 2345 6789", wantID: "TEACH56789", wantOK: true},
		{phone: "९८७६५४३२१० ext 77", wantID: "TEACH77", wantOK: true},
		{phone: "९८७६५", wantOK: false},
		{phone: "n/a", wantOK: false},
		{phone: "", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			id, ok := BusinessID(tt.phone)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestTeacher_ExperienceYears(t *testing.T) {
	tests := map[string]int{
		"5 years":  5,
		"10+ yrs":  10,
		"2.5":      2,
		"a decade": 0,
		"":         0,
	}
	for exp, want := range tests {
		assert.Equal(t, want, Teacher{Experience: exp}.ExperienceYears(), exp)
	}
}
