package technician

import (
	"errors"
	"testing"

	"fieldops/internal/domain/taglist"
)

// TestTechnician_Validate tests validation of Technician.
func TestTechnician_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tech    Technician
		policy  taglist.Policy
		wantErr error
	}{
		{"valid", Technician{Name: "Ana Ruiz", Email: "ana@fieldops.test", Skills: []string{"HVAC"}}, taglist.Exact, nil},
		{"no email is fine", Technician{Name: "Ana Ruiz"}, taglist.Exact, nil},
		{"blank name", Technician{Name: "  "}, taglist.Exact, ErrEmptyName},
		{"bad email", Technician{Name: "Ana", Email: "ana"}, taglist.Exact, ErrInvalidEmail},
		{"case duplicate exact", Technician{Name: "Ana", Skills: []string{"Gas", "gas"}}, taglist.Exact, nil},
		{"case duplicate folded", Technician{Name: "Ana", Skills: []string{"Gas", "gas"}}, taglist.CaseInsensitive, ErrInvalidSkills},
		{"untrimmed skill", Technician{Name: "Ana", Skills: []string{" Gas"}}, taglist.Exact, ErrInvalidSkills},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.tech.Validate(tt.policy); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestTechnician_HasSkill tests policy-aware skill lookup.
func TestTechnician_HasSkill(t *testing.T) {
	tech := Technician{Skills: []string{"Refrigeration"}}
	if !tech.HasSkill(" refrigeration ", taglist.CaseInsensitive) {
		t.Error("expected match")
	}
	if tech.HasSkill("Electrical", taglist.CaseInsensitive) {
		t.Error("unexpected match")
	}
}
