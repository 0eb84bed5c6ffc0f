package twchart

import (
	"encoding/json"
	"testing"
)

func TestJSON(t *testing.T) {
	rawJSON := "{\"id\":\"d4kdisifn76c73dkrju0\",\"Session\":{\"Name\":\"Practice Run\",\"Date\":\"2026-10-17T16:06:26.504207-07:00\",\"StartTime\":\"0001-01-01T00:00:00Z\",\"Probes\":[{\"Name\":\"Arm\",\"Position\":1},{\"Name\":\"Wrist\",\"Position\":2}],\"Stages\":null,\"Events\":null,\"Data\":null},\"UploadedAt\":\"2026-10-17T23:06:26.60698014Z\"}"
	var s session
	err := json.Unmarshal([]byte(rawJSON), &s)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if s.GetID() != "d4kdisifn76c73dkrju0" {
		t.Errorf("expected id=d4kdisifn76c73dkrju0, got=%q", s.GetID())
	}
	if s.Session.Name != "Practice Run" {
		t.Errorf("expected name=Practice Run, got=%q", s.Session.Name)
	}
	if len(s.Session.Probes) != 2 {
		t.Errorf("expected 2 channels, got=%d", len(s.Session.Probes))
	}
	if s.UploadedAt.IsZero() {
		t.Error("expected UploadedAt to be set")
	}
}

func TestPositionsNote(t *testing.T) {
	names := Probes{{Name: "Arm", Position: 1}, {Name: "Wrist", Position: 2}}

	tests := []struct {
		name     string
		names    Probes
		counts   []int32
		expected string
	}{
		{"Named", names, []int32{-153, -415}, "Arm=-153 Wrist=-415"},
		{"Unnamed", nil, []int32{23, 292}, "enc1=23 enc2=292"},
		{"PartlyNamed", Probes{{Name: "Wrist", Position: 2}}, []int32{330, 2}, "enc1=330 Wrist=2"},
		{"NoCounts", names, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			note := PositionsNote(tt.names, tt.counts)
			if note != tt.expected {
				t.Errorf("expected=%q, got=%q", tt.expected, note)
			}
		})
	}
}

func TestParseProbes(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    Probes
		expectedErr string
	}{
		{
			"Default",
			"1=Arm,2=Wrist",
			Probes{{Name: "Arm", Position: 1}, {Name: "Wrist", Position: 2}},
			"",
		},
		{
			"Whitespace",
			" 3 = Left Drive ",
			Probes{{Name: "Left Drive", Position: 3}},
			"",
		},
		{"MissingName", "1", nil, "invalid probe entry: \"1\""},
		{"Zero", "0=Arm", nil, "invalid probe position: \"0\""},
		{"PastLastChannel", "7=Arm", nil, "invalid probe position: \"7\""},
		{"NotANumber", "x=Arm", nil, "invalid probe position: \"x\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probes, err := ParseProbes(tt.input)
			if tt.expectedErr != "" {
				if err == nil || err.Error() != tt.expectedErr {
					t.Errorf("expected err=%q, got=%v", tt.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(probes) != len(tt.expected) {
				t.Fatalf("expected=%v, got=%v", tt.expected, probes)
			}
			for i := range probes {
				if probes[i].Name != tt.expected[i].Name || probes[i].Position != tt.expected[i].Position {
					t.Errorf("expected=%v, got=%v", tt.expected[i], probes[i])
				}
			}
		})
	}
}
