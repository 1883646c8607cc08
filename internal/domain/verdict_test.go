package domain

import "testing"

// TestHasSignal verifies marker detection survives model prose wrapping
func TestHasSignal(t *testing.T) {
	testCases := []struct {
		name     string
		findings string
		want     bool
	}{
		{name: "exact marker", findings: "NO ALPHA - IGNORE", want: false},
		{name: "marker wrapped in prose", findings: "After review: NO ALPHA - IGNORE. Nothing here.", want: false},
		{name: "empty findings", findings: "", want: false},
		{name: "real finding", findings: "New tariff on steel imports", want: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := ScoutReport{Findings: tc.findings}
			if got := r.HasSignal(); got != tc.want {
				t.Errorf("HasSignal mismatch: got %v, want %v", got, tc.want)
			}
		})
	}
}

// TestNoSignalVerdict verifies the canonical verdict always falls below the
// acceptance threshold
func TestNoSignalVerdict(t *testing.T) {
	v := NoSignalVerdict("Quiet Act")
	if v.LawTitle != "Quiet Act" {
		t.Errorf("LawTitle mismatch: %q", v.LawTitle)
	}
	if v.ConfidenceScore > 0 {
		t.Errorf("Canonical verdict must not pass the filter, confidence=%d", v.ConfidenceScore)
	}
	if v.TimeHorizonMonths != 0 {
		t.Errorf("Horizon should be zero, got %d", v.TimeHorizonMonths)
	}
}

// TestVerdictColumnRoundTrip verifies the JSON column mapping
func TestVerdictColumnRoundTrip(t *testing.T) {
	in := Verdict{
		LawTitle:        "Grid Act",
		ConfidenceScore: 64,
		AffectedSectors: []SectorExposure{{Sector: "Utilities", ConvictionScore: 70}},
	}

	raw, err := in.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var out Verdict
	if err := out.Scan(raw); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if out.ConfidenceScore != 64 || out.LawTitle != "Grid Act" {
		t.Errorf("Round trip mismatch: %+v", out)
	}
	if len(out.AffectedSectors) != 1 || out.AffectedSectors[0].Sector != "Utilities" {
		t.Errorf("Sector exposure lost: %+v", out.AffectedSectors)
	}
}
