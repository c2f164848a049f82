package politics

import "testing"

func TestValidateBounds(t *testing.T) {
	var p PoliticalPosition
	if err := p.Validate(); err != nil {
		t.Fatalf("zero position should validate: %v", err)
	}

	p.Cube.Economic = 10.5
	if err := p.Validate(); err == nil {
		t.Fatal("out-of-range cube axis should fail validation")
	}
	p.Cube.Economic = 0

	p.Issues[IssueSuffrage] = -11
	if err := p.Validate(); err == nil {
		t.Fatal("out-of-range issue should fail validation")
	}
	p.Issues[IssueSuffrage] = 0

	p.Salience[IssueSuffrage] = 1.2
	if err := p.Validate(); err == nil {
		t.Fatal("out-of-range salience should fail validation")
	}
}

func TestValidateSalienceSoftCap(t *testing.T) {
	// A salience sum above the cap is logged, never rejected.
	var p PoliticalPosition
	for i := 0; i < NumIssues; i++ {
		p.Salience[i] = 1
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("soft cap must not reject: %v", err)
	}
}

func TestClampHelpers(t *testing.T) {
	if got := ClampAxis(42); got != AxisMax {
		t.Fatalf("ClampAxis(42) = %f, want %f", got, AxisMax)
	}
	if got := ClampAxis(-42); got != AxisMin {
		t.Fatalf("ClampAxis(-42) = %f, want %f", got, AxisMin)
	}
	if got := ClampSalience(2); got != 1 {
		t.Fatalf("ClampSalience(2) = %f, want 1", got)
	}
	if got := ClampSalience(-0.5); got != 0 {
		t.Fatalf("ClampSalience(-0.5) = %f, want 0", got)
	}
}

func TestIssueNames(t *testing.T) {
	for i := 0; i < NumIssues; i++ {
		if Issue(i).Name() == "" {
			t.Fatalf("issue %d has no name", i)
		}
	}
	if Issue(200).Name() != "Issue#200" {
		t.Fatalf("unknown issue name = %q", Issue(200).Name())
	}
}
