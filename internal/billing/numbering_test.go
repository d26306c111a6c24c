package billing

import "testing"

func TestNextNumber(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		want     string
	}{
		{name: "no invoices", existing: nil, want: "INV-000001"},
		{name: "increments max", existing: []string{"INV-000001", "INV-000007", "INV-000003"}, want: "INV-000008"},
		{name: "ignores other formats", existing: []string{"QUOTE-000050", "INV-2026-001", "custom", "INV-12a"}, want: "INV-000001"},
		{name: "manual number becomes max", existing: []string{"INV-000002", "INV-000120"}, want: "INV-000121"},
		{name: "unpadded manual number", existing: []string{"INV-42"}, want: "INV-000043"},
		{name: "grows past width", existing: []string{"INV-999999"}, want: "INV-1000000"},
		{name: "self-heals after deletion", existing: []string{"INV-000001", "INV-000002"}, want: "INV-000003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextNumber("INV", DefaultNumberWidth, tt.existing); got != tt.want {
				t.Fatalf("NextNumber() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNextNumber_Idempotent(t *testing.T) {
	existing := []string{"INV-000004", "INV-000005"}
	first := NextNumber("INV", 6, existing)
	second := NextNumber("INV", 6, existing)
	if first != second {
		t.Fatalf("expected same number on repeated calls, got %q and %q", first, second)
	}
}

func TestNextNumber_PrefixIsLiteral(t *testing.T) {
	// regex metacharacters in the prefix must not widen the match
	got := NextNumber("A.B", 3, []string{"AxB-010", "A.B-002"})
	if got != "A.B-003" {
		t.Fatalf("expected A.B-003, got %q", got)
	}
}
