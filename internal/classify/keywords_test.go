package classify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDepartmentKeywordInference(t *testing.T) {
	cases := []struct {
		title       string
		description string
		want        string
	}{
		{"Patch management", "Cybersecurity breach risk from missing server updates", "Security"},
		{"Backup failures", "Nightly database backup jobs not monitored", "IT"},
		{"Staff onboarding", "Recruitment files missing signed contracts for new employees", "HR"},
		{"Budget overrun", "Expenditure exceeded approved budget without documented approval", "Finance"},
		{"Contract review", "Supplier contract renewed without legal review", "Legal"},
		{"Warehouse flow", "Logistics process lacks documented handover steps", "Operations"},
		{"Record keeping", "Filing of incoming correspondence is inconsistent", "Administration"},
	}

	for _, tc := range cases {
		got, ok := Department(tc.title, tc.description)
		require.True(t, ok, "%q should match a department", tc.description)
		require.Equal(t, tc.want, got, "%q", tc.description)
	}
}

func TestDepartmentSecurityWinsOverInfrastructureTerms(t *testing.T) {
	// Mentions both server (IT) and breach (Security); Security is declared
	// first so security-themed findings do not land on IT.
	got, ok := Department("Server hardening", "Unpatched server led to a security breach")
	require.True(t, ok)
	require.Equal(t, "Security", got)
}

func TestDepartmentNoMatch(t *testing.T) {
	_, ok := Department("Misc", "General housekeeping item")
	require.False(t, ok)
}

func TestDepartmentDeterministic(t *testing.T) {
	title := "Patch cadence"
	description := "Vulnerability exposure on public endpoints"

	first, ok := Department(title, description)
	require.True(t, ok)
	for i := 0; i < 10; i++ {
		again, ok := Department(title, description)
		require.True(t, ok)
		require.Equal(t, first, again)
	}
}
