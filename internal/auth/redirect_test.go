package auth

import "testing"

func TestResolveRedirect(t *testing.T) {
	const base = "https://fodi.market"

	testCases := []struct {
		name   string
		target string
		want   string
	}{
		{"empty", "", base},
		{"relative", "/admin/ingredients", base + "/admin/ingredients"},
		{"relative with query", "/admin?tab=2", base + "/admin?tab=2"},
		{"same origin absolute", "https://fodi.market/admin", "https://fodi.market/admin"},
		{"cross origin", "https://evil.example/admin", base},
		{"scheme downgrade", "http://fodi.market/admin", base},
		{"protocol relative", "//evil.example", base},
		{"backslash trick", "/\\evil.example", base},
		{"sign-in relative", "/auth/signin", base},
		{"sign-in with callback", "/auth/signin?callbackUrl=%2Fadmin", base},
		{"sign-in absolute", "https://fodi.market/auth/signin", base},
		{"sign-in lookalike", "/auth/signinfo", base + "/auth/signinfo"},
		{"javascript scheme", "javascript:alert(1)", base},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveRedirect(tc.target, base); got != tc.want {
				t.Errorf("ResolveRedirect(%q) = %q, want %q", tc.target, got, tc.want)
			}
		})
	}
}
