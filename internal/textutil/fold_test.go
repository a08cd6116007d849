package textutil

import "testing"

func TestFoldASCII(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Water Wells", "water_wells"},
		{"Rivière du Nord", "riviere_du_nord"},
		{"Forêts Québec", "forets_quebec"},
		{"  Padded Name  ", "padded_name"},
		{"already_folded", "already_folded"},
		// Code points with no ASCII equivalent drop silently.
		{"層日本", ""},
		{"wells層2023", "wells2023"},
	}
	for _, tc := range cases {
		if got := FoldASCII(tc.in); got != tc.want {
			t.Errorf("FoldASCII(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := SanitizeFileName("a/b:c*d?e"); got != "a-b-c-de" {
		t.Fatalf("unexpected result: %q", got)
	}
	if got := SanitizeFileName("   "); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
