package keys

import "testing"

func TestRef(t *testing.T) {
	tests := []struct {
		kind, id string
		expected string
	}{
		{KindItem, "42", "ITEM#42"},
		{KindSubject, "still_life", "SUBJECT#still_life"},
		{KindContributor, "jane_doe", "CONTRIBUTOR#jane_doe"},
	}

	for _, tt := range tests {
		if got := Ref(tt.kind, tt.id); got != tt.expected {
			t.Errorf("Ref(%q, %q) = %q, expected %q", tt.kind, tt.id, got, tt.expected)
		}
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		name     string
		parts    []string
		expected string
	}{
		{"simple", []string{"Jane", "Doe"}, "jane_doe"},
		{"middle empty", []string{"Jane", "", "Doe"}, "jane_doe"},
		{"punctuation", []string{"Smith & Sons, Ltd."}, "smith_sons_ltd"},
		{"internal spaces", []string{"Van  der Berg"}, "van_der_berg"},
		{"digits kept", []string{"Atelier 21"}, "atelier_21"},
		{"all empty", []string{"", ""}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slug(tt.parts...); got != tt.expected {
				t.Errorf("Slug(%v) = %q, expected %q", tt.parts, got, tt.expected)
			}
		})
	}
}

func TestPriceSort(t *testing.T) {
	tests := []struct {
		cents    int64
		expected string
	}{
		{0, "000000000000"},
		{1250, "000000001250"},
		{999999999999, "999999999999"},
		{-5, "000000000000"},
	}

	for _, tt := range tests {
		if got := PriceSort(tt.cents); got != tt.expected {
			t.Errorf("PriceSort(%d) = %q, expected %q", tt.cents, got, tt.expected)
		}
	}
}

func TestPriceSortLexicographicOrder(t *testing.T) {
	if !(PriceSort(900) < PriceSort(1000)) {
		t.Error("expected encoded 900 to order before encoded 1000")
	}
}

func TestNewItemIDUnique(t *testing.T) {
	a, b := NewItemID(), NewItemID()
	if a == b {
		t.Error("expected distinct generated ids")
	}
	if a == "" {
		t.Error("expected non-empty id")
	}
}
