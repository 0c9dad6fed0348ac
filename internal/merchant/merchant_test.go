package merchant

import "testing"

func TestDetect_Amazon(t *testing.T) {
	t.Parallel()

	m, err := Detect("https://www.amazon.com/dp/B0000001")
	if err != nil {
		t.Fatalf("Detect error: %v", err)
	}
	if m != Amazon {
		t.Fatalf("expected %q, got %q", Amazon, m)
	}
}

func TestDetect_RegionalAmazon(t *testing.T) {
	t.Parallel()

	cases := []string{
		"https://amazon.de/dp/B0000001",
		"https://smile.amazon.com/dp/B0000001",
	}
	for _, raw := range cases {
		m, err := Detect(raw)
		if err != nil {
			t.Fatalf("Detect(%q) error: %v", raw, err)
		}
		if m != Amazon {
			t.Fatalf("Detect(%q): expected %q, got %q", raw, Amazon, m)
		}
	}
}

func TestDetect_UnknownHostLabeledByHost(t *testing.T) {
	t.Parallel()

	m, err := Detect("https://shop.example.test/widget")
	if err != nil {
		t.Fatalf("Detect error: %v", err)
	}
	if m != Merchant("shop.example.test") {
		t.Fatalf("got %q", m)
	}
}

func TestDetect_RejectsBadURLs(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"ftp://example.test/x",
		"/relative/only",
	}
	for _, raw := range cases {
		if _, err := Detect(raw); err == nil {
			t.Fatalf("Detect(%q): expected error", raw)
		}
	}
}
