package utils

import (
	"bytes"
	"testing"
)

func TestQRCodePNG(t *testing.T) {
	data, err := QRCodePNG("ada@example.org", 256)
	if err != nil {
		t.Fatalf("QRCodePNG: %v", err)
	}
	if !bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G'}) {
		t.Error("output is not a PNG")
	}
}

func TestSafeFilename(t *testing.T) {
	cases := map[string]string{
		"ada@example.org":      "ada_example_org",
		"tom.b+cc@mail.co.uk":  "tom_b_cc_mail_co_uk",
		"simple":               "simple",
		"UPPER.case-42@x.dev":  "UPPER_case_42_x_dev",
		"weird chars / \\ *..": "weird_chars________",
	}
	for in, want := range cases {
		if got := SafeFilename(in); got != want {
			t.Errorf("SafeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
