package link

import "testing"

func TestParseAddrRoundTrip(t *testing.T) {
	in := "E8:31:CD:C6:FE:68"
	addr, err := ParseAddr(in)
	if err != nil {
		t.Fatalf("ParseAddr(%q): %v", in, err)
	}
	if addr.String() != in {
		t.Errorf("String() = %q, want %q", addr.String(), in)
	}
}

func TestParseAddrForms(t *testing.T) {
	want := Addr{0xAA, 0xBB, 0xCC, 0x01, 0x02, 0x03}
	for _, in := range []string{"AA:BB:CC:01:02:03", "aa:bb:cc:01:02:03", "AA-BB-CC-01-02-03"} {
		got, err := ParseAddr(in)
		if err != nil {
			t.Errorf("ParseAddr(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseAddr(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseAddrRejects(t *testing.T) {
	for _, in := range []string{"", "AA:BB:CC:01:02", "AA:BB:CC:01:02:03:04", "GG:BB:CC:01:02:03", "AAA:BB:CC:01:02:3"} {
		if _, err := ParseAddr(in); err == nil {
			t.Errorf("ParseAddr(%q) succeeded, want error", in)
		}
	}
}

func TestIsZero(t *testing.T) {
	if !(Addr{}).IsZero() {
		t.Error("zero address not reported as zero")
	}
	if (Addr{1}).IsZero() {
		t.Error("non-zero address reported as zero")
	}
}
