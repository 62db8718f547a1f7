package message

import (
	"errors"
	"testing"
)

func TestEncodeLayout(t *testing.T) {
	got := Frame{Type: TypeCommand, Value: 2}.Encode()
	if len(got) != Size {
		t.Fatalf("Encode returned %d bytes, want %d", len(got), Size)
	}
	if got[0] != 1 || got[1] != 2 {
		t.Errorf("Encode returned % X, want 01 02", got)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, typ := range []Type{TypeCommand, TypeAck, TypeDiscovery} {
		for v := 0; v < 256; v++ {
			in := Frame{Type: typ, Value: uint8(v)}
			out, err := Decode(in.Encode())
			if err != nil {
				t.Fatalf("Decode(%v): %v", in, err)
			}
			if out != in {
				t.Fatalf("round trip changed frame: in %v, out %v", in, out)
			}
		}
	}
}

func TestDecodeRejectsBadLength(t *testing.T) {
	for _, data := range [][]byte{nil, {}, {1}, {1, 0, 0}} {
		if _, err := Decode(data); !errors.Is(err, ErrBadLength) {
			t.Errorf("Decode(% X) = %v, want ErrBadLength", data, err)
		}
	}
}

func TestDecodeRejectsBadType(t *testing.T) {
	for _, typ := range []byte{0, 4, 99, 255} {
		if _, err := Decode([]byte{typ, 1}); !errors.Is(err, ErrBadType) {
			t.Errorf("Decode type %d = %v, want ErrBadType", typ, err)
		}
	}
}

func TestTypeString(t *testing.T) {
	if TypeCommand.String() != "COMMAND" || TypeAck.String() != "ACK" || TypeDiscovery.String() != "DISCOVERY" {
		t.Error("unexpected Type string rendering")
	}
	if Type(9).String() != "UNKNOWN(9)" {
		t.Errorf("Type(9) = %s", Type(9))
	}
}
