package cesu8

import (
	"bytes"
	"testing"

	"golang.org/x/text/transform"
)

func TestFromUTF8ToUTF8RoundTrip(t *testing.T) {
	s := "plain ascii, a café, and an emoji " + string(rune(0x1F600))

	cesu, _, err := transform.Bytes(FromUTF8{}, []byte(s))
	if err != nil {
		t.Fatalf("FromUTF8: %v", err)
	}

	// the supplementary-plane rune must come back as two 3-byte
	// surrogate sequences, not one 4-byte UTF-8 sequence.
	if bytes.Contains(cesu, []byte{0xF0}) {
		t.Fatalf("CESU-8 output still contains a 4-byte UTF-8 lead byte")
	}

	back, _, err := transform.Bytes(ToUTF8{}, cesu)
	if err != nil {
		t.Fatalf("ToUTF8: %v", err)
	}
	if string(back) != s {
		t.Fatalf("round trip = %q, want %q", back, s)
	}
}

func TestToUTF8RejectsLoneSurrogate(t *testing.T) {
	lone := []byte{0xED, 0xA0, 0x80} // lead surrogate with no trailing pair
	_, _, err := transform.Bytes(ToUTF8{}, lone)
	if err != ErrInvalidSurrogate {
		t.Fatalf("err = %v, want ErrInvalidSurrogate", err)
	}
}

func TestToUTF8RejectsLoneTrailSurrogate(t *testing.T) {
	lone := []byte{0xED, 0xB0, 0x80} // trailing surrogate with no lead
	_, _, err := transform.Bytes(ToUTF8{}, lone)
	if err != ErrInvalidSurrogate {
		t.Fatalf("err = %v, want ErrInvalidSurrogate", err)
	}
}
