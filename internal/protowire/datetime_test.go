package protowire

import (
	"testing"
	"time"
)

func TestLongDateRoundTrip(t *testing.T) {
	want := time.Date(2026, 7, 30, 13, 45, 12, 123400, time.UTC)
	got, ok := EncodeLongDate(want).Time()
	if !ok {
		t.Fatal("unexpected NULL")
	}
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSecondDateRoundTrip(t *testing.T) {
	want := time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC)
	got, ok := EncodeSecondDate(want).Time()
	if !ok {
		t.Fatal("unexpected NULL")
	}
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDayDateRoundTrip(t *testing.T) {
	want := time.Date(2001, 2, 28, 0, 0, 0, 0, time.UTC)
	got, ok := EncodeDayDate(want).Time()
	if !ok {
		t.Fatal("unexpected NULL")
	}
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSecondTimeRoundTrip(t *testing.T) {
	want := time.Date(1, 1, 1, 8, 30, 0, 0, time.UTC)
	got, ok := EncodeSecondTime(want).Time()
	if !ok {
		t.Fatal("unexpected NULL")
	}
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDateTimeNullEncoding(t *testing.T) {
	if _, ok := LongDate(0).Time(); ok {
		t.Fatal("LongDate(0) should decode as NULL")
	}
	if _, ok := SecondDate(0).Time(); ok {
		t.Fatal("SecondDate(0) should decode as NULL")
	}
	if _, ok := DayDate(0).Time(); ok {
		t.Fatal("DayDate(0) should decode as NULL")
	}
	if _, ok := SecondTime(0).Time(); ok {
		t.Fatal("SecondTime(0) should decode as NULL")
	}
}

func TestJulianDayRoundTrip(t *testing.T) {
	dates := [][3]int{{1, 1, 1}, {1970, 1, 1}, {2000, 2, 29}, {2026, 7, 30}, {9999, 12, 31}}
	for _, d := range dates {
		jd := julianDay(d[0], d[1], d[2])
		y, m, day := julianDayToDate(jd)
		if y != d[0] || m != d[1] || day != d[2] {
			t.Fatalf("julianDay(%v) round trip: got %d-%d-%d", d, y, m, day)
		}
	}
}
