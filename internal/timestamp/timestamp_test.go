package timestamp

import (
	"reflect"
	"testing"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"2:34", 154},
		{"1:23:45", 5025},
		{"0:00", 0},
		{"12:05", 725},
		{"100:00:00", 360000}, // multi-digit hours
		{"not a time", 0},
		{"", 0},
		{"At 2:34 you can see", 154}, // first match anywhere
	}

	for _, tc := range cases {
		if got := ParseClock(tc.in); got != tc.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseLine(t *testing.T) {
	got := ParseLine("2:34 - Introduction")
	want := Parsed{Time: "2:34", Description: "Introduction", Seconds: 154}
	if got != want {
		t.Errorf("ParseLine = %+v, want %+v", got, want)
	}
}

func TestParseLine_HoursFormat(t *testing.T) {
	got := ParseLine("1:23:45 - Deep dive")
	want := Parsed{Time: "1:23:45", Description: "Deep dive", Seconds: 5025}
	if got != want {
		t.Errorf("ParseLine = %+v, want %+v", got, want)
	}
}

func TestParseLine_NoClock(t *testing.T) {
	got := ParseLine("  just some text  ")
	if got.Time != "N/A" || got.Seconds != 0 {
		t.Errorf("expected N/A fallback, got %+v", got)
	}
	if got.Description != "just some text" {
		t.Errorf("description = %q, want trimmed full line", got.Description)
	}
}

func TestParseLine_FirstTimestampWins(t *testing.T) {
	got := ParseLine("0:30 - from 0:30 to 1:45")
	if got.Time != "0:30" || got.Seconds != 30 {
		t.Errorf("expected first timestamp honored, got %+v", got)
	}
	if got.Description != "from 0:30 to 1:45" {
		t.Errorf("description = %q", got.Description)
	}
}

func TestExtractLines(t *testing.T) {
	text := "Here are the timestamps:\n" +
		"0:00 - Intro\n" +
		"some commentary without a time\n" +
		"2:34 - Main topic\n" +
		"\n" +
		"1:23:45 - Conclusion\n"

	got := ExtractLines(text)
	want := []Parsed{
		{Time: "0:00", Description: "Intro", Seconds: 0},
		{Time: "2:34", Description: "Main topic", Seconds: 154},
		{Time: "1:23:45", Description: "Conclusion", Seconds: 5025},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractLines = %+v, want %+v", got, want)
	}
}

func TestExtractLines_Empty(t *testing.T) {
	if got := ExtractLines("no timestamps here\nat all"); len(got) != 0 {
		t.Errorf("expected no results, got %+v", got)
	}
}

func TestFormatSeconds(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{154, "2:34"},
		{5025, "1:23:45"},
		{0, "0:00"},
		{59, "0:59"},
		{3600, "1:00:00"},
		{36061, "10:01:01"},
	}

	for _, tc := range cases {
		if got := FormatSeconds(tc.in); got != tc.want {
			t.Errorf("FormatSeconds(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, secs := range []int{0, 59, 60, 154, 3599, 3600, 5025} {
		if got := ParseClock(FormatSeconds(secs)); got != secs {
			t.Errorf("round trip %d -> %q -> %d", secs, FormatSeconds(secs), got)
		}
	}
}
