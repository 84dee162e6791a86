package transcript

import (
	"math"
	"testing"

	"github.com/patrickprogramme/scriptratio/pkg/model"
)

const eps = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestExtractLineText(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   string
		wantOK bool
	}{
		{"regular line", "[00:00.000 --> 00:02.000] 你好", "你好", true},
		{"content is trimmed", "[00:00.000 --> 00:02.000]   你好  ", "你好", true},
		{"empty content", "[00:00.000 --> 00:02.000] ", "", true},
		{"last bracket wins", "[00:00.000 --> 00:02.000] [music] hello", "hello", true},
		{"no prefix", "你好", "", false},
		{"missing space after bracket", "[00:00.000 --> 00:02.000]你好", "", false},
		{"prefix not at start", " [00:00.000 --> 00:02.000] 你好", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractLineText(tc.line)
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("ExtractLineText(%q) = (%q, %v); want (%q, %v)", tc.line, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestAggregate_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		segs        []model.Segment
		wantZhRatio float64
		wantJaRatio float64
		wantZhText  string
		wantJaText  string
		wantCounts  Counts
	}{
		{
			name:        "chinese only",
			segs:        []model.Segment{{Start: 0, End: 2, Text: "你好"}},
			wantZhRatio: 100,
			wantZhText:  "你好",
			wantCounts:  Counts{Chinese: 2},
		},
		{
			name:        "japanese only",
			segs:        []model.Segment{{Start: 0, End: 1, Text: "こんにちは"}},
			wantJaRatio: 100,
			wantJaText:  "こんにちは",
			wantCounts:  Counts{Japanese: 5},
		},
		{
			name: "mixed with latin",
			segs: []model.Segment{
				{Start: 0, End: 1, Text: "你好"},
				{Start: 1, End: 2, Text: "こんにちは world"},
			},
			wantZhRatio: 2.0 / 7.0 * 100,
			wantJaRatio: 5.0 / 7.0 * 100,
			wantZhText:  "你好",
			wantJaText:  "こんにちは",
			wantCounts:  Counts{Chinese: 2, Japanese: 5},
		},
		{
			name: "per-line fragments joined by a space",
			segs: []model.Segment{
				{Start: 0, End: 1, Text: "日本語のテキスト"},
				{Start: 1, End: 2, Text: "abc"},
				{Start: 2, End: 3, Text: "中文和カナ"},
			},
			wantZhRatio: 6.0 / 13.0 * 100,
			wantJaRatio: 7.0 / 13.0 * 100,
			wantZhText:  "日本語 中文和",
			wantJaText:  "のテキスト カナ",
			wantCounts:  Counts{Chinese: 6, Japanese: 7},
		},
		{
			name: "latin only",
			segs: []model.Segment{{Start: 0, End: 1, Text: "hello world 123 !"}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Aggregate(FormatSegments(tc.segs))
			if !almostEqual(got.ChineseRatio, tc.wantZhRatio) || !almostEqual(got.JapaneseRatio, tc.wantJaRatio) {
				t.Errorf("ratios = (%v, %v); want (%v, %v)", got.ChineseRatio, got.JapaneseRatio, tc.wantZhRatio, tc.wantJaRatio)
			}
			if got.ChineseText != tc.wantZhText {
				t.Errorf("ChineseText = %q; want %q", got.ChineseText, tc.wantZhText)
			}
			if got.JapaneseText != tc.wantJaText {
				t.Errorf("JapaneseText = %q; want %q", got.JapaneseText, tc.wantJaText)
			}
			if got.Counts != tc.wantCounts {
				t.Errorf("Counts = %+v; want %+v", got.Counts, tc.wantCounts)
			}
		})
	}
}

func TestAggregate_RatiosSumTo100(t *testing.T) {
	inputs := []string{"你好こんにちは", "一あ", "漢字漢字漢字かな", "ㇰㇱ中"}
	for _, in := range inputs {
		c := Aggregate(FormatLine(model.Segment{Start: 0, End: 1, Text: in}))
		if c.Counts.Total() == 0 {
			t.Fatalf("%q: expected classified characters", in)
		}
		if sum := c.ChineseRatio + c.JapaneseRatio; math.Abs(sum-100) > 1e-9 {
			t.Errorf("%q: ratios sum to %v", in, sum)
		}
	}
}

func TestAggregate_EmptyAndMalformed(t *testing.T) {
	for _, in := range []string{"", "   \n\n  ", "garbage line\nanother 你好", "\n\n"} {
		got := Aggregate(in)
		if got.ChineseRatio != 0 || got.JapaneseRatio != 0 {
			t.Errorf("Aggregate(%q) ratios = (%v, %v); want 0", in, got.ChineseRatio, got.JapaneseRatio)
		}
		if got.ChineseText != "" || got.JapaneseText != "" {
			t.Errorf("Aggregate(%q) texts = (%q, %q); want empty", in, got.ChineseText, got.JapaneseText)
		}
	}
}

func TestAggregate_SkipsMalformedLinesOnly(t *testing.T) {
	in := "[00:00.000 --> 00:01.000] 你好\nnot a transcript line 日本\n[00:01.000 --> 00:02.000] かな"
	got := Aggregate(in)
	if got.Counts != (Counts{Chinese: 2, Japanese: 2}) {
		t.Fatalf("Counts = %+v", got.Counts)
	}
	if got.ChineseText != "你好" || got.JapaneseText != "かな" {
		t.Fatalf("texts = (%q, %q)", got.ChineseText, got.JapaneseText)
	}
}

func TestFormatThenExtract_RoundTrip(t *testing.T) {
	segs := []model.Segment{
		{Start: 0, End: 1.5, Text: "你好"},
		{Start: 1.5, End: 70.25, Text: "こんにちは world"},
		{Start: 70.25, End: 71, Text: "  padded  "},
		{Start: 71, End: 72, Text: ""},
	}
	lines := splitLines(FormatSegments(segs))
	if len(lines) != len(segs) {
		t.Fatalf("got %d lines; want %d", len(lines), len(segs))
	}
	for i, line := range lines {
		got, ok := ExtractLineText(line)
		if !ok {
			t.Fatalf("line %d not recognised: %q", i, line)
		}
		if want := trimSpace(segs[i].Text); got != want {
			t.Errorf("line %d: got %q; want %q", i, got, want)
		}
	}
}

func TestAggregateSegments_MatchesRoundTrip(t *testing.T) {
	segs := []model.Segment{
		{Start: 0, End: 1, Text: "你好"},
		{Start: 1, End: 2, Text: "こんにちは world"},
		{Start: 2, End: 3, Text: "中文とカタカナ"},
	}
	direct := AggregateSegments(segs)
	viaText := Aggregate(FormatSegments(segs))
	if direct != viaText {
		t.Fatalf("AggregateSegments = %+v; Aggregate = %+v", direct, viaText)
	}
	tr := NewTranscript("", "", segs)
	if tr.Composition() != viaText {
		t.Fatalf("Transcript.Composition differs from Aggregate")
	}
}
