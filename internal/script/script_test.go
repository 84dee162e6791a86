package script

import "testing"

func TestClassify_Ranges(t *testing.T) {
	tests := []struct {
		name  string
		first rune
		last  rune
		want  Category
	}{
		{"cjk unified ideographs", 0x4E00, 0x9FFF, Chinese},
		{"hiragana and katakana", 0x3040, 0x30FF, Japanese},
		{"katakana phonetic extensions", 0x31F0, 0x31FF, Japanese},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for r := tc.first; r <= tc.last; r++ {
				if got := Classify(r); got != tc.want {
					t.Fatalf("Classify(%U) = %v; want %v", r, got, tc.want)
				}
			}
		})
	}
}

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		r    rune
		want Category
	}{
		{0x4DFF, None},
		{0x4E00, Chinese},
		{0x9FFF, Chinese},
		{0xA000, None},
		{0x303F, None},
		{0x3040, Japanese},
		{0x30FF, Japanese},
		{0x3100, None},
		{0x31EF, None},
		{0x31F0, Japanese},
		{0x31FF, Japanese},
		{0x3200, None},
	}
	for _, tc := range tests {
		if got := Classify(tc.r); got != tc.want {
			t.Errorf("Classify(%U) = %v; want %v", tc.r, got, tc.want)
		}
	}
}

func TestClassify_ASCIIIsNone(t *testing.T) {
	for r := rune(0); r < 0x80; r++ {
		if got := Classify(r); got != None {
			t.Fatalf("Classify(%q) = %v; want None", r, got)
		}
	}
}

func TestClassify_Samples(t *testing.T) {
	for _, r := range "你好世界漢字" {
		if Classify(r) != Chinese {
			t.Errorf("%q should be Chinese", r)
		}
	}
	for _, r := range "こんにちはカタカナー" {
		if Classify(r) != Japanese {
			t.Errorf("%q should be Japanese", r)
		}
	}
	for _, r := range "，。！？　한국어é" {
		if Classify(r) != None {
			t.Errorf("%q should be None", r)
		}
	}
}

func TestCategoryString(t *testing.T) {
	if Chinese.String() != "Chinese" || Japanese.String() != "Japanese" || None.String() != "None" {
		t.Fatalf("unexpected names: %s %s %s", Chinese, Japanese, None)
	}
}
