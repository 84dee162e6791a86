package clipboard

import (
	"errors"
	"testing"
)

func TestWriteAll_Empty(t *testing.T) {
	if err := WriteAll(""); !errors.Is(err, ErrEmpty) {
		t.Fatalf("WriteAll(\"\") = %v; want ErrEmpty", err)
	}
}

func TestWriteAll_RoundTrip(t *testing.T) {
	if !Available() {
		if err := WriteAll("x"); !errors.Is(err, ErrUnsupported) {
			t.Fatalf("WriteAll without clipboard = %v; want ErrUnsupported", err)
		}
		t.Skip("pas de presse-papier système")
	}
	const text = "[00:00.000 --> 00:01.000] 你好"
	if err := WriteAll(text); err != nil {
		t.Skipf("presse-papier inutilisable : %v", err)
	}
	if !Equals(text) {
		t.Errorf("clipboard does not contain %q", text)
	}
}
