package version

import "testing"

func TestString(t *testing.T) {
	prev := Version
	Version = "1.2.3"
	defer func() { Version = prev }()

	want := "shsdataset 1.2.3 (git unknown, built unknown)"
	if got := String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
