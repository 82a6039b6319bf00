package diff

import (
	"fmt"
	"strings"
	"testing"
)

func TestUnified(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		want     string
	}{
		{
			name: "equal",
			old:  "a\nb\n",
			new:  "a\nb\n",
			want: "",
		},
		{
			name: "crlf only",
			old:  "a\r\nb\r\n",
			new:  "a\nb\n",
			want: "",
		},
		{
			name: "one line changed",
			old:  "x\ny\n",
			new:  "x\nz\n",
			want: "--- a\n+++ b\n@@ -1,2 +1,2 @@\n x\n-y\n+z\n",
		},
		{
			name: "single line",
			old:  "Switch   A\n",
			new:  "Switch\tA\n",
			want: "--- a\n+++ b\n@@ -1 +1 @@\n-Switch   A\n+Switch\tA\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Unified("a", "b", tt.old, tt.new); got != tt.want {
				t.Errorf("Unified =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestUnifiedSeparateHunks(t *testing.T) {
	var oldLines, newLines []string
	for i := 0; i < 20; i++ {
		line := fmt.Sprintf("line %d", i)
		oldLines = append(oldLines, line)
		if i == 2 || i == 17 {
			line += " changed"
		}
		newLines = append(newLines, line)
	}
	got := Unified("a", "b", strings.Join(oldLines, "\n")+"\n", strings.Join(newLines, "\n")+"\n")

	if n := strings.Count(got, "@@ -"); n != 2 {
		t.Fatalf("got %d hunks, want 2:\n%s", n, got)
	}
	for _, want := range []string{"-line 2\n+line 2 changed\n", "-line 17\n+line 17 changed\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("diff missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, " line 10\n") {
		t.Errorf("unchanged middle lines should not be shown:\n%s", got)
	}
}

func TestUnifiedFromEmpty(t *testing.T) {
	got := Unified("a", "b", "", "p\nq\n")
	if !strings.HasPrefix(got, "--- a\n+++ b\n") || !strings.HasSuffix(got, "+p\n+q\n") {
		t.Errorf("Unified =\n%s", got)
	}
}

func TestUnifiedLargeInput(t *testing.T) {
	var oldText, newText strings.Builder
	for i := 0; i < 20000; i++ {
		fmt.Fprintf(&oldText, "Switch   Item_%d\n", i)
		if i%5000 == 0 {
			fmt.Fprintf(&newText, "Switch\tItem_%d\n", i)
		} else {
			fmt.Fprintf(&newText, "Switch   Item_%d\n", i)
		}
	}
	got := Unified("a", "b", oldText.String(), newText.String())
	if n := strings.Count(got, "\n+Switch\t"); n != 4 {
		t.Errorf("got %d changed lines, want 4", n)
	}
}

func TestUnifiedMergesCloseHunks(t *testing.T) {
	old := "a\nb\nc\nd\ne\nf\ng\n"
	new := "A\nb\nc\nd\ne\nf\nG\n"
	got := Unified("a", "b", old, new)
	if n := strings.Count(got, "@@ -"); n != 1 {
		t.Errorf("got %d hunks, want 1:\n%s", n, got)
	}
}

func TestWrite(t *testing.T) {
	d := Unified("a", "b", "x\n", "y\n")

	var plain strings.Builder
	if err := Write(&plain, d, false); err != nil {
		t.Fatal(err)
	}
	if plain.String() != d {
		t.Errorf("plain Write = %q", plain.String())
	}

	var colored strings.Builder
	if err := Write(&colored, d, true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Errorf("colored output has no escape codes: %q", colored.String())
	}
	if !strings.Contains(colored.String(), "+y") && !strings.Contains(colored.String(), "y") {
		t.Errorf("colored output lost text: %q", colored.String())
	}
}
