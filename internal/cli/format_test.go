package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{66.666, "$66.67"},
		{1234.5, "$1,234.50"},
		{10_000_000, "$10,000,000.00"},
		{-3.2, "-$3.20"},
		{-0.001, "$0.00"},
	}
	for _, c := range cases {
		if got := FormatMoney(c.in); got != c.want {
			t.Fatalf("FormatMoney(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatSignedMoney(t *testing.T) {
	if got := FormatSignedMoney(12); got != "+$12.00" {
		t.Fatalf("FormatSignedMoney(12) = %q", got)
	}
	if got := FormatSignedMoney(-12); got != "-$12.00" {
		t.Fatalf("FormatSignedMoney(-12) = %q", got)
	}
}

func TestFormatDays(t *testing.T) {
	cases := map[float64]string{
		0:    "0 days",
		1:    "1 day",
		15:   "15 days",
		89.6: "89.6 days",
	}
	for in, want := range cases {
		if got := FormatDays(in); got != want {
			t.Fatalf("FormatDays(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestShortID(t *testing.T) {
	if got := ShortID("0b7c6f3e-1111-2222-3333-444455556666"); got != "0b7c6f3e" {
		t.Fatalf("ShortID = %q", got)
	}
	if got := ShortID("abc"); got != "abc" {
		t.Fatalf("ShortID(short) = %q", got)
	}
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Name", "Amount"},
		Rows: [][]string{
			{"Rent", "$1,500.00"},
			Separator,
			{"Total", "$1,540.00"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7:\n%s", len(lines), out)
	}
	width := lipgloss.Width(lines[0])
	for i, line := range lines {
		if w := lipgloss.Width(line); w != width {
			t.Fatalf("line %d width = %d, want %d:\n%s", i, w, width, out)
		}
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{0, 5, 10, -4}); got != "▁▄█▁" {
		t.Fatalf("RenderSparkline = %q", got)
	}
	if got := RenderSparkline(nil); got != "" {
		t.Fatalf("RenderSparkline(nil) = %q", got)
	}
}

func TestRenderProgressBar(t *testing.T) {
	if got := RenderProgressBar(10, 0, 20); got != "" {
		t.Fatalf("zero allowance rendered %q", got)
	}
	got := RenderProgressBar(50, 100, 20)
	if !strings.Contains(got, "$50.00 of $100.00") {
		t.Fatalf("RenderProgressBar = %q", got)
	}
	if w := strings.Count(got, "█") + strings.Count(got, "░"); w != 20 {
		t.Fatalf("bar has %d cells, want 20", w)
	}
}
