package sanitize

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"empty", "", 10, ""},
		{"trims and collapses", "  lower   back\n\tpain ", 0, "lower back pain"},
		{"strips tags", "<script>alert(1)</script>knee", 0, "alert(1) knee"},
		{"strips comments", "hip<!-- note -->pain", 0, "hip pain"},
		{"keeps comparisons", "pain is < 5 in the morning but > 7 at night", 0, "pain is < 5 in the morning but > 7 at night"},
		{"keeps arrows", "sitting -> standing <3", 0, "sitting -> standing <3"},
		{"strips control chars", "hip\x00\x07 pain", 0, "hip pain"},
		{"normalises fullwidth", "ＡＢＣ", 0, "ABC"},
		{"truncates runes", "ééééé", 3, "ééé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.input, tt.max); got != tt.want {
				t.Errorf("Text(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
			}
		})
	}
}

func TestText_LongInputIsBounded(t *testing.T) {
	t.Parallel()

	got := Text(strings.Repeat("a", 5000), 200)
	if n := utf8.RuneCountInString(got); n != 200 {
		t.Errorf("expected 200 runes, got %d", n)
	}
}

func TestEmail(t *testing.T) {
	t.Parallel()

	if got := Email("  Jane.Doe@Example.COM "); got != "jane.doe@example.com" {
		t.Errorf("Email() = %q", got)
	}
}

func TestValidEmail(t *testing.T) {
	t.Parallel()

	valid := []string{"a@b.co", "jane.doe+quiz@example.com", "x_y@sub.domain.org"}
	invalid := []string{"", "plainaddress", "@example.com", "a@b", "a b@example.com", "a@example.c"}

	for _, e := range valid {
		if !ValidEmail(e) {
			t.Errorf("expected %q to be valid", e)
		}
	}
	for _, e := range invalid {
		if ValidEmail(e) {
			t.Errorf("expected %q to be invalid", e)
		}
	}
}

func TestPhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
		valid bool
	}{
		{"(555) 123-4567", "5551234567", true},
		{"+1 555 123 4567", "+15551234567", true},
		{"555-1234", "5551234", false},
		{"1+555", "1555", false},
		{"+1234567890123456", "+1234567890123456", false},
	}

	for _, tt := range tests {
		got := Phone(tt.input)
		if got != tt.want {
			t.Errorf("Phone(%q) = %q, want %q", tt.input, got, tt.want)
		}
		if ValidPhone(got) != tt.valid {
			t.Errorf("ValidPhone(%q) = %v, want %v", got, !tt.valid, tt.valid)
		}
	}
}

func TestOptions(t *testing.T) {
	t.Parallel()

	got := Options([]string{" surgery", "", "massage", "surgery ", "  "})
	want := []string{"surgery", "massage"}

	if len(got) != len(want) {
		t.Fatalf("Options() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Options()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if Options(nil) != nil {
		t.Error("Options(nil) should be nil")
	}
}

func TestBlank(t *testing.T) {
	t.Parallel()

	if !Blank("  <b></b> \n") {
		t.Error("markup-only input should be blank")
	}
	if Blank("jaw pain") {
		t.Error("text should not be blank")
	}
}
