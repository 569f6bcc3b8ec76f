package mosaic

import "testing"

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"after-tap", "after-tap"},
		{"frame.01", "frame.01"},
		{"has spaces", "has_spaces"},
		{"path/to/thing", "path_to_thing"},
		{"back\\slash", "back_slash"},
		{"special!@#$%", "special_____"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
		{"MixedCase123", "MixedCase123"},
	}
	for _, tt := range tests {
		got := sanitizeLabel(tt.in)
		if got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScreenshotQueueAppend(t *testing.T) {
	e := testEngine(nil)
	e.Screenshot("a")
	e.Screenshot("b")
	e.Screenshot("c")
	if len(e.screenshotQueue) != 3 {
		t.Fatalf("queue len = %d, want 3", len(e.screenshotQueue))
	}
	if e.screenshotQueue[0] != "a" || e.screenshotQueue[1] != "b" || e.screenshotQueue[2] != "c" {
		t.Errorf("queue = %v, want [a b c]", e.screenshotQueue)
	}
}

func TestScreenshotDirDefault(t *testing.T) {
	e := testEngine(nil)
	if e.ScreenshotDir != "screenshots" {
		t.Errorf("ScreenshotDir = %q, want %q", e.ScreenshotDir, "screenshots")
	}
}
