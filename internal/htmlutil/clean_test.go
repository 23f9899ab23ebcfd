package htmlutil

import (
	"strings"
	"testing"
)

func TestToText(t *testing.T) {
	got := ToText("<p>Hello &amp; welcome</p>\r\n\r\n\r\n<p>  Second   </p>")
	if !strings.Contains(got, "Hello & welcome") {
		t.Errorf("entities not decoded: %q", got)
	}
	if strings.Contains(got, "<p>") {
		t.Errorf("tags not stripped: %q", got)
	}
	if strings.Contains(got, "\n\n\n") || strings.Contains(got, "\r") {
		t.Errorf("blank lines not collapsed: %q", got)
	}
	if !strings.HasSuffix(got, "Second") {
		t.Errorf("trailing text = %q", got)
	}
}

func TestToText_Empty(t *testing.T) {
	if got := ToText(""); got != "" {
		t.Errorf("ToText(\"\") = %q", got)
	}
}
