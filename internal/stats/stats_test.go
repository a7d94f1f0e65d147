package stats

import (
	"strings"
	"testing"
	"time"
)

func TestReportFormatsAllFields(t *testing.T) {
	c := New()
	var buf strings.Builder
	c.Report(&buf, 12345, 10*time.Millisecond, 42)

	out := buf.String()
	if !strings.Contains(out, "12345 reductions") {
		t.Errorf("Report() missing reduction count: %q", out)
	}
	if !strings.Contains(out, "total eval time") {
		t.Errorf("Report() missing eval time line: %q", out)
	}
	if !strings.Contains(out, "total gc time") {
		t.Errorf("Report() missing gc time line: %q", out)
	}
	if !strings.Contains(out, "max stack depth --- 42") {
		t.Errorf("Report() missing max stack depth: %q", out)
	}
}
