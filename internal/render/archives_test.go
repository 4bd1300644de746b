package render

import (
	"strings"
	"testing"
	"time"

	"github.com/classvault/classvault/internal/blob"
)

func TestRenderArchiveTableEmptyState(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	got := RenderArchiveTable(nil)
	if !strings.Contains(got, "No archives found.") {
		t.Errorf("empty table = %q, want empty-state message", got)
	}
	if !strings.Contains(got, "classvault snapshot") {
		t.Errorf("empty table = %q, want creation hint", got)
	}
}

func TestRenderArchiveTablePlain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	handles := []blob.Handle{
		{Key: "backups/2026-08-24/a.json.gz", SizeBytes: 2048, LastModified: time.Now().Add(-time.Hour)},
		{Key: "backups/2026-08-23/b.json.gz", SizeBytes: 1024, LastModified: time.Now().Add(-25 * time.Hour)},
	}

	got := RenderArchiveTable(handles)
	for _, want := range []string{"Key", "Size", "Age", "backups/2026-08-24/a.json.gz", "backups/2026-08-23/b.json.gz"} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q:\n%s", want, got)
		}
	}
	if lines := strings.Split(got, "\n"); len(lines) != 3 {
		t.Errorf("plain table has %d lines, want header plus 2 rows", len(lines))
	}
}
