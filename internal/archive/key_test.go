package archive

import (
	"testing"
	"time"
)

func TestKeyFormat(t *testing.T) {
	ts := time.Date(2026, 8, 24, 3, 15, 42, 0, time.UTC)

	got := Key(ts)
	want := "backups/2026-08-24/2026-08-24_03-15-42_full.json.gz"
	if got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}

func TestKeyNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	ts := time.Date(2026, 8, 24, 3, 15, 42, 0, loc)

	got := Key(ts)
	want := "backups/2026-08-23/2026-08-23_22-15-42_full.json.gz"
	if got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}

func TestKeysSortChronologically(t *testing.T) {
	earlier := Key(time.Date(2026, 8, 24, 3, 0, 0, 0, time.UTC))
	later := Key(time.Date(2026, 8, 24, 15, 30, 0, 0, time.UTC))
	if !(earlier < later) {
		t.Errorf("keys do not sort chronologically: %q >= %q", earlier, later)
	}
}

func TestIsCompressed(t *testing.T) {
	if !IsCompressed("backups/2026-08-24/2026-08-24_03-15-42_full.json.gz") {
		t.Error("IsCompressed(.gz) = false, want true")
	}
	if IsCompressed("snapshot.json") {
		t.Error("IsCompressed(.json) = true, want false")
	}
}
