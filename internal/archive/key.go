package archive

import (
	"strings"
	"time"
)

// Prefix is the fixed key prefix all snapshot archives live under. External
// tooling lists archives by this prefix, so it is a compatibility contract.
const Prefix = "backups/"

// ContentType is the MIME type archives are uploaded with.
const ContentType = "application/gzip"

// CompressedSuffix marks a gzip-compressed archive. Detection is by suffix
// convention, not content sniffing.
const CompressedSuffix = ".gz"

// Key returns the date-partitioned archive key for a snapshot taken at t:
// backups/<YYYY-MM-DD>/<date>_<HH-MM-SS>_full.json.gz. Keys sort
// lexicographically in time order within a day.
func Key(t time.Time) string {
	t = t.UTC()
	date := t.Format("2006-01-02")
	clock := t.Format("15-04-05")
	return Prefix + date + "/" + date + "_" + clock + "_full.json" + CompressedSuffix
}

// IsCompressed reports whether the key names a gzip-compressed archive.
func IsCompressed(key string) bool {
	return strings.HasSuffix(key, CompressedSuffix)
}
