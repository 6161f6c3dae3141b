package models

import (
	"sort"
	"time"
)

// UploadRecord tracks one ingested workbook: where its blob lives, which
// year-months it contributed rows to, and whether it has been fully parsed.
//
// Lifecycle: created (or updated, if re-ingesting an already-seen file) by
// the Ingestor at the end of a successful run. delete_month shrinks
// MonthsCovered and removes the record (and its blob) once the set is
// empty, per §3's lifecycle note.
type UploadRecord struct {
	BaseModel

	// FileKey identifies "the same workbook" across re-uploads: a SHA-256
	// hex digest of the original file name. FilePath can't serve this role
	// since the Ingestor gives every persisted blob a fresh, timestamped
	// disk name (§5's shared-resource policy) — FileKey is what UploadUpsert
	// actually keys its upsert on.
	FileKey        string     `gorm:"uniqueIndex;not null" json:"file_key"`
	FileName       string     `gorm:"not null" json:"file_name"`
	FilePath       string     `gorm:"not null" json:"file_path"`
	FileSize       int64      `json:"file_size"`
	UploadedAt     time.Time  `json:"uploaded_at"`
	MonthsCovered  MonthSet   `gorm:"type:text;serializer:json" json:"months_covered"`
	Parsed         bool       `json:"parsed"`
	LastAnalysedAt *time.Time `json:"last_analysed_at,omitempty"`
}

func (UploadRecord) TableName() string { return "upload_records" }

// MonthSet is a JSON-serialised set of "YYYY-MM" tags. Represented as a
// sorted slice rather than a map so the serialised form is stable and
// diff-friendly.
type MonthSet []string

// Contains reports whether m is present in the set.
func (s MonthSet) Contains(m string) bool {
	for _, v := range s {
		if v == m {
			return true
		}
	}
	return false
}

// Union returns a new, sorted MonthSet containing every month in either set.
func (s MonthSet) Union(other MonthSet) MonthSet {
	seen := make(map[string]struct{}, len(s)+len(other))
	for _, v := range s {
		seen[v] = struct{}{}
	}
	for _, v := range other {
		seen[v] = struct{}{}
	}
	return sortedKeys(seen)
}

// Without returns a new, sorted MonthSet with m removed.
func (s MonthSet) Without(m string) MonthSet {
	out := make(MonthSet, 0, len(s))
	for _, v := range s {
		if v != m {
			out = append(out, v)
		}
	}
	return out
}

func sortedKeys(m map[string]struct{}) MonthSet {
	out := make(MonthSet, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
