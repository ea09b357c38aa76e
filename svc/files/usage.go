package files

import (
	"strings"
	"time"

	"github.com/dmitrymomot/filevault/pkg/file"
)

// StorageQuota is the per-account storage allowance (2 GiB).
const StorageQuota int64 = 2 << 30

// UsageBucket is the total size and most recent change of one file type.
type UsageBucket struct {
	Size       int64      `json:"size"`
	LatestDate *time.Time `json:"latestDate"`
}

// UsageSummary is the storage usage of an account broken down by type.
type UsageSummary struct {
	Image    UsageBucket `json:"image"`
	Document UsageBucket `json:"document"`
	Video    UsageBucket `json:"video"`
	Audio    UsageBucket `json:"audio"`
	Other    UsageBucket `json:"other"`
	Used     int64       `json:"used"`
	All      int64       `json:"all"`
}

// EmptyUsage is the summary of an account without files.
func EmptyUsage() UsageSummary {
	return UsageSummary{All: StorageQuota}
}

// Bucket returns the bucket for a normalized type.
func (u *UsageSummary) Bucket(t file.Type) *UsageBucket {
	switch t {
	case file.TypeImage:
		return &u.Image
	case file.TypeDocument:
		return &u.Document
	case file.TypeVideo:
		return &u.Video
	case file.TypeAudio:
		return &u.Audio
	default:
		return &u.Other
	}
}

// NormalizeType maps a stored type name to one of the known types,
// ignoring case. Anything unknown is file.TypeOther.
func NormalizeType(t string) file.Type {
	switch v := file.Type(strings.ToLower(strings.TrimSpace(t))); v {
	case file.TypeImage, file.TypeDocument, file.TypeVideo, file.TypeAudio:
		return v
	default:
		return file.TypeOther
	}
}

// ComputeUsage sums file sizes per type and tracks the latest change per type.
func ComputeUsage(files []*File) UsageSummary {
	summary := EmptyUsage()
	for _, f := range files {
		if f == nil {
			continue
		}
		size := int64(f.Size)
		b := summary.Bucket(NormalizeType(f.Type))
		b.Size += size
		summary.Used += size

		date := f.LatestDate()
		if date.IsZero() {
			continue
		}
		if b.LatestDate == nil || date.After(*b.LatestDate) {
			d := date
			b.LatestDate = &d
		}
	}
	return summary
}
