package service

import "github.com/jvincentbasto/my-space/internal/model"

// DefaultQuota is the storage shown as available on the dashboard. It is not
// enforced.
const DefaultQuota int64 = 2 << 30

// Aggregate sums file sizes per type and tracks the latest update per type.
// The result does not depend on the order of files.
func Aggregate(files []model.File, quota int64) model.Usage {
	u := model.Usage{All: quota}

	for _, f := range files {
		b := u.Bucket(f.Type)

		b.Size += f.Size
		u.Used += f.Size

		if f.UpdatedAt.After(b.LatestDate) {
			b.LatestDate = f.UpdatedAt
		}
	}

	return u
}
