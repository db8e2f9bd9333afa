package sidecar

import "time"

// deviceEpochOffsetSeconds converts between the host Unix epoch and the
// device's 1904-01-01 UTC epoch (spec §6 "Timestamps"), duplicated from
// pkg/database's unexported helper since sidecar parsing predates any
// MusicDB and shouldn't import the database package just for this.
const deviceEpochOffsetSeconds = 2082844800

func fromEpoch(v uint32) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(int64(v)-deviceEpochOffsetSeconds, 0).UTC()
}
