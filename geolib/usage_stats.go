package geolib

import (
	"sync"
	"time"
)

// UsageStats collects per-variant statistics of provider calls. Cache
// hits never reach a provider so they are not counted here.
type UsageStats struct {
	Provider string
	Variant  string

	mutex         sync.Mutex
	lastUsed      time.Time
	successCount  uint64
	notFoundCount uint64
	failureCount  uint64
}

func (u *UsageStats) Used(err error) {
	now := time.Now()

	u.mutex.Lock()
	defer u.mutex.Unlock()

	u.lastUsed = now

	switch {
	case err == nil:
		u.successCount++
	case isAddressNotFound(err):
		u.notFoundCount++
	default:
		u.failureCount++
	}
}

func (u *UsageStats) MarshalJSON() ([]byte, error) {
	var lastUsedTime int64

	u.mutex.Lock()

	if !u.lastUsed.IsZero() {
		lastUsedTime = u.lastUsed.Unix()
	}

	rawStruct := struct {
		Provider      string `json:"provider"`
		Variant       string `json:"variant"`
		LastUsed      int64  `json:"last_used"`
		SuccessCount  uint64 `json:"success_count"`
		NotFoundCount uint64 `json:"not_found_count"`
		FailureCount  uint64 `json:"failure_count"`
	}{
		Provider:      u.Provider,
		Variant:       u.Variant,
		LastUsed:      lastUsedTime,
		SuccessCount:  u.successCount,
		NotFoundCount: u.notFoundCount,
		FailureCount:  u.failureCount,
	}

	u.mutex.Unlock()

	return json.Marshal(&rawStruct)
}
