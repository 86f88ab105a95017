package geolib

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// UsageStats tracks how often a chain member was asked and how often
// it has succeeded.
type UsageStats struct {
	Name string

	clock        clockwork.Clock
	mutex        sync.Mutex
	lastUsed     time.Time
	lastSuccess  time.Time
	successCount uint64
	failureCount uint64
}

func (u *UsageStats) Used(err error) {
	now := u.now()

	u.mutex.Lock()
	defer u.mutex.Unlock()

	u.lastUsed = now

	if err == nil {
		u.successCount++
		u.lastSuccess = now
	} else {
		u.failureCount++
	}
}

func (u *UsageStats) SuccessCount() uint64 {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	return u.successCount
}

func (u *UsageStats) FailureCount() uint64 {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	return u.failureCount
}

func (u *UsageStats) now() time.Time {
	if u.clock == nil {
		return time.Now()
	}

	return u.clock.Now()
}

func (u *UsageStats) MarshalJSON() ([]byte, error) {
	var lastUsedTime, lastSuccessTime int64

	u.mutex.Lock()

	if !u.lastUsed.IsZero() {
		lastUsedTime = u.lastUsed.Unix()
	}

	if !u.lastSuccess.IsZero() {
		lastSuccessTime = u.lastSuccess.Unix()
	}

	rawStruct := struct {
		Name         string `json:"name"`
		LastUsed     int64  `json:"last_used"`
		LastSuccess  int64  `json:"last_success"`
		SuccessCount uint64 `json:"success_count"`
		FailureCount uint64 `json:"failure_count"`
	}{
		Name:         u.Name,
		LastUsed:     lastUsedTime,
		LastSuccess:  lastSuccessTime,
		SuccessCount: u.successCount,
		FailureCount: u.failureCount,
	}

	u.mutex.Unlock()

	return json.Marshal(&rawStruct)
}

// NewUsageStats returns stats which take time from a given clock.
func NewUsageStats(name string, clock clockwork.Clock) *UsageStats {
	return &UsageStats{
		Name:  name,
		clock: clock,
	}
}
