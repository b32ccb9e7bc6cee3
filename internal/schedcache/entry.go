package schedcache

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/models"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/memcache"
)

// storedEntry is the on-disk form of a cache entry. The value travels with
// its usage metadata so a restored entry keeps its expiration schedule.
type storedEntry struct {
	Value      models.Schedule `json:"value"`
	CreatedAt  storedTime      `json:"created_at"`
	AccessedAt storedTime      `json:"accessed_at"`
	Hits       uint32          `json:"hits"`
}

// storedTime parses RFC 3339 timestamps, tolerating two legacy quirks:
// zone-bracketed suffixes like "+03:00[Europe/Moscow]" (trimmed at the
// first '[') and offsets written without a colon.
type storedTime struct {
	time.Time
}

func (t storedTime) MarshalJSON() ([]byte, error) {
	return t.Time.MarshalJSON()
}

func (t *storedTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if i := strings.IndexByte(s, '['); i >= 0 {
		s = s[:i]
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999-0700"} {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("parse cache timestamp %q", s)
}

func encodeEntry(entry memcache.Entry[models.Schedule]) ([]byte, error) {
	data, err := json.Marshal(storedEntry{
		Value:      entry.Value,
		CreatedAt:  storedTime{entry.CreatedAt},
		AccessedAt: storedTime{entry.AccessedAt},
		Hits:       entry.Hits,
	})
	if err != nil {
		return nil, fmt.Errorf("encode cache entry: %w", err)
	}
	return data, nil
}

// decodeEntry parses an on-disk record. Entries written before metadata was
// tracked may lack timestamps; those default to now.
func decodeEntry(data []byte) (memcache.Entry[models.Schedule], error) {
	var stored storedEntry
	if err := json.Unmarshal(data, &stored); err != nil {
		return memcache.Entry[models.Schedule]{}, fmt.Errorf("decode cache entry: %w", err)
	}
	now := time.Now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = storedTime{now}
	}
	if stored.AccessedAt.IsZero() {
		stored.AccessedAt = storedTime{now}
	}
	return memcache.Entry[models.Schedule]{
		Value:      stored.Value,
		CreatedAt:  stored.CreatedAt.Time,
		AccessedAt: stored.AccessedAt.Time,
		Hits:       stored.Hits,
	}, nil
}
