package redisqueue

import "strings"

// Key naming conventions of the queue backend. Every key lives under
// "<prefix>:<queue>:"; job hashes use a bare id as the final segment, while
// state lists, locks, and bookkeeping keys use reserved words or extra
// segments.

// auxiliarySegments are final key segments that never name a job hash.
var auxiliarySegments = map[string]struct{}{
	"waiting":       {},
	"wait":          {},
	"active":        {},
	"delayed":       {},
	"completed":     {},
	"failed":        {},
	"prioritized":   {},
	"paused":        {},
	"id":            {},
	"meta":          {},
	"events":        {},
	"marker":        {},
	"stalled-check": {},
	"repeat":        {},
	"metrics":       {},
	"pc":            {},
}

func queuePrefix(prefix, queueKey string) string {
	return prefix + ":" + queueKey + ":"
}

func stateListKey(prefix, queueKey, state string) string {
	return queuePrefix(prefix, queueKey) + state
}

func idCounterKey(prefix, queueKey string) string {
	return queuePrefix(prefix, queueKey) + "id"
}

func jobKey(prefix, queueKey, jobID string) string {
	return queuePrefix(prefix, queueKey) + jobID
}

// JobIDFromKey extracts the bare job id from a scanned key. It accepts only
// keys shaped "<prefix>:<queue>:<id>" with a single non-reserved final
// segment; lock keys ("...:<id>:lock") and state/bookkeeping keys report
// false.
func JobIDFromKey(prefix, queueKey, key string) (string, bool) {
	keyspace := queuePrefix(prefix, queueKey)
	if !strings.HasPrefix(key, keyspace) {
		return "", false
	}
	rest := key[len(keyspace):]
	if rest == "" || strings.Contains(rest, ":") {
		return "", false
	}
	if _, reserved := auxiliarySegments[rest]; reserved {
		return "", false
	}
	return rest, true
}
