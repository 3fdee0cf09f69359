package domain

import (
	"fmt"
	"strings"
)

// QueueName is the logical namespace partitioning jobs into independent sets.
// The mapping to concrete Redis key segments is adapter configuration.
type QueueName string

const (
	QueueRegular   QueueName = "regular"
	QueueWatchlist QueueName = "watchlist"
)

// QueueNames lists every queue the dashboard observes, in display order.
var QueueNames = []QueueName{QueueRegular, QueueWatchlist}

// ParseQueueName validates a routing-layer queue segment.
func ParseQueueName(raw string) (QueueName, error) {
	switch QueueName(strings.ToLower(strings.TrimSpace(raw))) {
	case QueueRegular:
		return QueueRegular, nil
	case QueueWatchlist:
		return QueueWatchlist, nil
	default:
		return "", fmt.Errorf("%w: unknown queue %q", ErrInvalidInput, raw)
	}
}
