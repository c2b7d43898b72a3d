package core

import (
	"sort"
	"strings"
	"time"

	"github.com/dmarkhas/roomcast/internal/store"
)

// DateGroup is one entry of a room's history view: all messages whose
// date field matches Date exactly, in insertion order.
type DateGroup struct {
	Date     string
	Messages []store.Message
}

// DateComparator orders two M/D/Y date strings. Negative means a sorts
// before b. The aggregation never alters it, so corrected orderings can
// be swapped in without touching the grouping logic.
type DateComparator func(a, b string) int

// LegacyDateOrder compares dates by rewriting M/D/Y as Y+M+D through
// plain string concatenation and comparing the results as strings.
// Single-digit fields are not zero-padded, so "10/1/2024" sorts before
// "2/1/2024". It returns -1 or 1, never 0. This reproduces the relay's
// historical ordering exactly.
func LegacyDateOrder(a, b string) int {
	if legacyKey(a) < legacyKey(b) {
		return -1
	}
	return 1
}

func legacyKey(date string) string {
	parts := strings.Split(date, "/")
	if len(parts) < 3 {
		return date
	}
	return parts[2] + parts[0] + parts[1]
}

// CalendarDateOrder compares dates chronologically. Values that do not
// parse as M/D/Y fall back to LegacyDateOrder.
func CalendarDateOrder(a, b string) int {
	ta, errA := time.Parse("1/2/2006", a)
	tb, errB := time.Parse("1/2/2006", b)
	if errA != nil || errB != nil {
		return LegacyDateOrder(a, b)
	}
	return ta.Compare(tb)
}

// AggregateHistory groups msgs by the literal date string and orders the
// groups with cmp. Grouping key equality is exact string match, so
// inconsistent date formatting from senders produces distinct groups.
// The result is derived fresh on every call; nothing is cached.
func AggregateHistory(msgs []store.Message, cmp DateComparator) []DateGroup {
	if cmp == nil {
		cmp = LegacyDateOrder
	}

	index := make(map[string]int)
	groups := make([]DateGroup, 0)
	for _, m := range msgs {
		i, ok := index[m.Date]
		if !ok {
			i = len(groups)
			index[m.Date] = i
			groups = append(groups, DateGroup{Date: m.Date})
		}
		groups[i].Messages = append(groups[i].Messages, m)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return cmp(groups[i].Date, groups[j].Date) < 0
	})

	return groups
}
