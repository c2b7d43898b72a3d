package core

import (
	"reflect"
	"testing"

	"github.com/dmarkhas/roomcast/internal/store"
)

func msg(content, date string) store.Message {
	return store.Message{Content: content, From: "alice", To: "tech", Date: date}
}

func groupDates(groups []DateGroup) []string {
	dates := make([]string, 0, len(groups))
	for _, g := range groups {
		dates = append(dates, g.Date)
	}
	return dates
}

func TestAggregateGroupsByExactDateString(t *testing.T) {
	msgs := []store.Message{
		msg("a", "3/1/2024"),
		msg("b", "3/1/2024"),
		msg("c", "03/1/2024"), // different formatting, distinct group
	}

	groups := AggregateHistory(msgs, LegacyDateOrder)

	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d: %v", len(groups), groupDates(groups))
	}
	for _, g := range groups {
		switch g.Date {
		case "3/1/2024":
			if len(g.Messages) != 2 {
				t.Errorf("expected 2 messages in %q, got %d", g.Date, len(g.Messages))
			}
		case "03/1/2024":
			if len(g.Messages) != 1 {
				t.Errorf("expected 1 message in %q, got %d", g.Date, len(g.Messages))
			}
		default:
			t.Errorf("unexpected group %q", g.Date)
		}
	}
}

func TestLegacyOrderAscendingAcrossYears(t *testing.T) {
	msgs := []store.Message{
		msg("newer", "1/5/2024"),
		msg("older", "12/25/2023"),
	}

	groups := AggregateHistory(msgs, LegacyDateOrder)

	// Keys are "202415" and "20231225"; the string comparison happens to
	// agree with the calendar here.
	want := []string{"12/25/2023", "1/5/2024"}
	if got := groupDates(groups); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected order %v, got %v", want, got)
	}
}

func TestLegacyOrderIsLexicographicNotCalendar(t *testing.T) {
	msgs := []store.Message{
		msg("feb", "2/1/2024"),
		msg("oct", "10/1/2024"),
	}

	groups := AggregateHistory(msgs, LegacyDateOrder)

	// "2024101" < "202421" as strings, so October sorts before February.
	// This is the documented behavior, not a calendar-correct one.
	want := []string{"10/1/2024", "2/1/2024"}
	if got := groupDates(groups); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected documented lexicographic order %v, got %v", want, got)
	}
}

func TestLegacyComparatorNeverReturnsZero(t *testing.T) {
	if got := LegacyDateOrder("3/1/2024", "3/1/2024"); got != 1 {
		t.Fatalf("expected 1 for equal dates, got %d", got)
	}
}

func TestCalendarOrderIsChronological(t *testing.T) {
	msgs := []store.Message{
		msg("oct", "10/1/2024"),
		msg("feb", "2/1/2024"),
	}

	groups := AggregateHistory(msgs, CalendarDateOrder)

	want := []string{"2/1/2024", "10/1/2024"}
	if got := groupDates(groups); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected order %v, got %v", want, got)
	}
}

func TestCalendarOrderFallsBackOnUnparseableDates(t *testing.T) {
	if got := CalendarDateOrder("yesterday", "12/25/2023"); got != LegacyDateOrder("yesterday", "12/25/2023") {
		t.Fatalf("expected fallback to legacy comparison, got %d", got)
	}
}

func TestAggregateKeepsInsertionOrderWithinGroup(t *testing.T) {
	msgs := []store.Message{
		msg("first", "3/1/2024"),
		msg("second", "3/1/2024"),
		msg("third", "3/1/2024"),
	}

	groups := AggregateHistory(msgs, LegacyDateOrder)

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	for i, want := range []string{"first", "second", "third"} {
		if groups[0].Messages[i].Content != want {
			t.Errorf("position %d: expected %q, got %q", i, want, groups[0].Messages[i].Content)
		}
	}
}

func TestAggregateIsIdempotent(t *testing.T) {
	msgs := []store.Message{
		msg("a", "1/5/2024"),
		msg("b", "12/25/2023"),
		msg("c", "1/5/2024"),
	}

	first := AggregateHistory(msgs, LegacyDateOrder)
	second := AggregateHistory(msgs, LegacyDateOrder)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical grouping and ordering, got %v then %v", first, second)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	groups := AggregateHistory(nil, LegacyDateOrder)
	if len(groups) != 0 {
		t.Fatalf("expected no groups, got %d", len(groups))
	}
}
