// Package pager computes pagination controls shared by the web pages and the bot keyboards.
package pager

const (
	ActionInit = "init"
	ActionPrev = "prev"
	ActionNext = "next"
	ActionEnd  = "end"

	// laps shown on each side of the current lap
	lapSpan = 5
)

type Kind int

const (
	KindFirst Kind = iota
	KindPrev
	KindEllipsis
	KindPage
	KindNext
	KindLast
)

type Item struct {
	Kind   Kind
	Page   int
	Active bool
}

// LapWindow returns the controls for a lap pager: first, prev, a leading
// ellipsis when lap > 6, up to five previous laps, the current lap, up to five
// next laps, a trailing ellipsis when lap < total-5, next and last. current is
// clamped to [1, total]. An empty session has no controls.
func LapWindow(current, total int) []Item {
	if total < 1 {
		return nil
	}
	current = Clamp(current, 1, total)

	items := []Item{
		{Kind: KindFirst, Page: 1, Active: current == 1},
		{Kind: KindPrev, Page: Clamp(current-1, 1, total)},
	}
	if current > lapSpan+1 {
		items = append(items, Item{Kind: KindEllipsis})
	}
	for lap := max(1, current-lapSpan); lap <= min(total, current+lapSpan); lap++ {
		items = append(items, Item{Kind: KindPage, Page: lap, Active: lap == current})
	}
	if current < total-lapSpan {
		items = append(items, Item{Kind: KindEllipsis})
	}
	items = append(items,
		Item{Kind: KindNext, Page: Clamp(current+1, 1, total)},
		Item{Kind: KindLast, Page: total, Active: current == total},
	)
	return items
}

func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PageCount returns the number of pages needed for n items.
func PageCount(n, perPage int) int {
	if perPage <= 0 || n <= 0 {
		return 1
	}
	return (n + perPage - 1) / perPage
}

// Navigate resolves a pager action on zero based pages. ok is false when the
// action would leave the valid range.
func Navigate(action string, current, maxPages int) (page int, ok bool) {
	switch action {
	case ActionInit:
		return 0, true
	case ActionPrev:
		if current-1 >= 0 {
			return current - 1, true
		}
	case ActionNext:
		if current+1 < maxPages {
			return current + 1, true
		}
	case ActionEnd:
		return max(0, maxPages-1), true
	}
	return current, false
}

// Range returns the slice bounds of a zero based page.
func Range(page, perPage, n int) (from, to int) {
	from = Clamp(page*perPage, 0, n)
	to = Clamp(from+perPage, 0, n)
	return from, to
}
