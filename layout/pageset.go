package layout

import "github.com/gogpu/pageview/page"

// PageSet describes Count consecutive page sets of Length pages each.
type PageSet struct {
	Count  int
	Length int
}

func singlePageSets(count int) []PageSet {
	if count == 0 {
		return nil
	}
	return []PageSet{{Count: count, Length: 1}}
}

// PageSets returns the partition of the pages into page sets, the groups
// of pages displayed together in non-continuous mode.
func (l *Layout) PageSets() []PageSet {
	return l.engine().pageSets(l.Count())
}

// PageSetCount returns the number of page sets.
func (l *Layout) PageSetCount() int {
	n := 0
	for _, ps := range l.PageSets() {
		n += ps.Count
	}
	return n
}

// PageSetOf returns the page set containing the page at index and the
// offset of the page in it. It returns -1, 0 if index is out of range.
func (l *Layout) PageSetOf(index int) (set, offset int) {
	if index < 0 {
		return -1, 0
	}
	start := 0
	for _, ps := range l.PageSets() {
		n := ps.Count * ps.Length
		if index < start+n {
			i := index - start
			return set + i/ps.Length, i % ps.Length
		}
		start += n
		set += ps.Count
	}
	return -1, 0
}

// PageIndex returns the index of the page at offset in page set set, the
// inverse of PageSetOf. It returns -1 if there is no such page.
func (l *Layout) PageIndex(set, offset int) int {
	start, length := l.pageSetRange(set)
	if length == 0 || offset < 0 || offset >= length {
		return -1
	}
	return start + offset
}

// pageSetRange returns the index of the first page of set and its length.
// The length is 0 if set does not exist.
func (l *Layout) pageSetRange(set int) (start, length int) {
	if set < 0 {
		return 0, 0
	}
	for _, ps := range l.PageSets() {
		if set < ps.Count {
			return start + set*ps.Length, ps.Length
		}
		set -= ps.Count
		start += ps.Count * ps.Length
	}
	return 0, 0
}

// clampPageSet keeps CurrentPageSet in range.
func (l *Layout) clampPageSet() {
	if n := l.PageSetCount(); l.CurrentPageSet >= n {
		l.CurrentPageSet = n - 1
	}
	if l.CurrentPageSet < 0 {
		l.CurrentPageSet = 0
	}
}

// DisplayPages returns the pages that are displayed: all pages in
// continuous mode, the pages of CurrentPageSet otherwise.
func (l *Layout) DisplayPages() []*page.Page {
	if l.ContinuousMode {
		return l.Pages
	}
	set := min(max(l.CurrentPageSet, 0), l.PageSetCount()-1)
	start, length := l.pageSetRange(set)
	return l.Pages[start : start+length]
}
