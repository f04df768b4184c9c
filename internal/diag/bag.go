package diag

import (
	"sort"
)

// Bag holds the live diagnostic set of one document.
type Bag struct {
	items []Diagnostic
	max   int
}

// NewBag creates a bag that keeps at most max diagnostics (0 = unlimited).
func NewBag(max int) *Bag {
	capacity := max
	if capacity <= 0 {
		capacity = 16
	}
	return &Bag{
		items: make([]Diagnostic, 0, capacity),
		max:   max,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Reset replaces the whole batch; used when a re-lint supersedes the old one.
func (b *Bag) Reset(items []Diagnostic) {
	b.items = b.items[:0]
	for _, d := range items {
		if !b.Add(d) {
			break
		}
	}
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns a copy of the diagnostics.
func (b *Bag) Items() []Diagnostic {
	return append([]Diagnostic(nil), b.items...)
}

// Remove drops diagnostics whose code matches one of targets exactly.
// Returns the number of removed diagnostics.
func (b *Bag) Remove(targets []Diagnostic) int {
	codes := make(map[Code]struct{}, len(targets))
	for _, t := range targets {
		codes[t.Code] = struct{}{}
	}
	return b.filter(func(d Diagnostic) bool {
		_, hit := codes[d.Code]
		return !hit
	})
}

// RemoveRules drops every diagnostic sharing a rule id with one of targets.
func (b *Bag) RemoveRules(targets []Diagnostic) (int, error) {
	rules := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		ruleID, err := t.RuleID()
		if err != nil {
			return 0, err
		}
		rules[ruleID] = struct{}{}
	}
	return b.filter(func(d Diagnostic) bool {
		ruleID, err := d.RuleID()
		if err != nil {
			return true
		}
		_, hit := rules[ruleID]
		return !hit
	}), nil
}

// RemoveFromLine drops every diagnostic starting at or after line.
func (b *Bag) RemoveFromLine(line int) int {
	return b.filter(func(d Diagnostic) bool {
		return d.StartLine() < line
	})
}

func (b *Bag) filter(keep func(Diagnostic) bool) int {
	kept := b.items[:0]
	removed := 0
	for _, d := range b.items {
		if keep(d) {
			kept = append(kept, d)
			continue
		}
		removed++
	}
	b.items = kept
	return removed
}

// Sort сортирует диагностики по: start, end, severity, code
// для стабильного и детерминированного порядка вывода.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Range.Start != dj.Range.Start {
			return less(di.Range.Start, dj.Range.Start)
		}
		if di.Range.End != dj.Range.End {
			return less(di.Range.End, dj.Range.End)
		}
		// Error (1) раньше Hint (4)
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		return di.Code < dj.Code
	})
}

// простая дедупликация (по Code)
func (b *Bag) Dedup() {
	seen := make(map[Code]bool, len(b.items))
	b.filter(func(d Diagnostic) bool {
		if seen[d.Code] {
			return false
		}
		seen[d.Code] = true
		return true
	})
}

func less(a, b Position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Character < b.Character
}
