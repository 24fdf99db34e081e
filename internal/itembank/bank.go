package itembank

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// ErrItemNotFound is returned when an item id is not in the bank.
var ErrItemNotFound = errors.New("item not found")

// Bank is an immutable, versioned snapshot of calibrated items with
// precomputed indices. All methods are safe for concurrent use.
type Bank struct {
	version   string
	items     []Item
	byID      map[string]*Item
	bySection map[Section][]Item
	sections  []Section
}

// New validates items and builds a bank snapshot. The slice is copied, so
// later changes by the caller do not leak into the snapshot.
func New(version string, items []Item) (*Bank, error) {
	if err := validateVersion(version); err != nil {
		return nil, err
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}

	b := &Bank{
		version:   version,
		items:     make([]Item, len(items)),
		byID:      make(map[string]*Item, len(items)),
		bySection: make(map[Section][]Item),
	}
	for i, it := range items {
		it.Content.Options = slices.Clone(it.Content.Options)
		it.Hints = slices.Clone(it.Hints)
		b.items[i] = it
	}
	sort.Slice(b.items, func(i, j int) bool { return b.items[i].ID < b.items[j].ID })

	for i := range b.items {
		it := &b.items[i]
		b.byID[it.ID] = it
		if _, ok := b.bySection[it.Section]; !ok {
			b.sections = append(b.sections, it.Section)
		}
		b.bySection[it.Section] = append(b.bySection[it.Section], *it)
	}
	sortSections(b.sections)

	return b, nil
}

// sortSections orders built-in sections first in display order, then any
// custom sections alphabetically.
func sortSections(ss []Section) {
	order := make(map[Section]int)
	for i, s := range AllSections() {
		order[s] = i
	}
	sort.Slice(ss, func(i, j int) bool {
		oi, iok := order[ss[i]]
		oj, jok := order[ss[j]]
		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return ss[i] < ss[j]
		}
	})
}

// Version returns the semantic version of the snapshot.
func (b *Bank) Version() string { return b.version }

// Len returns the number of items in the bank.
func (b *Bank) Len() int { return len(b.items) }

// Sections returns the sections that have at least one item.
func (b *Bank) Sections() []Section {
	return slices.Clone(b.sections)
}

// HasSection reports whether the bank holds items for s.
func (b *Bank) HasSection(s Section) bool {
	_, ok := b.bySection[s]
	return ok
}

// GetItem returns an item by ID.
func (b *Bank) GetItem(id string) (Item, error) {
	it, ok := b.byID[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: %q", ErrItemNotFound, id)
	}
	return *it, nil
}

// AllItems returns every item ordered by id.
func (b *Bank) AllItems() []Item {
	return slices.Clone(b.items)
}

// GetCandidateItems returns the items of section whose ids are not in
// exclude, ordered by id.
func (b *Bank) GetCandidateItems(section Section, exclude map[string]bool) []Item {
	items := b.bySection[section]
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if exclude[it.ID] {
			continue
		}
		out = append(out, it)
	}
	return out
}

// SectionSize returns the number of items calibrated for section.
func (b *Bank) SectionSize(section Section) int {
	return len(b.bySection[section])
}
