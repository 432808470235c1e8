package service

import (
	"sort"

	"wellatlas/internal/domain"
)

// DayGroup is one calendar day of a site's timeline.
type DayGroup struct {
	Date    domain.Date    `json:"date"`
	Entries []domain.Entry `json:"entries"`
}

// GroupEntriesByDay partitions entries into UTC calendar days, days
// newest first, entries inside each day newest first. Output depends
// only on the entry set, not on input order.
func GroupEntriesByDay(entries []domain.Entry) []DayGroup {
	byDay := make(map[domain.Date][]domain.Entry)
	for _, e := range entries {
		d := e.Date()
		byDay[d] = append(byDay[d], e)
	}

	groups := make([]DayGroup, 0, len(byDay))
	for d, items := range byDay {
		sort.Slice(items, func(i, j int) bool {
			if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
				return items[i].CreatedAt.After(items[j].CreatedAt)
			}
			return items[i].ID > items[j].ID
		})
		groups = append(groups, DayGroup{Date: d, Entries: items})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Date > groups[j].Date
	})
	return groups
}
