package testutil

import "time"

// WithStandardChildren adds a small dataset over two parents:
//
//	parent 1: gear (active), cog (inactive), spring (archived, last week)
//	parent 2: bolt (active, yesterday), Gearbox (active, last week)
func (b *Builder) WithStandardChildren() *Builder {
	now := time.Now()
	yesterday := now.Add(-24 * time.Hour)
	lastWeek := now.Add(-7 * 24 * time.Hour)

	return b.
		WithChild(1, "gear").
		WithChild(1, "cog", Status("inactive")).
		WithChild(1, "spring", Status("archived"), CreatedAt(lastWeek)).
		WithChild(2, "bolt", CreatedAt(yesterday)).
		WithChild(2, "Gearbox", CreatedAt(lastWeek), UpdatedAt(now))
}
