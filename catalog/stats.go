// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

// Counts holds per-status entry counts.
type Counts struct {
	Finished   int `json:"finished"`
	Unfinished int `json:"unfinished"`
	Obsolete   int `json:"obsolete"`
	// Empty counts non-obsolete entries without any translated text.
	Empty int `json:"empty"`
}

// Active returns the number of entries that are not obsolete.
func (c Counts) Active() int {
	return c.Finished + c.Unfinished
}

// Completion returns the share of active entries that are finished, in percent.
// A catalog without active entries is complete.
func (c Counts) Completion() float64 {
	if c.Active() == 0 {
		return 100
	}

	return float64(c.Finished) * 100 / float64(c.Active())
}

func (c *Counts) count(e *Entry) {
	switch e.Status {
	case Finished:
		c.Finished++
	case Unfinished:
		c.Unfinished++
	case Obsolete:
		c.Obsolete++

		return
	}

	if !e.translated() {
		c.Empty++
	}
}

// ContextStats are the counts of a single context.
type ContextStats struct {
	Name string `json:"name"`
	Counts
}

// Stats summarizes a catalog.
type Stats struct {
	Language   string         `json:"language"`
	Total      Counts         `json:"total"`
	Contexts   []ContextStats `json:"contexts"`
	Duplicates int            `json:"duplicates"`
}

// Stats computes the per-status counts of c, overall and per context.
// Contexts are listed in the order they first appear.
func (c *Catalog) Stats() Stats {
	s := Stats{
		Language:   c.Language().String(),
		Duplicates: c.Duplicates(),
	}

	if c == nil {
		return s
	}

	index := make(map[string]int, len(c.contexts))
	for i, name := range c.contexts {
		index[name] = i

		s.Contexts = append(s.Contexts, ContextStats{Name: name})
	}

	for _, k := range c.order {
		e := c.entries[k]

		s.Total.count(e)
		s.Contexts[index[k.context]].count(e)
	}

	return s
}
