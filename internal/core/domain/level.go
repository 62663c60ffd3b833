package domain

import (
	"fmt"
	"sort"
)

type LevelTier struct {
	Index int    `json:"index" toml:"index"`
	Name  string `json:"name" toml:"name"`
	MinXP int64  `json:"min_xp" toml:"min_xp"`
	MaxXP *int64 `json:"max_xp,omitempty" toml:"max_xp"`
}

type LevelInfo struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	XPTotal     int64  `json:"xp_total"`
	XPIntoLevel int64  `json:"xp_into_level"`
	XPToNext    int64  `json:"xp_to_next"`
	NextName    string `json:"next_name,omitempty"`
}

func (l LevelInfo) IsMax() bool { return l.NextName == "" }

func int64Ptr(v int64) *int64 { return &v }

// DefaultTiers is the built-in progression table.
func DefaultTiers() []LevelTier {
	return []LevelTier{
		{Index: 1, Name: "Novice", MinXP: 0, MaxXP: int64Ptr(99)},
		{Index: 2, Name: "Apprentice", MinXP: 100, MaxXP: int64Ptr(299)},
		{Index: 3, Name: "Adept", MinXP: 300, MaxXP: int64Ptr(699)},
		{Index: 4, Name: "Expert", MinXP: 700, MaxXP: int64Ptr(1499)},
		{Index: 5, Name: "Master", MinXP: 1500, MaxXP: int64Ptr(2999)},
		{Index: 6, Name: "Grandmaster", MinXP: 3000, MaxXP: int64Ptr(5999)},
		{Index: 7, Name: "Legend", MinXP: 6000},
	}
}

// ValidateTiers checks the table is non-empty, strictly increasing in MinXP
// and open-ended on the last tier.
func ValidateTiers(tiers []LevelTier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("%w: no tiers", ErrInvalidTierTable)
	}

	sorted := sortedTiers(tiers)
	for i, t := range sorted {
		if t.Name == "" {
			return fmt.Errorf("%w: tier %d has no name", ErrInvalidTierTable, t.Index)
		}
		if i > 0 && t.MinXP <= sorted[i-1].MinXP {
			return fmt.Errorf("%w: min_xp must be strictly increasing (tier %d)", ErrInvalidTierTable, t.Index)
		}

		last := i == len(sorted)-1
		if last && t.MaxXP != nil {
			return fmt.Errorf("%w: last tier must have no max_xp", ErrInvalidTierTable)
		}
		if !last && t.MaxXP != nil && (*t.MaxXP < t.MinXP || *t.MaxXP >= sorted[i+1].MinXP) {
			return fmt.Errorf("%w: max_xp of tier %d overlaps the next tier", ErrInvalidTierTable, t.Index)
		}
	}
	return nil
}

func sortedTiers(tiers []LevelTier) []LevelTier {
	sorted := make([]LevelTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinXP < sorted[j].MinXP
	})
	return sorted
}

// ResolveLevel maps a cumulative XP total to its tier. It has no memory of
// the highest tier ever reached: penalties can move the result back down,
// and totals below the first tier clamp to it.
func ResolveLevel(total int64, tiers []LevelTier) LevelInfo {
	if len(tiers) == 0 {
		return LevelInfo{XPTotal: total}
	}

	sorted := sortedTiers(tiers)
	current := 0
	for i, t := range sorted {
		if t.MinXP <= total {
			current = i
		}
	}

	tier := sorted[current]
	info := LevelInfo{
		Index:   tier.Index,
		Name:    tier.Name,
		XPTotal: total,
	}
	if total > tier.MinXP {
		info.XPIntoLevel = total - tier.MinXP
	}

	if current+1 < len(sorted) {
		next := sorted[current+1]
		info.XPToNext = next.MinXP - total
		info.NextName = next.Name
	}
	return info
}
