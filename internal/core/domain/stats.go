package domain

import "time"

type XPSummary struct {
	StartDate string               `json:"start_date"`
	EndDate   string               `json:"end_date"`
	Gained    int64                `json:"gained"`
	Lost      int64                `json:"lost"`
	Net       int64                `json:"net"`
	BySource  map[SourceType]int64 `json:"by_source"`
	Days      []DailyXP            `json:"days"`
}

type DailyXP struct {
	Date   string `json:"date"`
	Gained int64  `json:"gained"`
	Lost   int64  `json:"lost"`
	Net    int64  `json:"net"`
}

type StatsInput struct {
	UserID    string
	StartDate time.Time
	EndDate   time.Time
	Location  *time.Location
}
