package models

import "time"

// DefectCount is one bar of the most common defects chart.
type DefectCount struct {
	Falha string `json:"falha"`
	Count int    `json:"count"`
}

// DayCount is one point of the weekly volume chart.
type DayCount struct {
	Date  string `json:"date"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DashboardSummary aggregates the home screen indicators.
type DashboardSummary struct {
	ChecklistsToday  int           `json:"checklists_today"`
	PendingCount     int           `json:"pending_count"`
	WeeklyChecklists []DayCount    `json:"weekly_checklists"`
	TopDefects       []DefectCount `json:"top_defects"`
	MonthProduction  int           `json:"month_production"`
	GeneratedAt      time.Time     `json:"generated_at"`
}
