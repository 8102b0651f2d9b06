package domain

import "github.com/shopspring/decimal"

// MonthRevenue is one bar of the current-year revenue chart.
type MonthRevenue struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// DemographicEntry is one slice of the heads-versus-members chart.
type DemographicEntry struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// DashboardStats is the admin dashboard payload.
type DashboardStats struct {
	TotalCitizens  int64              `json:"totalCitizens"`
	TotalCollected decimal.Decimal    `json:"totalCollected"`
	MonthlyRevenue []MonthRevenue     `json:"monthlyRevenue"`
	Demographics   []DemographicEntry `json:"demographics"`
}

// RolloverResult reports a yearly ledger rollover run.
type RolloverResult struct {
	Year    int `json:"year"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}
