package domain

import "github.com/shopspring/decimal"

// DashboardStats is the summary shown on the administration home page.
type DashboardStats struct {
	TotalAthletes        int
	ActiveAthletes       int
	InactiveAthletes     int
	RecentPayments       int
	RecentPaymentsTotal  decimal.Decimal
	ExpiringCertificates int
}

// MonthRevenue is the revenue of one calendar month.
// Name is localized; Month is 1-based.
type MonthRevenue struct {
	Month int
	Name  string
	Total decimal.Decimal
}

// AthleteStats summarizes the athlete registry.
// EnrolledByYear is keyed by the enrollment year.
type AthleteStats struct {
	TotalAthletes    int
	EnrolledByYear   map[int]int
	ActiveAthletes   int
	InactiveAthletes int
}

// AthleteTotal pairs an athlete with the sum of all its payments.
type AthleteTotal struct {
	Athlete   Athlete
	TotalPaid decimal.Decimal
}

// PaymentTypeStats holds the number and total amount of payments per type.
// Unclassified payments appear in neither map.
type PaymentTypeStats struct {
	Counts map[PaymentType]int
	Totals map[PaymentType]decimal.Decimal
}

// AnnualStatement lists what an athlete paid during one calendar year.
// The club hands it out for the yearly sports-expense tax deduction.
type AnnualStatement struct {
	Year     int
	Athlete  Athlete
	Payments []Payment
	Total    decimal.Decimal
}
