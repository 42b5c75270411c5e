package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type UserStats struct {
	TotalChecks int               `json:"totalChecks"`
	LastLogin   *time.Time        `json:"lastLogin"`
	MemberSince time.Time         `json:"memberSince"`
	Totals      map[string]string `json:"totals"` // currency -> sum of the readable amounts
}

var amountCleaner = strings.NewReplacer(",", "", " ", "", "$", "", "€", "", "£", "", "₹", "")

// GetStats summarises the user's checks. Amounts that do not parse as numbers are skipped.
func (u *User) GetStats() (stats UserStats, err error) {
	checks, err := CheckList(u.ID)
	if err != nil {
		return
	}
	stats.TotalChecks = len(checks)
	stats.MemberSince = time.Unix(u.CreatedAt, 0).UTC()
	if u.LastLoginAt > 0 {
		lastLogin := time.Unix(u.LastLoginAt, 0).UTC()
		stats.LastLogin = &lastLogin
	}
	sums := map[string]decimal.Decimal{}
	for i := range checks {
		info := checks[i].Info()
		amount, parseErr := ParseAmount(info.AmountNumber)
		if parseErr != nil {
			continue
		}
		sums[info.Currency] = sums[info.Currency].Add(amount)
	}
	stats.Totals = make(map[string]string, len(sums))
	for currency, sum := range sums {
		stats.Totals[currency] = sum.StringFixed(2)
	}
	return stats, nil
}

// ParseAmount reads an amount as written on a cheque, e.g. "$1,250.00"
func ParseAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(amountCleaner.Replace(strings.TrimSpace(s)))
}
