package silver

import (
	"time"

	"github.com/dvloznov/medallion/internal/domain"
)

// Quality rule names, in evaluation order. The order is part of the
// contract: quality_issues lists violations exactly in this sequence.
const (
	IssueNegativeAmount  = "negative_amount"
	IssueMissingAmount   = "missing_amount"
	IssueMissingMerchant = "missing_merchant"
	IssueMissingCategory = "missing_category"
	IssueFutureDate      = "future_date"
	IssueInvalidDate     = "invalid_date"
)

// rule is one independent quality predicate. Rules never pre-empt each
// other; every violated rule is collected.
type rule struct {
	name     string
	violated func(tx *domain.Transaction, now time.Time) bool
}

// rules are evaluated in this fixed order. future_date and invalid_date
// are mutually exclusive: the first needs a parsed timestamp, the second
// fires only when no timestamp could be interpreted at all.
var rules = []rule{
	{IssueNegativeAmount, func(tx *domain.Transaction, _ time.Time) bool {
		return tx.Amt != nil && *tx.Amt < 0
	}},
	{IssueMissingAmount, func(tx *domain.Transaction, _ time.Time) bool {
		return tx.Amt == nil
	}},
	{IssueMissingMerchant, func(tx *domain.Transaction, _ time.Time) bool {
		return tx.Merchant == ""
	}},
	{IssueMissingCategory, func(tx *domain.Transaction, _ time.Time) bool {
		return tx.Category == ""
	}},
	{IssueFutureDate, func(tx *domain.Transaction, now time.Time) bool {
		return tx.TransTime != nil && tx.TransTime.After(now)
	}},
	{IssueInvalidDate, func(tx *domain.Transaction, _ time.Time) bool {
		return tx.TransTime == nil
	}},
}

// Validator evaluates transactions against the quality rule set.
type Validator struct {
	// Now supplies the reference time for the future-date rule. Injected
	// so validation runs are deterministic under test.
	Now func() time.Time
}

// NewValidator creates a validator using the wall clock.
func NewValidator() *Validator {
	return &Validator{Now: time.Now}
}

// Validate returns whether the transaction is valid and the ordered list
// of violated rule names. A record is valid iff the list is empty.
func (v *Validator) Validate(tx *domain.Transaction) (bool, []string) {
	now := v.Now()

	var issues []string
	for _, r := range rules {
		if r.violated(tx, now) {
			issues = append(issues, r.name)
		}
	}

	return len(issues) == 0, issues
}
