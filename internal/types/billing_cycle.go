package types

import (
	"errors"
	"time"
)

// BillingClosingDay is the day of month every billing period closes on
const BillingClosingDay = 20

// BillingDateOf maps a delivery date to its billing (closing) date. Deliveries on or
// before the 20th close on the 20th of the same month, later ones on the 20th of the
// following month.
func BillingDateOf(deliveryDate time.Time) time.Time {
	y, m, d := deliveryDate.Date()
	if d <= BillingClosingDay {
		return NewCalendarDate(y, m, BillingClosingDay)
	}
	// time.Date normalizes month 13 into January of the next year
	return NewCalendarDate(y, m+1, BillingClosingDay)
}

// BillingPeriod is an inclusive range of calendar dates
type BillingPeriod struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// BulkPeriodFor returns the period closed by the year/month of closingDate:
// the 21st of the previous month through the 20th of the closing month.
func BulkPeriodFor(closingDate time.Time) BillingPeriod {
	y, m, _ := closingDate.Date()
	return BillingPeriod{
		Start: NewCalendarDate(y, m-1, BillingClosingDay+1),
		End:   NewCalendarDate(y, m, BillingClosingDay),
	}
}

// Contains reports whether d falls inside the period, comparing calendar dates only
func (p BillingPeriod) Contains(d time.Time) bool {
	day := DateOf(d)
	return !day.Before(DateOf(p.Start)) && !day.After(DateOf(p.End))
}

// Validate checks the period is well formed
func (p BillingPeriod) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return errors.New("start_date and end_date are required")
	}
	if DateOf(p.End).Before(DateOf(p.Start)) {
		return errors.New("end_date must not be before start_date")
	}
	return nil
}

func (p BillingPeriod) String() string {
	return p.Start.Format(DateLayout) + ".." + p.End.Format(DateLayout)
}

// ReceiptDateOf returns the receipt date printed on an invoice closing at end:
// the given day of the closing month.
func ReceiptDateOf(end time.Time, day int) time.Time {
	y, m, _ := end.Date()
	return NewCalendarDate(y, m, day)
}
