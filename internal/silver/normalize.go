package silver

import (
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/medallion/internal/domain"
)

// timestampLayouts are the accepted transaction timestamp formats.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// dateLayouts are the accepted date-of-birth formats.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
}

// Normalize coerces one raw record into a typed transaction. Unparseable
// numeric or temporal values become nil rather than errors, keeping the
// row alive for the validator to flag.
func Normalize(rec domain.Record) domain.Transaction {
	return domain.Transaction{
		TransNum:  rec.TransNum,
		TransTime: parseTime(rec.TransDateTransTime, timestampLayouts),
		CCNum:     rec.CCNum,
		Merchant:  strings.TrimSpace(rec.Merchant),
		Category:  strings.TrimSpace(rec.Category),
		Amt:       parseFloat(rec.Amt),
		First:     rec.First,
		Last:      rec.Last,
		Gender:    rec.Gender,
		Street:    rec.Street,
		City:      rec.City,
		State:     rec.State,
		Zip:       rec.Zip,
		Lat:       parseFloat(rec.Lat),
		Long:      parseFloat(rec.Long),
		CityPop:   parseInt(rec.CityPop),
		Job:       rec.Job,
		DOB:       parseTime(rec.DOB, dateLayouts),
		UnixTime:  parseInt(rec.UnixTime),
		MerchLat:  parseFloat(rec.MerchLat),
		MerchLong: parseFloat(rec.MerchLong),
		IsFraud:   parseInt(rec.IsFraud),

		IngestionTimestamp: rec.IngestionTimestamp,
		SourceFile:         rec.SourceFile,
		SourceSystem:       rec.SourceSystem,
	}
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseInt(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseTime(s string, layouts []string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
