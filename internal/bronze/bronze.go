// Package bronze lands raw transaction CSV data as a parquet dataset.
// No transformation happens here beyond stamping ingestion metadata;
// cleaning and typing belong to the silver stage.
package bronze

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/dvloznov/medallion/internal/dataset"
	"github.com/dvloznov/medallion/internal/domain"
	"github.com/dvloznov/medallion/internal/logger"
)

// requiredColumns is the fixed raw schema contract. The source CSV must
// carry every one of these headers; extra columns are ignored.
var requiredColumns = []string{
	"trans_date_trans_time", "cc_num", "merchant", "category", "amt",
	"first", "last", "gender", "street", "city", "state", "zip",
	"lat", "long", "city_pop", "job", "dob", "trans_num", "unix_time",
	"merch_lat", "merch_long", "is_fraud",
}

// Stats summarizes one bronze ingestion run.
type Stats struct {
	RowCount    int
	ColumnCount int
	IngestedAt  time.Time
	SourceFile  string
	OutputFile  string
}

// Ingest reads the raw CSV at sourceURI and writes it as a parquet dataset
// at bronzeURI, stamping every row with the ingestion timestamp, source
// file name and source system. A malformed file or a missing required
// column is fatal; bronze never drops or repairs rows.
func Ingest(ctx context.Context, sourceURI, bronzeURI, sourceSystem string) (Stats, error) {
	log := logger.FromContext(ctx)
	log.Info().Str("source", sourceURI).Msg("Starting bronze ingestion")

	data, err := dataset.Fetch(ctx, sourceURI)
	if err != nil {
		return Stats{}, fmt.Errorf("Ingest: %w", err)
	}

	r := csv.NewReader(bytes.NewReader(data))
	header, err := r.Read()
	if err != nil {
		return Stats{}, fmt.Errorf("Ingest: reading CSV header of %s: %w", sourceURI, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return Stats{}, fmt.Errorf("Ingest: %s is missing required column %q", sourceURI, name)
		}
	}

	ingestedAt := time.Now()
	sourceFile := path.Base(sourceURI)

	var records []domain.Record
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Stats{}, fmt.Errorf("Ingest: reading CSV row of %s: %w", sourceURI, err)
		}

		field := func(name string) string { return row[cols[name]] }
		records = append(records, domain.Record{
			TransDateTransTime: field("trans_date_trans_time"),
			CCNum:              field("cc_num"),
			Merchant:           field("merchant"),
			Category:           field("category"),
			Amt:                field("amt"),
			First:              field("first"),
			Last:               field("last"),
			Gender:             field("gender"),
			Street:             field("street"),
			City:               field("city"),
			State:              field("state"),
			Zip:                field("zip"),
			Lat:                field("lat"),
			Long:               field("long"),
			CityPop:            field("city_pop"),
			Job:                field("job"),
			DOB:                field("dob"),
			TransNum:           field("trans_num"),
			UnixTime:           field("unix_time"),
			MerchLat:           field("merch_lat"),
			MerchLong:          field("merch_long"),
			IsFraud:            field("is_fraud"),
			IngestionTimestamp: ingestedAt,
			SourceFile:         sourceFile,
			SourceSystem:       sourceSystem,
		})
	}

	if err := dataset.WriteRows(ctx, bronzeURI, records); err != nil {
		return Stats{}, fmt.Errorf("Ingest: %w", err)
	}

	stats := Stats{
		RowCount:    len(records),
		ColumnCount: len(header),
		IngestedAt:  ingestedAt,
		SourceFile:  sourceURI,
		OutputFile:  bronzeURI,
	}

	log.Info().
		Int("rows", stats.RowCount).
		Int("columns", stats.ColumnCount).
		Str("output", bronzeURI).
		Msg("Bronze ingestion complete")

	return stats, nil
}
