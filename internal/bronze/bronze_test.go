package bronze

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dvloznov/medallion/internal/dataset"
	"github.com/dvloznov/medallion/internal/domain"
)

const csvHeader = "trans_date_trans_time,cc_num,merchant,category,amt,first,last,gender,street,city,state,zip,lat,long,city_pop,job,dob,trans_num,unix_time,merch_lat,merch_long,is_fraud"

func writeCSV(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transactions.csv")
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing CSV: %v", err)
	}
	return path
}

func TestIngest(t *testing.T) {
	source := writeCSV(t,
		csvHeader,
		`2025-05-30 11:22:33,4512000000001,"fraud_Kirlin and Sons",grocery_pos,42.17,Jennifer,Banks,F,561 Perry Cove,Moravian Falls,NC,28654,36.0788,-81.1781,3495,"Psychologist, counselling",1988-03-09,tx-001,1748604153,36.011293,-82.048315,0`,
		`,4512000000002,,misc_net,,John,Doe,M,43 Main St,Orient,WA,99160,48.8878,-118.2105,149,Soil scientist,1978-06-21,tx-002,1748604154,49.159047,-118.186462,1`,
	)

	bronzeURI := filepath.Join(t.TempDir(), "bronze", "transactions.parquet")
	ctx := context.Background()

	stats, err := Ingest(ctx, source, bronzeURI, "credit_card_system")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	if stats.RowCount != 2 {
		t.Errorf("RowCount = %d, want 2", stats.RowCount)
	}
	if stats.ColumnCount != 22 {
		t.Errorf("ColumnCount = %d, want 22", stats.ColumnCount)
	}
	if stats.IngestedAt.IsZero() {
		t.Error("IngestedAt should be set")
	}

	rows, err := dataset.ReadRows[domain.Record](ctx, bronzeURI)
	if err != nil {
		t.Fatalf("Reading bronze output: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 bronze rows, got %d", len(rows))
	}

	first := rows[0]
	if first.TransNum != "tx-001" || first.Amt != "42.17" || first.Merchant != "fraud_Kirlin and Sons" {
		t.Errorf("Unexpected first row: %+v", first)
	}
	if first.SourceFile != "transactions.csv" {
		t.Errorf("SourceFile = %q, want transactions.csv", first.SourceFile)
	}
	if first.SourceSystem != "credit_card_system" {
		t.Errorf("SourceSystem = %q", first.SourceSystem)
	}
	if first.IngestionTimestamp.IsZero() {
		t.Error("IngestionTimestamp should be stamped")
	}

	// Raw values land untouched, including empty fields.
	second := rows[1]
	if second.Amt != "" || second.Merchant != "" || second.TransDateTransTime != "" {
		t.Errorf("Expected empty raw fields preserved, got %+v", second)
	}
	if !second.IngestionTimestamp.Equal(first.IngestionTimestamp) {
		t.Error("All rows of one run should share the ingestion timestamp")
	}
}

func TestIngestMissingColumn(t *testing.T) {
	header := strings.Replace(csvHeader, "amt,", "", 1)
	source := writeCSV(t, header)

	_, err := Ingest(context.Background(), source, filepath.Join(t.TempDir(), "out.parquet"), "test")
	if err == nil {
		t.Fatal("Expected error for missing required column")
	}
	if !strings.Contains(err.Error(), `"amt"`) {
		t.Errorf("Error should name the missing column, got: %v", err)
	}
}

func TestIngestMissingFile(t *testing.T) {
	_, err := Ingest(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), filepath.Join(t.TempDir(), "out.parquet"), "test")
	if err == nil {
		t.Fatal("Expected error for missing source file")
	}
}

func TestIngestMalformedRow(t *testing.T) {
	source := writeCSV(t, csvHeader, "only,three,fields")

	_, err := Ingest(context.Background(), source, filepath.Join(t.TempDir(), "out.parquet"), "test")
	if err == nil {
		t.Fatal("Expected error for malformed CSV row")
	}
}
