package domain

import (
	"time"
)

// Record is one raw credit-card transaction as landed by the bronze stage.
// Every source field is kept as the original CSV string so that the silver
// stage owns all type coercion decisions; bronze only stamps metadata.
type Record struct {
	TransDateTransTime string `parquet:"trans_date_trans_time,optional"`
	CCNum              string `parquet:"cc_num"`
	Merchant           string `parquet:"merchant,optional"`
	Category           string `parquet:"category,optional"`
	Amt                string `parquet:"amt,optional"`
	First              string `parquet:"first"`
	Last               string `parquet:"last"`
	Gender             string `parquet:"gender"`
	Street             string `parquet:"street"`
	City               string `parquet:"city"`
	State              string `parquet:"state"`
	Zip                string `parquet:"zip"`
	Lat                string `parquet:"lat,optional"`
	Long               string `parquet:"long,optional"`
	CityPop            string `parquet:"city_pop"`
	Job                string `parquet:"job"`
	DOB                string `parquet:"dob,optional"`
	TransNum           string `parquet:"trans_num"`
	UnixTime           string `parquet:"unix_time"`
	MerchLat           string `parquet:"merch_lat,optional"`
	MerchLong          string `parquet:"merch_long,optional"`
	IsFraud            string `parquet:"is_fraud"`

	// Bronze ingestion metadata.
	IngestionTimestamp time.Time `parquet:"_ingestion_timestamp,timestamp(millisecond)"`
	SourceFile         string    `parquet:"_source_file"`
	SourceSystem       string    `parquet:"_source_system"`
}

// Transaction is one typed transaction produced by the silver stage.
// Numeric and temporal fields are pointers: nil means the raw value was
// absent or unparseable, which the validator then reports as a quality
// issue instead of the pipeline aborting.
type Transaction struct {
	TransNum  string     `parquet:"trans_num"`
	TransTime *time.Time `parquet:"trans_date_trans_time,optional,timestamp(millisecond)"`
	CCNum     string     `parquet:"cc_num"`
	Merchant  string     `parquet:"merchant,optional"`
	Category  string     `parquet:"category,optional"`
	Amt       *float64   `parquet:"amt,optional"`
	First     string     `parquet:"first"`
	Last      string     `parquet:"last"`
	Gender    string     `parquet:"gender"`
	Street    string     `parquet:"street"`
	City      string     `parquet:"city"`
	State     string     `parquet:"state"`
	Zip       string     `parquet:"zip"`
	Lat       *float64   `parquet:"lat,optional"`
	Long      *float64   `parquet:"long,optional"`
	CityPop   int64      `parquet:"city_pop"`
	Job       string     `parquet:"job"`
	DOB       *time.Time `parquet:"dob,optional,timestamp(millisecond)"`
	UnixTime  int64      `parquet:"unix_time"`
	MerchLat  *float64   `parquet:"merch_lat,optional"`
	MerchLong *float64   `parquet:"merch_long,optional"`
	IsFraud   int64      `parquet:"is_fraud"`

	// Validation results. QualityIssues is the comma-joined ordered list of
	// violated rule names, empty when the record is valid.
	IsValid       bool   `parquet:"is_valid"`
	QualityIssues string `parquet:"quality_issues,optional"`

	// Carried bronze metadata plus the silver processing stamp, shared by
	// every record of one run.
	IngestionTimestamp time.Time `parquet:"_ingestion_timestamp,timestamp(millisecond)"`
	SourceFile         string    `parquet:"_source_file"`
	SourceSystem       string    `parquet:"_source_system"`
	SilverProcessedAt  time.Time `parquet:"_silver_processed_at,timestamp(millisecond)"`
}

// CustomerSummary is one row of the gold customer_summary table, keyed by
// card number. One customer may hold several cards; the card number is the
// customer key in this dataset.
type CustomerSummary struct {
	CustomerID           string    `parquet:"customer_id"`
	FullName             string    `parquet:"full_name"`
	TotalTransactions    int64     `parquet:"total_transactions"`
	TotalSpend           float64   `parquet:"total_spend"`
	AvgTransaction       float64   `parquet:"avg_transaction"`
	MedianTransaction    float64   `parquet:"median_transaction"`
	FraudCount           int64     `parquet:"fraud_count"`
	FraudRate            float64   `parquet:"fraud_rate"`
	FirstTransactionDate time.Time `parquet:"first_transaction_date,timestamp(millisecond)"`
	LastTransactionDate  time.Time `parquet:"last_transaction_date,timestamp(millisecond)"`
	UniqueMerchants      int64     `parquet:"unique_merchants"`
	City                 string    `parquet:"city"`
	State                string    `parquet:"state"`
	Job                  string    `parquet:"job"`
	CustomerLifetimeDays int64     `parquet:"customer_lifetime_days"`
}

// CategoryAnalysis is one row of the gold merchant_category_analysis table.
type CategoryAnalysis struct {
	Category          string  `parquet:"category"`
	TotalTransactions int64   `parquet:"total_transactions"`
	TotalAmount       float64 `parquet:"total_amount"`
	AvgAmount         float64 `parquet:"avg_amount"`
	MedianAmount      float64 `parquet:"median_amount"`
	FraudCount        int64   `parquet:"fraud_count"`
	FraudRate         float64 `parquet:"fraud_rate"`
	UniqueCustomers   int64   `parquet:"unique_customers"`
	UniqueMerchants   int64   `parquet:"unique_merchants"`
}
