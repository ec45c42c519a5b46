// Package runledger records pipeline stage runs in a BigQuery table.
// Recording is best-effort observability: the pipeline works unchanged
// with the no-op recorder when no project is configured.
package runledger

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"

	"github.com/dvloznov/medallion/internal/logger"
)

const stageRunsTable = "stage_runs"

// Recorder tracks the lifecycle of one stage run.
type Recorder interface {
	// StartRun registers a run of the named stage with status=RUNNING and
	// returns the generated run id.
	StartRun(ctx context.Context, stage string) (string, error)
	// FinishRun sets status=SUCCESS and the finish timestamp.
	FinishRun(ctx context.Context, runID string) error
	// FailRun sets status=FAILED with the error message. Failures to
	// record are logged, not returned: the original stage error is the
	// one that matters.
	FailRun(ctx context.Context, runID string, runErr error)
}

// Noop is the recorder used when no BigQuery project is configured.
type Noop struct{}

func (Noop) StartRun(ctx context.Context, stage string) (string, error) { return uuid.NewString(), nil }
func (Noop) FinishRun(ctx context.Context, runID string) error          { return nil }
func (Noop) FailRun(ctx context.Context, runID string, runErr error)    {}

// BigQueryRecorder writes stage runs to <dataset>.stage_runs.
type BigQueryRecorder struct {
	client  *bigquery.Client
	dataset string
}

// NewBigQueryRecorder creates a recorder backed by the given project and
// dataset. It assumes Application Default Credentials are configured.
func NewBigQueryRecorder(ctx context.Context, projectID, datasetID string) (*BigQueryRecorder, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryRecorder: bigquery client: %w", err)
	}
	return &BigQueryRecorder{client: client, dataset: datasetID}, nil
}

// Close releases the underlying BigQuery client.
func (r *BigQueryRecorder) Close() error {
	return r.client.Close()
}

// StartRun inserts a stage_runs row with status=RUNNING.
func (r *BigQueryRecorder) StartRun(ctx context.Context, stage string) (string, error) {
	runID := uuid.NewString()

	q := r.client.Query(fmt.Sprintf(`
		INSERT %s.%s (run_id, stage, started_ts, status)
		VALUES (@run_id, @stage, @started_ts, @status)
	`, r.dataset, stageRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "run_id", Value: runID},
		{Name: "stage", Value: stage},
		{Name: "started_ts", Value: time.Now()},
		{Name: "status", Value: "RUNNING"},
	}

	if err := runQuery(ctx, q); err != nil {
		return "", fmt.Errorf("StartRun: %w", err)
	}

	return runID, nil
}

// FinishRun sets status=SUCCESS and finished_ts.
func (r *BigQueryRecorder) FinishRun(ctx context.Context, runID string) error {
	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = ""
		WHERE run_id = @run_id
	`, r.dataset, stageRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "SUCCESS"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "run_id", Value: runID},
	}

	if err := runQuery(ctx, q); err != nil {
		return fmt.Errorf("FinishRun: %w", err)
	}

	return nil
}

// FailRun sets status=FAILED, finished_ts and error_message.
func (r *BigQueryRecorder) FailRun(ctx context.Context, runID string, runErr error) {
	log := logger.FromContext(ctx)

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
		const maxLen = 2000
		if len(errMsg) > maxLen {
			errMsg = errMsg[:maxLen]
		}
	}

	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE run_id = @run_id
	`, r.dataset, stageRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "FAILED"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: errMsg},
		{Name: "run_id", Value: runID},
	}

	if err := runQuery(ctx, q); err != nil {
		log.Error().Err(err).Str("run_id", runID).Msg("FailRun: recording failure")
	}
}

func runQuery(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}

	return nil
}
