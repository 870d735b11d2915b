package queue

import (
	"context"
	"fmt"

	"github.com/RAj5517/Clustro/internal/ingest"
	"github.com/RAj5517/Clustro/internal/model"
)

const ingestBatchTopic = "ingest_batch"

// ingestJob carries one process_batch request plus the channel its
// caller blocks on, keeping POST /api/upload's response synchronous
//  while the queue bounds how many batches run at once.
type ingestJob struct {
	ctx   context.Context
	files []ingest.InputFile
	reply chan model.BatchReport
}

// ConsumeIngestBatches registers one consumer per Coordinator so two
// concurrent batches never share a single coordinator/encoder
// instance,: "the core is thread-safe only if every
// batch uses a distinct coordinator instance sharing read-only
// encoder handles behind an internal lock."
func ConsumeIngestBatches(q *Queue, coordinators []*ingest.Coordinator) {
	for _, co := range coordinators {
		co := co
		q.RegisterConsumer(ingestBatchTopic, func(msg Message) {
			job, ok := msg.Data.(ingestJob)
			if !ok {
				return
			}
			job.reply <- co.ProcessBatch(job.ctx, job.files)
		}, 1)
	}
}

// ProduceIngestBatch enqueues a batch and blocks for its report. An
// error is returned when the shared ingest topic's queue is full, or
// when ctx is done before the report arrives.
func ProduceIngestBatch(q *Queue, ctx context.Context, files []ingest.InputFile) (model.BatchReport, error) {
	reply := make(chan model.BatchReport, 1)
	if ok := q.Produce(ingestBatchTopic, ingestJob{ctx: ctx, files: files, reply: reply}); !ok {
		return model.BatchReport{}, fmt.Errorf("ingest queue is saturated, try again shortly")
	}
	select {
	case report := <-reply:
		return report, nil
	case <-ctx.Done():
		return model.BatchReport{}, ctx.Err()
	}
}
