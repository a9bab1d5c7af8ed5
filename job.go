package strex

import "sync"

// JobState is the lifecycle state of a translation job.
type JobState string

const (
	JobPending         JobState = "pending"
	JobRunning         JobState = "running"
	JobSucceeded       JobState = "succeeded"
	JobPartiallyFailed JobState = "partially_failed"
	JobFailed          JobState = "failed"
	JobCancelled       JobState = "cancelled"
)

// Job is the observable state of one translation run. It is safe to poll
// from another goroutine while batches are still executing. Cancellation
// is cooperative: the flag is honored only between batches, so an in-flight
// provider call always completes before the job stops.
type Job struct {
	mu        sync.Mutex
	state     JobState
	batches   []*Batch
	completed int
	failed    int
	total     int
	trans     int
	cached    int
	failedEnt int
	cancelled bool
	done      chan struct{}
}

// JobStatus is a point-in-time snapshot of a job.
type JobStatus struct {
	State             JobState
	TotalBatches      int
	CompletedBatches  int
	FailedBatches     int
	TotalEntries      int
	TranslatedEntries int
	CachedEntries     int
	FailedEntries     int
	// Errors collects the per-batch failures reported so far.
	Errors []error
}

func newJob(batches []*Batch) *Job {
	total := 0
	for _, b := range batches {
		total += b.Size()
	}
	return &Job{
		state:   JobPending,
		batches: batches,
		total:   total,
		done:    make(chan struct{}),
	}
}

// Cancel requests cooperative cancellation. Already-completed batches keep
// their results; the current in-flight batch finishes first.
func (j *Job) Cancel() {
	j.mu.Lock()
	j.cancelled = true
	j.mu.Unlock()
}

// Wait blocks until the job has finished.
func (j *Job) Wait() JobStatus {
	<-j.done
	return j.Status()
}

// Done returns a channel closed when the job finishes.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Status returns a snapshot of progress counters and per-batch outcomes.
func (j *Job) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()

	st := JobStatus{
		State:             j.state,
		TotalBatches:      len(j.batches),
		CompletedBatches:  j.completed,
		FailedBatches:     j.failed,
		TotalEntries:      j.total,
		TranslatedEntries: j.trans,
		CachedEntries:     j.cached,
		FailedEntries:     j.failedEnt,
	}
	for _, b := range j.batches {
		if b.Done && b.Err != nil {
			st.Errors = append(st.Errors, b.Err)
		}
	}
	return st
}

// Batches returns the per-batch records. The slice itself is fixed for the
// lifetime of the job; consult Status for consistent counters.
func (j *Job) Batches() []*Batch {
	return j.batches
}

func (j *Job) start() {
	j.mu.Lock()
	j.state = JobRunning
	j.mu.Unlock()
}

func (j *Job) isCancelled() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cancelled
}

// recordBatch folds one attempted batch into the progress counters.
// Counters only ever advance.
func (j *Job) recordBatch(b *Batch) {
	j.mu.Lock()
	defer j.mu.Unlock()

	b.Done = true
	j.completed++
	if b.Err != nil {
		j.failed++
		j.failedEnt += b.Size()
		return
	}
	j.trans += b.Size() - b.Cached
	j.cached += b.Cached
}

// finish resolves the terminal state from the batch outcomes.
func (j *Job) finish() {
	j.mu.Lock()
	defer j.mu.Unlock()

	switch {
	case j.cancelled && j.completed < len(j.batches):
		j.state = JobCancelled
	case j.failed == 0:
		j.state = JobSucceeded
	case j.failed == len(j.batches):
		j.state = JobFailed
	default:
		j.state = JobPartiallyFailed
	}
	close(j.done)
}
