package reactive

import "time"

// DefaultMaxFlushPasses bounds how often one Flush re-drains jobs queued by
// the jobs it ran.
const DefaultMaxFlushPasses = 100

// Job is a unit of deferred work. Jobs are deduplicated by ID.
type Job interface {
	ID() uint64
	Run()
}

type funcJob struct {
	id uint64
	fn func()
}

func (j *funcJob) ID() uint64 { return j.id }
func (j *funcJob) Run() { j.fn() }

// NewJob wraps fn in a Job with a fresh identity. Queue the returned Job (not
// a new one per call) to get deduplication.
func NewJob(fn func()) Job {
	return &funcJob{id: nextID(), fn: fn}
}

// Scheduler batches pending jobs into one deferred flush.
//
// Queue appends a job and, if no flush is pending, asks the Deferrer to run
// one after the current unit of work. A flush deduplicates the queue by job
// identity (first registration wins), clears it, then runs the jobs in
// registration order.
type Scheduler struct {
	rt       *Runtime
	deferrer Deferrer

	queue        []Job
	flushPending bool
	flushing     bool
	maxPasses    int

	postFlush []func()
}

func newScheduler(rt *Runtime) *Scheduler {
	return &Scheduler{
		rt:        rt,
		deferrer:  NewManualDeferrer(),
		maxPasses: DefaultMaxFlushPasses,
	}
}

// Deferrer returns the primitive used to schedule flushes.
func (s *Scheduler) Deferrer() Deferrer {
	return s.deferrer
}

// Queue adds job to the pending queue and schedules a flush if none is
// pending.
func (s *Scheduler) Queue(job Job) {
	if job == nil {
		return
	}
	dup := s.contains(job.ID())
	s.queue = append(s.queue, job)
	s.rt.observer.JobQueued(dup)
	s.schedule()
}

// Invalidate drops every queued registration of job. Use it when the job is
// about to be run directly and a queued run would be redundant.
func (s *Scheduler) Invalidate(job Job) {
	if job == nil || len(s.queue) == 0 {
		return
	}
	id := job.ID()
	kept := s.queue[:0]
	for _, j := range s.queue {
		if j.ID() != id {
			kept = append(kept, j)
		}
	}
	s.queue = kept
}

// Pending reports whether a deferred flush has been requested and not yet
// run.
func (s *Scheduler) Pending() bool {
	return s.flushPending
}

// Len returns the number of queued registrations, duplicates included.
func (s *Scheduler) Len() int {
	return len(s.queue)
}

// OnPostFlush registers fn to run after every flush that executed jobs.
func (s *Scheduler) OnPostFlush(fn func()) {
	s.postFlush = append(s.postFlush, fn)
}

func (s *Scheduler) schedule() {
	if s.flushPending || s.flushing {
		return
	}
	s.flushPending = true
	s.deferrer.Defer(s.flushJobs)
}

// flushJobs is the deferred entry point.
func (s *Scheduler) flushJobs() {
	s.flushPending = false
	s.Flush()
}

// Flush drains the queue synchronously. Jobs queued while flushing are run in
// a further pass of the same flush, up to the configured pass limit.
func (s *Scheduler) Flush() {
	if s.flushing {
		return
	}
	s.flushing = true
	start := time.Now()
	ran := 0
	defer func() {
		s.flushing = false
		if len(s.queue) > 0 {
			s.schedule()
		}
	}()

	for pass := 0; len(s.queue) > 0; pass++ {
		if pass >= s.maxPasses {
			s.rt.logger.Warn("flush pass limit exceeded, dropping jobs",
				"limit", s.maxPasses, "dropped", len(s.queue))
			s.queue = nil
			break
		}
		jobs := dedupe(s.queue)
		s.queue = nil
		for _, job := range jobs {
			job.Run()
		}
		ran += len(jobs)
	}

	if ran == 0 {
		return
	}
	s.rt.observer.Flushed(ran, time.Since(start))
	for _, fn := range s.postFlush {
		fn()
	}
}

func (s *Scheduler) contains(id uint64) bool {
	for _, j := range s.queue {
		if j.ID() == id {
			return true
		}
	}
	return false
}

// dedupe collapses repeated jobs, keeping first-registration order.
func dedupe(jobs []Job) []Job {
	seen := make(map[uint64]bool, len(jobs))
	unique := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		id := job.ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, job)
	}
	return unique
}
