package concurrent

import (
	"sync"
)

type JobFunc[T any, G any] func(job T) G

// WorkerPool runs JobFunc over a bounded job queue with a fixed number of goroutines. Jobs are
// queued with AddJob, the queue is sealed with Close, and Wait closes the results channel once
// every worker returned.
type WorkerPool[T any, G any] struct {
	numWorkers int
	jobQueue   chan T
	results    chan G
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

func NewWorkerPool[T any, G any](numWorkers, jobQueueSize int) *WorkerPool[T, G] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobQueue:   make(chan T, jobQueueSize),
		results:    make(chan G, jobQueueSize),
	}
}

func (wp *WorkerPool[T, G]) worker(jobFunc JobFunc[T, G]) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		wp.results <- jobFunc(job)
	}
}

func (wp *WorkerPool[T, G]) Start(jobFunc JobFunc[T, G]) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(jobFunc)
	}
}

func (wp *WorkerPool[T, G]) AddJob(job T) {
	wp.jobQueue <- job
}

// Close seals the job queue. Workers drain what is left and exit.
func (wp *WorkerPool[T, G]) Close() {
	wp.closeOnce.Do(func() {
		close(wp.jobQueue)
	})
}

func (wp *WorkerPool[T, G]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[T, G]) CollectResults() chan G {
	return wp.results
}

// Run is the usual queue-all, close, start, wait sequence. Results keep job order.
func Run[T any, G any](numWorkers int, jobs []T, jobFunc JobFunc[T, G]) []G {
	type indexed struct {
		idx int
		job T
	}
	type indexedResult struct {
		idx int
		res G
	}

	wp := NewWorkerPool[indexed, indexedResult](numWorkers, len(jobs))
	for i, job := range jobs {
		wp.AddJob(indexed{i, job})
	}
	wp.Close()

	wp.Start(func(j indexed) indexedResult {
		return indexedResult{j.idx, jobFunc(j.job)}
	})
	wp.Wait()

	out := make([]G, len(jobs))
	for r := range wp.CollectResults() {
		out[r.idx] = r.res
	}
	return out
}
