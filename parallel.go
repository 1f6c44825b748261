package locgene

import (
	"runtime"
	"sync"

	"github.com/genomekit/locgene/dna"
)

// WorkItem holds a parsed location ready for annotation.
type WorkItem struct {
	Seq      int
	Location *dna.Location
}

// WorkResult holds the annotation output for a single location.
type WorkResult struct {
	Seq        int
	Location   *dna.Location
	Annotation *GeneAnnotation
	Err        error
}

// ParallelAnnotate annotates work items using a pool of workers. Each
// location is independent, so failures are reported per item rather
// than aborting the batch. Results arrive in completion order; use
// OrderedCollect to consume them in sequence-number order. If workers
// is 0, runtime.NumCPU() is used.
func (annotateDb *AnnotateDb) ParallelAnnotate(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()

			for item := range items {
				annotation, err := annotateDb.Annotate(item.Location)

				results <- WorkResult{
					Seq:        item.Seq,
					Location:   item.Location,
					Annotation: annotation,
					Err:        err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order,
// buffering out-of-order results until the next expected sequence
// number arrives. Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]

			if !ok {
				break
			}

			delete(pending, nextSeq)
			nextSeq++

			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}

				return err
			}
		}
	}

	return nil
}
