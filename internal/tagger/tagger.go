package tagger

import (
	"context"
	"strings"
	"sync"

	"github.com/nikbrunner/autotag/internal/ai"
	"github.com/nikbrunner/autotag/internal/model"
)

// Suggester returns tag suggestions for text. *ai.Client satisfies it.
type Suggester interface {
	RequestTags(ctx context.Context, apiKey, inputText string) ([]string, error)
}

// Status represents the outcome for a single note.
type Status int

const (
	Tagged  Status = iota // suggestions received
	Empty                 // request succeeded but returned no tags
	Skipped               // note has no text
	Failed                // request failed, see Err
)

func (s Status) String() string {
	switch s {
	case Tagged:
		return "tagged"
	case Empty:
		return "empty"
	case Skipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Result holds the suggestion result for a single note.
type Result struct {
	Note   *model.Note
	Status Status
	Tags   []string // normalized suggestions
	Err    error
	Kind   ai.Kind
}

// ProgressFunc is called after each note is processed.
// completed is the number of notes done so far, total is the total count.
type ProgressFunc func(completed, total int)

// Params configures a batch run.
type Params struct {
	Suggester   Suggester
	APIKey      string
	Concurrency int
	OnProgress  ProgressFunc
}

// SuggestAll requests tags for every note concurrently and returns one
// result per note in input order. Notes not dispatched before ctx is
// cancelled are reported as Failed with ctx.Err().
func SuggestAll(ctx context.Context, notes []model.Note, params Params) []Result {
	if len(notes) == 0 {
		return nil
	}

	concurrency := params.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]Result, len(notes))
	done := make([]bool, len(notes))
	jobs := make(chan int)
	var wg sync.WaitGroup

	var progressMu sync.Mutex
	completed := 0

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = suggest(ctx, params, &notes[idx])
				done[idx] = true

				if params.OnProgress != nil {
					progressMu.Lock()
					completed++
					params.OnProgress(completed, len(notes))
					progressMu.Unlock()
				}
			}
		}()
	}

dispatch:
	for i := range notes {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)

	wg.Wait()

	for i := range results {
		if !done[i] {
			results[i] = Result{Note: &notes[i], Status: Failed, Err: ctx.Err(), Kind: ai.KindUnknown}
		}
	}

	return results
}

// suggest requests tags for a single note.
func suggest(ctx context.Context, params Params, note *model.Note) Result {
	result := Result{Note: note}

	text := note.Text()
	if strings.TrimSpace(text) == "" {
		result.Status = Skipped
		return result
	}

	tags, err := params.Suggester.RequestTags(ctx, params.APIKey, text)
	if err != nil {
		result.Status = Failed
		result.Err = err
		result.Kind = ai.KindOf(err)
		return result
	}

	result.Tags = model.NormalizeTags(tags)
	if len(result.Tags) == 0 {
		result.Status = Empty
	} else {
		result.Status = Tagged
	}

	return result
}

// Summary counts results by status.
func Summary(results []Result) map[Status]int {
	counts := make(map[Status]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}
