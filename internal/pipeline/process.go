package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/backmassage/cloak/internal/codec"
	"github.com/backmassage/cloak/internal/naming"
	"github.com/backmassage/cloak/internal/stats"
)

var errInvalidUTF8 = errors.New("content is not valid UTF-8")

// Output is one successfully transformed item.
type Output struct {
	Source  string
	Name    string // Output file name, e.g. "encoded_a.txt".
	Content string
	InBytes int // Size of the source content.
	Stats   stats.Report
}

// Failure is one item that could not be processed or written.
type Failure struct {
	Source  string
	Message string
}

// Result is the outcome of processing a batch. Both slices follow the
// order in which items were collected.
type Result struct {
	Succeeded []Output
	Failed    []Failure
}

// Processor applies one operation to a batch of items.
type Processor struct {
	Codec   *codec.Codec
	Mode    codec.Mode
	Op      Operation
	Workers int // <= 1 processes sequentially.
}

// outcome is the per-item slot filled by workers.
type outcome struct {
	out *Output
	err error
}

// Process transforms every item independently. A failing item is recorded
// in Result.Failed and never stops its siblings. When ctx is cancelled,
// items not yet started are recorded as failed with the context error.
func (p *Processor) Process(ctx context.Context, items []Item) Result {
	slots := make([]outcome, len(items))
	resolver := naming.NewCollisionResolver()

	workers := p.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	if workers <= 1 {
		for i := range items {
			slots[i] = p.processOne(ctx, items[i])
		}
	} else {
		next := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range next {
					slots[i] = p.processOne(ctx, items[i])
				}
			}()
		}
		for i := range items {
			next <- i
		}
		close(next)
		wg.Wait()
	}

	// Names are resolved after the fact, in collection order, so duplicate
	// base names get the same suffixes however the workers were scheduled.
	var res Result
	for i, s := range slots {
		if s.err != nil {
			res.Failed = append(res.Failed, Failure{Source: items[i].Source, Message: s.err.Error()})
			continue
		}
		s.out.Name = resolver.Resolve(s.out.Source, s.out.Name)
		res.Succeeded = append(res.Succeeded, *s.out)
	}
	return res
}

func (p *Processor) processOne(ctx context.Context, item Item) outcome {
	if err := ctx.Err(); err != nil {
		return outcome{err: &ItemError{Source: item.Source, Stage: StageProcessing, Err: err}}
	}
	if item.Err != nil {
		return outcome{err: item.Err}
	}
	if !utf8.ValidString(item.Content) {
		return outcome{err: &ItemError{Source: item.Source, Stage: StageProcessing, Err: errInvalidUTF8}}
	}

	out := Output{
		Source:  item.Source,
		Name:    naming.OutputName(p.Op.Prefix(), item.Source),
		InBytes: len(item.Content),
	}
	marker := p.Codec.Marker()
	switch p.Op {
	case OpEncode:
		enc, err := p.Codec.Encode(item.Content, p.Mode)
		if err != nil {
			return outcome{err: &ItemError{Source: item.Source, Stage: StageProcessing, Err: err}}
		}
		out.Content = enc
		out.Stats = stats.NewReport(item.Content, enc, marker)
	case OpDecode:
		dec := p.Codec.Decode(item.Content)
		out.Content = dec
		out.Stats = stats.NewReport(dec, item.Content, marker)
	default:
		return outcome{err: &ItemError{Source: item.Source, Stage: StageProcessing, Err: fmt.Errorf("invalid operation %q", string(p.Op))}}
	}
	return outcome{out: &out}
}
