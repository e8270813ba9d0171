package perf

import (
	"context"
	"time"
)

/*
Tracks timing blocks for a single logical operation (a CLI command, a data
operation, a test). Not safe for concurrent use; attach one per operation.
*/
type OperationPerf struct {
	Name   string
	Start  time.Time
	End    time.Time
	Blocks []PerfBlock
}

func MakeNewOperationPerf(name string) *OperationPerf {
	return &OperationPerf{
		Name:  name,
		Start: time.Now(),
	}
}

func (op *OperationPerf) EndOperation() {
	for op.EndBlock() {
	}
	op.End = time.Now()
}

func (op *OperationPerf) StartBlock(category, description string) {
	op.Blocks = append(op.Blocks, PerfBlock{
		Start:       time.Now(),
		End:         time.Time{},
		Category:    category,
		Description: description,
	})
}

func (op *OperationPerf) EndBlock() bool {
	for i := len(op.Blocks) - 1; i >= 0; i -= 1 {
		if op.Blocks[i].End.Equal(time.Time{}) {
			op.Blocks[i].End = time.Now()
			return true
		}
	}
	return false
}

type PerfBlock struct {
	Start       time.Time
	End         time.Time
	Category    string
	Description string
}

func (pb *PerfBlock) Duration() time.Duration {
	return pb.End.Sub(pb.Start)
}

func (pb *PerfBlock) DurationMs() float64 {
	return float64(pb.Duration().Nanoseconds()) / 1000 / 1000
}

type perfContextKey struct{}

func AttachPerfToContext(ctx context.Context, op *OperationPerf) context.Context {
	return context.WithValue(ctx, perfContextKey{}, op)
}

// Always returns a usable OperationPerf; an untracked context gets a
// throwaway one.
func ExtractPerf(ctx context.Context) *OperationPerf {
	if op, ok := ctx.Value(perfContextKey{}).(*OperationPerf); ok {
		return op
	}
	return MakeNewOperationPerf("untracked")
}
