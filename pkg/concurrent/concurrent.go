// Package concurrent runs actions over a sequence with bounded parallelism.
package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/traitquery/pkg/sequence"
)

// Concurrent runs the action for each element of the iterator in its own goroutine and
// waits for all of them. At most limit actions run at once; limit <= 0 means no limit.
// The context passed to action is cancelled as soon as one action fails, and the first
// error is returned.
func Concurrent[T any](ctx context.Context, i *sequence.Iterator[T], limit int, action func(context.Context, T) error) error {
	group, groupCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		group.SetLimit(limit)
	}

	for value := range i.Seq() {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			return action(groupCtx, value)
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
