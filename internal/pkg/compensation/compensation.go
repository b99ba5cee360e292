// Package compensation pairs a local forward effect with its inverse so a
// failed remote call leaves no partial state behind.
package compensation

import (
	"context"
	"errors"
	"fmt"
)

// Step is one side of a compensated command.
type Step func(ctx context.Context) error

// Run applies forward, then calls remote. If remote fails, inverse is applied
// and the remote error is returned. If forward fails, remote is never called.
//
// An inverse failure is joined onto the remote error.
func Run(ctx context.Context, forward, inverse, remote Step) error {
	if forward != nil {
		if err := forward(ctx); err != nil {
			return err
		}
	}

	err := remote(ctx)
	if err == nil {
		return nil
	}

	if inverse != nil {
		if invErr := inverse(ctx); invErr != nil {
			return errors.Join(err, fmt.Errorf("compensation failed: %w", invErr))
		}
	}
	return err
}

// Command bundles the three steps for callers that build them up front.
type Command struct {
	Forward Step
	Inverse Step
	Remote  Step
}

func (c Command) Run(ctx context.Context) error {
	return Run(ctx, c.Forward, c.Inverse, c.Remote)
}
