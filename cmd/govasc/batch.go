package main

import (
	"context"
	"os"

	"github.com/plan-systems/klog"
	"golang.org/x/sync/errgroup"

	"github.com/2x3systems/govasc/libvasc/pipeline"
)

// runBatch expands directory arguments and runs one pipeline per input, at most jobs at a
// time. A failed input is recorded and never stops the others; cancellation of ctx does.
func runBatch(ctx context.Context, o *pipeline.Orchestrator, args []string, jobs int) (*pipeline.Batch, error) {
	B := &pipeline.Batch{RunID: o.RunID}

	var inputs []string
	for _, arg := range args {
		fi, err := os.Stat(arg)
		if err != nil {
			B.Failures = append(B.Failures, pipeline.Failure{Input: arg, Err: err})
			klog.Errorf("%v", err)
			continue
		}
		if !fi.IsDir() {
			inputs = append(inputs, arg)
			continue
		}
		found, unknown, err := o.Inputs(arg)
		if err != nil {
			B.Failures = append(B.Failures, pipeline.Failure{Input: arg, Err: err})
			klog.Errorf("%v", err)
			continue
		}
		for _, pathname := range unknown {
			if klog.V(1) {
				klog.Infof("%s: no reader accepts this file, skipping", pathname)
			}
		}
		B.Unknown = append(B.Unknown, unknown...)
		inputs = append(inputs, found...)
	}

	o.Reserve(inputs...)
	results := make([]*pipeline.Result, len(inputs))
	errs := make([]error, len(inputs))

	var g errgroup.Group
	if jobs < 1 {
		jobs = 1
	}
	g.SetLimit(jobs)
	for i, pathname := range inputs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := o.Run(ctx, pathname)
			results[i], errs[i] = res, err
			if err != nil && ctx.Err() == nil {
				klog.Errorf("%s: %v", pathname, err)
			}
			return nil
		})
	}
	g.Wait()

	for i, res := range results {
		if res == nil {
			continue
		}
		B.Results = append(B.Results, res)
		if errs[i] != nil && ctx.Err() == nil {
			B.Failures = append(B.Failures, pipeline.Failure{Input: inputs[i], Err: errs[i]})
		}
	}
	return B, ctx.Err()
}
