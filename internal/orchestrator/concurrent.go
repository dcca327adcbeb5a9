package orchestrator

import (
	"context"
	"sync"

	"github.com/blockchain-toolbox/eth-rpc-check/internal/client"
)

type methodResult struct {
	index    int
	outcomes []client.CallOutcome
}

// runEndpointConcurrent runs the first method alone so the abort policy can
// judge the endpoint, then spreads the remaining methods over a worker pool.
// Outcomes come back in catalog order.
func (o *Orchestrator) runEndpointConcurrent(ctx context.Context, ep client.Endpoint, methods []client.Method) ([]client.CallOutcome, error) {
	if len(methods) == 0 {
		return nil, nil
	}

	first, err := o.runMethod(ctx, ep, 0, methods[0])
	o.observer.MethodFinished(ep, methods[0], 0, len(methods), first)
	if err != nil {
		return first, err
	}
	if o.cfg.Policy.SkipEndpoint(ep, 0, first) {
		o.skip(ep, len(methods)-1)
		return first, nil
	}

	rest := methods[1:]
	if len(rest) == 0 {
		return first, nil
	}

	workers := min(o.cfg.Workers, len(rest))
	workCh := make(chan int)
	go func() {
		defer close(workCh)
		for i := range rest {
			select {
			case <-ctx.Done():
				return
			case workCh <- i:
			}
		}
	}()

	resultsCh := make(chan methodResult, len(rest))
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for idx := range workCh {
				attempts, _ := o.runMethod(ctx, ep, idx+1, rest[idx])
				resultsCh <- methodResult{index: idx, outcomes: attempts}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	perMethod := make([][]client.CallOutcome, len(rest))
	for res := range resultsCh {
		perMethod[res.index] = res.outcomes
		o.observer.MethodFinished(ep, rest[res.index], res.index+1, len(methods), res.outcomes)
	}

	outcomes := first
	for _, attempts := range perMethod {
		outcomes = append(outcomes, attempts...)
	}
	return outcomes, ctx.Err()
}
