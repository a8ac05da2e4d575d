package main

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"gamehall/internal/auth"
	"gamehall/internal/games"
	"gamehall/internal/store"
)

// errSaveFailed wraps collaborator failures that leave a pending report.
var errSaveFailed = errors.New(ErrorSaveFailed)

// settleReport forwards rep to the results and ranking collaborators
// concurrently. It returns the part of rep that still needs saving, which is
// empty on success. Anonymous players have nothing persisted.
func (app *App) settleReport(ctx context.Context, id auth.Identity, hasID bool, rep games.Report) (games.Report, error) {
	if rep.Empty() {
		return games.Report{}, nil
	}
	if !hasID {
		logInfoCtx(ctx, "Not saving anonymous report")
		return games.Report{}, nil
	}

	var (
		mu        sync.Mutex
		remaining = rep
	)
	// Both writes always run; whichever fails stays in remaining.
	var g errgroup.Group
	if rep.Result != nil {
		g.Go(func() error {
			r := &store.Result{
				UID:     id.UID,
				Email:   id.Email,
				Game:    rep.Result.Game,
				Points:  rep.Result.Points,
				Details: rep.Result.Details,
			}
			if err := app.Store.SaveResult(ctx, r); err != nil {
				return err
			}
			mu.Lock()
			remaining.Result = nil
			mu.Unlock()
			return nil
		})
	}
	if rep.Ranking != nil {
		g.Go(func() error {
			if err := app.Store.AddPoints(ctx, id.UID, id.Email, *rep.Ranking); err != nil {
				return err
			}
			mu.Lock()
			remaining.Ranking = nil
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logWarnCtx(ctx, "Saving report for %s failed: %v", id.UID, err)
		return remaining, errors.Join(errSaveFailed, err)
	}
	return games.Report{}, nil
}
