package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gamehall/internal/games"
)

// healthHandler reports liveness and what the server has loaded.
func (app *App) healthHandler(c *gin.Context) {
	uptime := time.Since(app.StartTime)
	status, code := "ok", http.StatusOK
	if err := app.Store.Ping(c.Request.Context()); err != nil {
		logWarnCtx(c.Request.Context(), "Health check: store ping failed: %v", err)
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":         status,
		"env":            map[bool]string{true: "production", false: "development"}[app.IsProduction],
		"words_loaded":   len(app.WordList),
		"subjects":       len(app.Subjects),
		"active_players": app.playerCount(),
		"uptime":         formatUptime(uptime),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
}

func (app *App) playerCount() int {
	app.PlayerMutex.RLock()
	defer app.PlayerMutex.RUnlock()
	return len(app.Players)
}

// statusFor maps game errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, games.ErrInvalidOption), errors.Is(err, games.ErrInvalidGuess):
		return http.StatusBadRequest
	case errors.Is(err, games.ErrInsufficientSubjects),
		errors.Is(err, games.ErrNotPlaying),
		errors.Is(err, games.ErrNotShowingResult),
		errors.Is(err, games.ErrInvalidTransition),
		errors.Is(err, games.ErrSessionFinished),
		errors.Is(err, games.ErrDeckExhausted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with its mapped status. Internal errors are logged
// and hidden from the client.
func respondError(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logWarnCtx(c.Request.Context(), "%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.AbortWithStatusJSON(code, gin.H{"error": ErrorInternal})
		return
	}
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}

// blockedByPendingSave answers 409 when game has an unsaved report.
func blockedByPendingSave(c *gin.Context, p *Player, game string) bool {
	if _, ok := p.Pending[game]; ok {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": ErrorPendingSave, "retry": true})
		return true
	}
	return false
}

// discardPending drops an unsaved report the player chose to abandon.
func discardPending(c *gin.Context, p *Player, game string) {
	if _, ok := p.Pending[game]; ok {
		logWarnCtx(c.Request.Context(), "Discarding unsaved %s report", game)
		delete(p.Pending, game)
	}
}

// settle saves rep for game. On failure the unsaved part stays pending on p,
// a 502 carrying view is written and false is returned.
func (app *App) settle(c *gin.Context, p *Player, game string, rep games.Report, view gin.H) bool {
	id, ok := currentIdentity(c)
	remaining, err := app.settleReport(c.Request.Context(), id, ok, rep)
	if err != nil {
		p.Pending[game] = remaining
		view["pendingSave"] = true
		c.JSON(http.StatusBadGateway, gin.H{"error": ErrorSaveFailed, "retry": true, "game": view})
		return false
	}
	delete(p.Pending, game)
	return true
}

// hangmanView renders the hangman session without leaking the word mid-round.
func hangmanView(h *games.Hangman, p *Player) gin.H {
	view := gin.H{
		"state":        h.State,
		"mask":         h.Puzzle.Mask(),
		"hint":         h.Hint,
		"letters":      h.Puzzle.Letters(),
		"wrongGuesses": h.Puzzle.WrongGuesses,
		"maxWrong":     h.Puzzle.MaxWrong,
		"streak":       h.Streak,
		"banked":       h.Banked,
		"pendingSave":  hasPending(p, games.GameHangman),
	}
	if h.State != games.StatePlaying {
		view["word"] = h.Puzzle.Target
	}
	return view
}

// higherLowerView renders the card game. The card to beat is the last one drawn.
func higherLowerView(g *games.HigherLower, p *Player) gin.H {
	card := g.Current
	if g.Next != nil {
		card = *g.Next
	}
	return gin.H{
		"card":        card,
		"score":       g.Score,
		"round":       g.Round,
		"remaining":   g.Remaining(),
		"finished":    g.Finished,
		"pendingSave": hasPending(p, games.GameHigherLower),
	}
}

// quizView renders a quiz. The answer is only revealed once the round is scored.
func quizView[Q games.Question](q *games.Quiz[Q], p *Player) gin.H {
	view := gin.H{
		"state":       q.State,
		"round":       q.Round + 1,
		"rounds":      q.Rounds(),
		"score":       q.Score,
		"question":    q.Current,
		"pendingSave": hasPending(p, q.Name()),
	}
	if q.Picked != nil {
		view["picked"] = *q.Picked
		view["correct"] = *q.Correct
	}
	if q.State != games.StatePlaying {
		for i := 0; i < q.Current.NumOptions(); i++ {
			if q.Current.IsCorrect(i) {
				view["answer"] = i
				break
			}
		}
	}
	return view
}

func hasPending(p *Player, game string) bool {
	_, ok := p.Pending[game]
	return ok
}

// ensureHangman lazily starts the player's hangman session.
func (app *App) ensureHangman(p *Player) (*games.Hangman, error) {
	if p.Hangman == nil {
		h, err := games.NewHangman(app.WordList, app.Rand)
		if err != nil {
			return nil, err
		}
		p.Hangman = h
	}
	return p.Hangman, nil
}

func (app *App) hangmanStateHandler(c *gin.Context) {
	app.withPlayer(c, func(p *Player) {
		h, err := app.ensureHangman(p)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, hangmanView(h, p))
	})
}

func (app *App) hangmanGuessHandler(c *gin.Context) {
	var req HangmanGuessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ErrorBadRequest})
		return
	}
	app.withPlayer(c, func(p *Player) {
		if blockedByPendingSave(c, p, games.GameHangman) {
			return
		}
		h, err := app.ensureHangman(p)
		if err != nil {
			respondError(c, err)
			return
		}
		rep, err := h.Guess(req.Letter)
		if err != nil {
			respondError(c, err)
			return
		}
		logInfoCtx(c.Request.Context(), "Hangman guess %q -> %s (%d/%d wrong)", req.Letter, h.State, h.Puzzle.WrongGuesses, h.Puzzle.MaxWrong)
		if !app.settle(c, p, games.GameHangman, rep, hangmanView(h, p)) {
			return
		}
		c.JSON(http.StatusOK, hangmanView(h, p))
	})
}

// hangmanActionHandler runs a report-free transition. With discard set, a
// pending report is abandoned once the transition succeeds.
func (app *App) hangmanActionHandler(action func(*games.Hangman) error, discard bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		app.withPlayer(c, func(p *Player) {
			if !discard && blockedByPendingSave(c, p, games.GameHangman) {
				return
			}
			h, err := app.ensureHangman(p)
			if err != nil {
				respondError(c, err)
				return
			}
			if err := action(h); err != nil {
				respondError(c, err)
				return
			}
			if discard {
				discardPending(c, p, games.GameHangman)
			}
			c.JSON(http.StatusOK, hangmanView(h, p))
		})
	}
}

func (app *App) hangmanBankHandler(c *gin.Context) {
	app.withPlayer(c, func(p *Player) {
		if blockedByPendingSave(c, p, games.GameHangman) {
			return
		}
		h, err := app.ensureHangman(p)
		if err != nil {
			respondError(c, err)
			return
		}
		rep, err := h.Bank()
		if err != nil {
			respondError(c, err)
			return
		}
		if !app.settle(c, p, games.GameHangman, rep, hangmanView(h, p)) {
			return
		}
		c.JSON(http.StatusOK, hangmanView(h, p))
	})
}

// newHigherLower deals a fresh card game for the player.
func (app *App) newHigherLower(c *gin.Context, p *Player) (*games.HigherLower, error) {
	g, err := games.NewHigherLower(c.Request.Context(), app.NewDeck())
	if err != nil {
		return nil, err
	}
	p.HigherLower = g
	return g, nil
}

func (app *App) higherLowerStateHandler(c *gin.Context) {
	app.withPlayer(c, func(p *Player) {
		g := p.HigherLower
		if g == nil {
			var err error
			if g, err = app.newHigherLower(c, p); err != nil {
				respondError(c, err)
				return
			}
		}
		c.JSON(http.StatusOK, higherLowerView(g, p))
	})
}

func (app *App) higherLowerGuessHandler(c *gin.Context) {
	var req HigherLowerGuessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ErrorBadRequest})
		return
	}
	app.withPlayer(c, func(p *Player) {
		if blockedByPendingSave(c, p, games.GameHigherLower) {
			return
		}
		g := p.HigherLower
		if g == nil {
			var err error
			if g, err = app.newHigherLower(c, p); err != nil {
				respondError(c, err)
				return
			}
		}
		turn, err := g.Guess(c.Request.Context(), games.Guess(req.Guess))
		if err != nil {
			respondError(c, err)
			return
		}
		view := higherLowerView(g, p)
		view["turn"] = turn
		if !app.settle(c, p, games.GameHigherLower, turn.Report, view) {
			return
		}
		c.JSON(http.StatusOK, view)
	})
}

func (app *App) higherLowerResetHandler(c *gin.Context) {
	app.withPlayer(c, func(p *Player) {
		discardPending(c, p, games.GameHigherLower)
		g, err := app.newHigherLower(c, p)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, higherLowerView(g, p))
	})
}

// quizRoutes serves one quiz kind. slot points at the player's session for
// that kind and create starts a new one.
type quizRoutes[Q games.Question] struct {
	app    *App
	game   string
	slot   func(p *Player) **games.Quiz[Q]
	create func() (*games.Quiz[Q], error)
}

func (r quizRoutes[Q]) ensure(p *Player) (*games.Quiz[Q], error) {
	slot := r.slot(p)
	if *slot == nil {
		q, err := r.create()
		if err != nil {
			return nil, err
		}
		*slot = q
	}
	return *slot, nil
}

func (r quizRoutes[Q]) register(rg *gin.RouterGroup, limit gin.HandlerFunc) {
	rg.GET("", r.state)
	rg.POST("/pick", limit, r.pick)
	rg.POST("/next", limit, r.next)
	rg.POST("/replay", limit, r.replay)
	rg.POST("/reset", limit, r.reset)
}

func (r quizRoutes[Q]) state(c *gin.Context) {
	r.app.withPlayer(c, func(p *Player) {
		q, err := r.ensure(p)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, quizView(q, p))
	})
}

func (r quizRoutes[Q]) pick(c *gin.Context) {
	var req PickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ErrorBadRequest})
		return
	}
	r.app.withPlayer(c, func(p *Player) {
		if blockedByPendingSave(c, p, r.game) {
			return
		}
		q, err := r.ensure(p)
		if err != nil {
			respondError(c, err)
			return
		}
		if _, err := q.Pick(*req.Option); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, quizView(q, p))
	})
}

func (r quizRoutes[Q]) next(c *gin.Context) {
	r.app.withPlayer(c, func(p *Player) {
		if blockedByPendingSave(c, p, r.game) {
			return
		}
		q, err := r.ensure(p)
		if err != nil {
			respondError(c, err)
			return
		}
		rep, err := q.Advance()
		if err != nil {
			respondError(c, err)
			return
		}
		if q.State == games.StateFinished {
			logInfoCtx(c.Request.Context(), "%s session finished with %d/%d", r.game, q.Score, q.Rounds())
			if !r.app.settle(c, p, r.game, rep, quizView(q, p)) {
				return
			}
			if err := q.Acknowledge(); err != nil {
				respondError(c, err)
				return
			}
		}
		c.JSON(http.StatusOK, quizView(q, p))
	})
}

func (r quizRoutes[Q]) replay(c *gin.Context) {
	r.app.withPlayer(c, func(p *Player) {
		q, err := r.ensure(p)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := q.Replay(); err != nil {
			respondError(c, err)
			return
		}
		discardPending(c, p, r.game)
		c.JSON(http.StatusOK, quizView(q, p))
	})
}

func (r quizRoutes[Q]) reset(c *gin.Context) {
	r.app.withPlayer(c, func(p *Player) {
		slot := r.slot(p)
		if *slot != nil {
			if err := (*slot).Reset(); err != nil {
				respondError(c, err)
				return
			}
		}
		q, err := r.ensure(p)
		if err != nil {
			respondError(c, err)
			return
		}
		discardPending(c, p, r.game)
		c.JSON(http.StatusOK, quizView(q, p))
	})
}

func (app *App) sequenceRoutes() quizRoutes[games.SequenceRound] {
	return quizRoutes[games.SequenceRound]{
		app:  app,
		game: games.GameSequence,
		slot: func(p *Player) **games.Quiz[games.SequenceRound] { return &p.Sequence },
		create: func() (*games.Quiz[games.SequenceRound], error) {
			return games.NewSequenceQuiz(app.Rand), nil
		},
	}
}

func (app *App) triviaRoutes() quizRoutes[games.TriviaRound] {
	return quizRoutes[games.TriviaRound]{
		app:  app,
		game: games.GameTrivia,
		slot: func(p *Player) **games.Quiz[games.TriviaRound] { return &p.Trivia },
		create: func() (*games.Quiz[games.TriviaRound], error) {
			return games.NewTriviaQuiz(app.Picker)
		},
	}
}

// retrySaveHandler re-sends a game's pending report once.
func (app *App) retrySaveHandler(c *gin.Context) {
	game := c.Param("game")
	app.withPlayer(c, func(p *Player) {
		rep, ok := p.Pending[game]
		if !ok {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": ErrorNothingToSave})
			return
		}
		view, err := app.gameView(p, game)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": ErrorUnknownGame})
			return
		}
		if !app.settle(c, p, game, rep, view) {
			return
		}
		logInfoCtx(c.Request.Context(), "Saved pending %s report on retry", game)
		switch game {
		case games.GameSequence:
			_ = p.Sequence.Acknowledge()
		case games.GameTrivia:
			_ = p.Trivia.Acknowledge()
		}
		view, _ = app.gameView(p, game)
		c.JSON(http.StatusOK, view)
	})
}

// gameView renders the named game of p. The game must already exist.
func (app *App) gameView(p *Player, game string) (gin.H, error) {
	switch {
	case game == games.GameHangman && p.Hangman != nil:
		return hangmanView(p.Hangman, p), nil
	case game == games.GameHigherLower && p.HigherLower != nil:
		return higherLowerView(p.HigherLower, p), nil
	case game == games.GameSequence && p.Sequence != nil:
		return quizView(p.Sequence, p), nil
	case game == games.GameTrivia && p.Trivia != nil:
		return quizView(p.Trivia, p), nil
	default:
		return nil, errors.New(ErrorUnknownGame)
	}
}
