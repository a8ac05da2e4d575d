package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gamehall/internal/games"
)

// getOrCreateSession retrieves the session ID from the cookie or creates a new one.
func (app *App) getOrCreateSession(c *gin.Context) string {
	sessionID, err := c.Cookie(SessionCookieName)
	if err != nil || len(sessionID) < 10 {
		sessionID = uuid.NewString()
		c.SetSameSite(http.SameSiteStrictMode)
		secure := app.IsProduction
		c.SetCookie(SessionCookieName, sessionID, int(app.Config.CookieMaxAge.Seconds()), "/", "", secure, true)
		logInfoCtx(c.Request.Context(), "Created new session: %s", sessionID)
	}
	return sessionID
}

// getPlayer retrieves or creates the Player for a session and refreshes its
// last access time.
func (app *App) getPlayer(sessionID string) *Player {
	now := time.Now()

	app.PlayerMutex.RLock()
	p, exists := app.Players[sessionID]
	app.PlayerMutex.RUnlock()
	if exists {
		app.PlayerMutex.Lock()
		p.LastAccessTime = now
		app.PlayerMutex.Unlock()
		return p
	}

	app.PlayerMutex.Lock()
	defer app.PlayerMutex.Unlock()
	// Another request may have created it meanwhile.
	if p, exists = app.Players[sessionID]; exists {
		p.LastAccessTime = now
		return p
	}
	p = &Player{Pending: make(map[string]games.Report), LastAccessTime: now}
	app.Players[sessionID] = p
	logInfo("Created player for session: %s", sessionID)
	return p
}

// withPlayer runs fn while holding the session player's action lock. A second
// action while one is in flight is rejected with 409.
func (app *App) withPlayer(c *gin.Context, fn func(p *Player)) {
	p := app.getPlayer(app.getOrCreateSession(c))
	if !p.mu.TryLock() {
		logWarnCtx(c.Request.Context(), "Rejected concurrent action on %s", c.FullPath())
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": ErrorBusy})
		return
	}
	defer p.mu.Unlock()
	fn(p)
}

// reapIdlePlayers drops players idle for longer than the session timeout and
// returns how many were removed.
func (app *App) reapIdlePlayers(now time.Time) int {
	app.PlayerMutex.Lock()
	defer app.PlayerMutex.Unlock()
	removed := 0
	for id, p := range app.Players {
		if now.Sub(p.LastAccessTime) > app.Config.SessionTimeout {
			delete(app.Players, id)
			removed++
		}
	}
	return removed
}

// runReaper reaps idle players every interval until ctx is done.
func (app *App) runReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := app.reapIdlePlayers(now); n > 0 {
				logInfo("Reaped %d idle session%s", n, plural(n))
			}
		}
	}
}
