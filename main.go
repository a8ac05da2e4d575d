package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"gamehall/internal/auth"
	"gamehall/internal/chat"
	"gamehall/internal/config"
	"gamehall/internal/games"
	"gamehall/internal/store"
	"gamehall/internal/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The zap logger is not configured yet.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	flush, err := initLogger(cfg.IsProduction())
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer flush()

	logInfo("Starting Game Hall in %s mode", map[bool]string{true: "production", false: "development"}[cfg.IsProduction()])
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	words, err := loadWords(cfg.WordsPath)
	if err != nil {
		logFatal("Failed to load words: %v", err)
	}
	logInfo("Loaded %d words from %s", len(words), cfg.WordsPath)

	subjects, err := loadSubjects(cfg.SubjectsPath)
	if err != nil {
		logFatal("Failed to load trivia subjects: %v", err)
	}
	logInfo("Loaded %d trivia subjects from %s", len(subjects), cfg.SubjectsPath)
	if len(subjects) < games.OptionCount {
		logWarn("Only %d trivia subjects; trivia rounds will be refused", len(subjects))
	}

	db, err := store.NewSQLiteDB(cfg.DatabasePath)
	if err != nil {
		logFatal("Failed to open database %s: %v", cfg.DatabasePath, err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		logFatal("Failed to migrate database: %v", err)
	}

	verifier, err := auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		logFatal("Failed to configure auth: %v", err)
	}

	app := newApp(cfg, words, subjects, db, verifier, games.CryptoRand())
	router := app.setupRouter()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go app.runReaper(ctx, ReapInterval)

	app.startServer(router)
}

// newApp wires the shared server state.
func newApp(cfg config.Config, words []types.WordEntry, subjects []types.Subject, st Store, verifier *auth.Verifier, rng games.Rand) *App {
	return &App{
		Config:       cfg,
		IsProduction: cfg.IsProduction(),
		StartTime:    time.Now(),
		WordList:     words,
		Subjects:     subjects,
		Picker:       games.NewTriviaPicker(subjects, rng),
		Rand:         rng,
		NewDeck:      func() games.CardSource { return games.NewDeck(rng) },
		Players:      make(map[string]*Player),
		LimiterMap:   make(map[string]*rate.Limiter),
		Store:        st,
		Verifier:     verifier,
		Chat:         chat.NewHub(st, cfg.ChatHistoryLimit),
	}
}

// setupRouter builds the gin engine with every route.
func (app *App) setupRouter() *gin.Engine {
	registerValidators()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), requestIDMiddleware())
	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression,
		ginGzip.WithExcludedExtensions([]string{".svg", ".ico", ".png", ".jpg", ".jpeg", ".gif"}),
		ginGzip.WithExcludedPaths([]string{"/static/fonts", RouteAPI + RouteChatStream})))

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logWarn("Failed to set trusted proxies: %v", err)
	}
	router.Use(app.cacheHeadersMiddleware())

	if dirExists(app.Config.StaticDir) {
		logInfo("Serving static assets from %s", app.Config.StaticDir)
		router.Static("/static", app.Config.StaticDir)
	}

	router.GET(RouteHealth, app.healthHandler)

	limit := app.rateLimitMiddleware()
	api := router.Group(RouteAPI, app.authMiddleware())

	hangman := api.Group(RouteGames + "/" + games.GameHangman)
	hangman.GET("", app.hangmanStateHandler)
	hangman.POST("/guess", limit, app.hangmanGuessHandler)
	hangman.POST("/continue", limit, app.hangmanActionHandler((*games.Hangman).Continue, false))
	hangman.POST("/bank", limit, app.hangmanBankHandler)
	hangman.POST("/replay", limit, app.hangmanActionHandler((*games.Hangman).Replay, true))
	hangman.POST("/quit", limit, app.hangmanActionHandler((*games.Hangman).Quit, true))

	higherLower := api.Group(RouteGames + "/" + games.GameHigherLower)
	higherLower.GET("", app.higherLowerStateHandler)
	higherLower.POST("/guess", limit, app.higherLowerGuessHandler)
	higherLower.POST("/reset", limit, app.higherLowerResetHandler)

	app.sequenceRoutes().register(api.Group(RouteGames+"/"+games.GameSequence), limit)
	app.triviaRoutes().register(api.Group(RouteGames+"/"+games.GameTrivia), limit)

	api.POST(RouteGames+"/:game/retry-save", limit, requireAuth(), app.retrySaveHandler)

	api.GET(RouteRanking, app.rankingHandler)
	api.GET(RouteResults, app.resultsHandler)
	api.GET(RouteMe, requireAuth(), meHandler)

	api.GET(RouteChat, app.chatHistoryHandler)
	api.POST(RouteChat, limit, requireAuth(), app.chatPostHandler)
	api.GET(RouteChatStream, app.chatStreamHandler)

	api.POST(RouteSurveys, limit, requireAuth(), app.surveySubmitHandler)
	api.GET(RouteSurveys, requireAdmin(), app.surveyListHandler)
	api.DELETE(RouteSurveys, requireAdmin(), app.surveyDeleteHandler)

	return router
}

func (app *App) startServer(router *gin.Engine) {
	srv := &http.Server{
		Addr:              ":" + app.Config.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint
		logInfo("Shutdown signal received, shutting down server gracefully...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logWarn("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	logInfo("Server starting on http://localhost:%s", app.Config.Port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logFatal("Server failed to start: %v", err)
	}
	<-idleConnsClosed
	logInfo("Server shutdown complete")
}
