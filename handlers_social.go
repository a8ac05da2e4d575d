package main

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"gamehall/internal/chat"
	"gamehall/internal/games"
	"gamehall/internal/store"
)

var knownGames = []string{games.GameHangman, games.GameHigherLower, games.GameSequence, games.GameTrivia}

func (app *App) rankingHandler(c *gin.Context) {
	board, err := app.Store.Leaderboard(c.Request.Context(), app.Config.LeaderboardLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ranking": board})
}

func (app *App) resultsHandler(c *gin.Context) {
	game := c.Query("game")
	if game != "" && !lo.Contains(knownGames, game) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ErrorUnknownGame})
		return
	}
	results, err := app.Store.ListResults(c.Request.Context(), game, ResultsListLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func meHandler(c *gin.Context) {
	id, _ := currentIdentity(c)
	c.JSON(http.StatusOK, id)
}

// chatStatus maps chat validation errors to 400.
func chatStatus(err error) int {
	switch {
	case errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrMessageTooLong):
		return http.StatusBadRequest
	case errors.Is(err, chat.ErrNotSignedIn):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (app *App) chatHistoryHandler(c *gin.Context) {
	msgs, err := app.Chat.History(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (app *App) chatPostHandler(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ErrorBadRequest})
		return
	}
	id, _ := currentIdentity(c)
	msg, err := app.Chat.Post(c.Request.Context(), id, req.Text)
	if err != nil {
		if code := chatStatus(err); code != http.StatusInternalServerError {
			c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const (
	chatWriteWait  = 10 * time.Second
	chatSendBuffer = 32
	chatReadLimit  = 4096
)

// chatFrame is a server-to-client websocket message.
type chatFrame struct {
	Type     string              `json:"type"`
	Message  *store.ChatMessage  `json:"message,omitempty"`
	Messages []store.ChatMessage `json:"messages,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// chatStreamHandler sends the history, then live messages. Frames received
// from the client are posted as the authenticated user.
func (app *App) chatStreamHandler(c *gin.Context) {
	ctx := c.Request.Context()
	history, err := app.Chat.History(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logWarnCtx(ctx, "WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()
	// The server's ReadTimeout would otherwise end idle streams.
	_ = conn.SetReadDeadline(time.Time{})
	conn.SetReadLimit(chatReadLimit)

	msgs, cancel := app.Chat.Channel(chatSendBuffer)
	defer cancel()

	var writeMu sync.Mutex
	write := func(f chatFrame) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(chatWriteWait))
		return conn.WriteJSON(f)
	}

	if err := write(chatFrame{Type: "history", Messages: history}); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for m := range msgs {
			if err := write(chatFrame{Type: "message", Message: &m}); err != nil {
				logWarnCtx(ctx, "Error writing chat frame, closing conn: %v", err)
				conn.Close()
				return
			}
		}
	}()

	id, signedIn := currentIdentity(c)
	for {
		var in ChatRequest
		if err := conn.ReadJSON(&in); err != nil {
			break
		}
		if !signedIn {
			_ = write(chatFrame{Type: "error", Error: chat.ErrNotSignedIn.Error()})
			continue
		}
		if _, err := app.Chat.Post(ctx, id, in.Text); err != nil {
			msg := err.Error()
			if chatStatus(err) == http.StatusInternalServerError {
				logWarnCtx(ctx, "Chat post failed: %v", err)
				msg = ErrorInternal
			}
			_ = write(chatFrame{Type: "error", Error: msg})
		}
	}
	cancel()
	<-done
}

var registerValidatorsOnce sync.Once

// registerValidators adds the survey rules to gin's validator.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			logFatal("Unexpected binding validator %T", binding.Validator.Engine())
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		if err := v.RegisterValidation("personname", validPersonName); err != nil {
			logFatal("Register personname: %v", err)
		}
		if err := v.RegisterValidation("digits", validDigits); err != nil {
			logFatal("Register digits: %v", err)
		}
		v.RegisterStructValidation(validateSurvey, SurveyRequest{})
	})
}

// validPersonName accepts letters and spaces only.
func validPersonName(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return strings.TrimSpace(s) != "" && strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && r != ' '
	}) < 0
}

// validDigits accepts ASCII digits only.
func validDigits(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s != "" && strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) < 0
}

func validateSurvey(sl validator.StructLevel) {
	req := sl.Current().Interface().(SurveyRequest)
	p := req.Played
	if !p.Hangman && !p.HigherLower && !p.Trivia && !p.Sequences {
		sl.ReportError(req.Played, "played", "Played", "playedany", "")
	}
}

// surveyErrors lists the failing rule per field.
func surveyErrors(err error) gin.H {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return gin.H{"error": ErrorBadRequest}
	}
	fields := lo.Associate(verrs, func(fe validator.FieldError) (string, string) {
		return fe.Field(), fe.Tag()
	})
	return gin.H{"error": "Invalid survey.", "fields": fields}
}

// surveyView adds the rendered played-games summary.
type surveyView struct {
	store.Survey
	PlayedSummary string `json:"playedSummary"`
}

func newSurveyView(sv store.Survey) surveyView {
	return surveyView{Survey: sv, PlayedSummary: sv.Played.Summary()}
}

func (app *App) surveySubmitHandler(c *gin.Context) {
	var req SurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, surveyErrors(err))
		return
	}
	id, _ := currentIdentity(c)
	sv := store.Survey{
		UID:          id.UID,
		Email:        id.Email,
		Name:         strings.TrimSpace(req.Name),
		Age:          req.Age,
		Phone:        req.Phone,
		Satisfaction: req.Satisfaction,
		Played: store.PlayedGames{
			Hangman:     req.Played.Hangman,
			HigherLower: req.Played.HigherLower,
			Trivia:      req.Played.Trivia,
			Sequences:   req.Played.Sequences,
		},
		FavoriteGame: req.FavoriteGame,
		Suggestion:   strings.TrimSpace(req.Suggestion),
		Comment:      strings.TrimSpace(req.Comment),
	}
	if err := app.Store.SaveSurvey(c.Request.Context(), &sv); err != nil {
		respondError(c, err)
		return
	}
	logInfoCtx(c.Request.Context(), "Survey %s saved for %s", sv.ID, id.UID)
	c.JSON(http.StatusCreated, newSurveyView(sv))
}

func (app *App) surveyListHandler(c *gin.Context) {
	list, err := app.Store.ListSurveys(c.Request.Context(), SurveyListLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"surveys": lo.Map(list, func(sv store.Survey, _ int) surveyView {
		return newSurveyView(sv)
	})})
}

func (app *App) surveyDeleteHandler(c *gin.Context) {
	n, err := app.Store.DeleteAllSurveys(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	logInfoCtx(c.Request.Context(), "Deleted %d survey%s", n, plural(int(n)))
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}
