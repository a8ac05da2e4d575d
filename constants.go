package main

import "time"

// Session configuration constants
const (
	SessionCookieName = "session_id"
	ReapInterval      = 5 * time.Minute
)

// Route constants
const (
	RouteHealth     = "/healthz"
	RouteAPI        = "/api"
	RouteGames      = "/games"
	RouteRanking    = "/ranking"
	RouteResults    = "/results"
	RouteMe         = "/me"
	RouteChat       = "/chat/messages"
	RouteChatStream = "/chat/ws"
	RouteSurveys    = "/surveys"
)

// Error message constants
const (
	ErrorBusy          = "An action is already in progress."
	ErrorPendingSave   = "The last result has not been saved yet. Retry the save or start over."
	ErrorNothingToSave = "There is nothing waiting to be saved."
	ErrorSaveFailed    = "Your result could not be saved."
	ErrorSignInNeeded  = "Sign in to continue."
	ErrorAdminOnly     = "Only administrators can do that."
	ErrorBadRequest    = "Malformed request."
	ErrorUnknownGame   = "Unknown game."
	ErrorInternal      = "Something went wrong."
)

// Context key constants
const (
	requestIDKey contextKey = "request_id"
	identityKey             = "identity"
)

// Results and surveys listing sizes.
const (
	ResultsListLimit = 100
	SurveyListLimit  = 200
)
