package games

// State is the lifecycle position of a game session.
type State string

const (
	StatePlaying       State = "playing"
	StateShowingResult State = "showing_result"
	StateWon           State = "won"
	StateLost          State = "lost"
	StateAskReplay     State = "ask_replay"
	StateMaxStreak     State = "max_streak"
	StateFinished      State = "finished"
)

// Game names used when results are saved.
const (
	GameHangman     = "hangman"
	GameHigherLower = "higher-lower"
	GameSequence    = "sequence"
	GameTrivia      = "trivia"
)

// ResultRecord is a single row for the results collaborator.
type ResultRecord struct {
	Game    string         `json:"game"`
	Points  int            `json:"points"`
	Details map[string]any `json:"details,omitempty"`
}

// Report lists what a state transition needs persisted. The engine never talks
// to collaborators; callers forward a non-empty Report to them.
type Report struct {
	Result  *ResultRecord `json:"result,omitempty"`
	Ranking *int          `json:"ranking,omitempty"`
}

// Empty reports whether there is nothing to persist.
func (r Report) Empty() bool {
	return r.Result == nil && r.Ranking == nil
}

func points(n int) *int { return &n }
