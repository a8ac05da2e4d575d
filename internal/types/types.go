package types

// WordEntry is a hangman target word with a short hint.
type WordEntry struct {
	Word string `json:"word"`
	Hint string `json:"hint"`
}

// WordList is the on-disk shape of data/words.json.
type WordList struct {
	Words []WordEntry `json:"words"`
}

// Subject is a trivia subject; for the flag game ID is an ISO 3166 alpha-2 code.
type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SubjectList is the on-disk shape of data/countries.json.
type SubjectList struct {
	Subjects []Subject `json:"subjects"`
}
