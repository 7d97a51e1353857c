package models

type MultipleChoiceAnswer struct {
	SelectedOptions []string `json:"selected_options"`
	TimeSpent       int      `json:"time_spent"`
}

type TrueFalseAnswer struct {
	Answer    bool `json:"answer"`
	TimeSpent int  `json:"time_spent"`
}

type FillBlankAnswer struct {
	Text      string `json:"text"`
	TimeSpent int    `json:"time_spent"`
}

type SingleChoiceAnswer struct {
	SelectedIndex int `json:"selected_index"`
	TimeSpent     int `json:"time_spent"`
}

type MatchingAnswer struct {
	Pairs     []MatchPair `json:"pairs"`
	TimeSpent int         `json:"time_spent"`
}

type OrderingAnswer struct {
	Order     []string `json:"order"` // option IDs in submitted order
	TimeSpent int      `json:"time_spent"`
}

type UnscrambleAnswer struct {
	Word      string `json:"word"`
	TimeSpent int    `json:"time_spent"`
}
