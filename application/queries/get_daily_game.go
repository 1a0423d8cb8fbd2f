package queries

import (
	"dailytens/domain/game"
)

// GetDailyGameQuery asks for the game of a date. An empty Date means today.
type GetDailyGameQuery struct {
	Date string
}

// Validate validates the GetDailyGameQuery
func (q GetDailyGameQuery) Validate() error {
	if q.Date == "" {
		return nil
	}
	return game.ValidateDate(q.Date)
}

// GetDailyGameResult is the resolved game plus how it was obtained
type GetDailyGameResult struct {
	Game          *game.Record `json:"game"`
	RequestedDate string       `json:"requestedDate"`
	ResolvedDate  string       `json:"resolvedDate"`
	Source        string       `json:"source"`
}
