package score

// Ranking is one row of a map's leaderboard.
type Ranking struct {
	Name   string `json:"name"`
	Time   int64  `json:"time"`
	Player bool   `json:"player,omitempty"` // the requesting player
}

// Result is the server reply to an accepted submission.
type Result struct {
	Rankings []Ranking `json:"rankings"`
	Time     int64     `json:"time"`
}
