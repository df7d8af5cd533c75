package mockdraft

import "time"

// Config holds configuration for a mock draft run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Picks      int           // Number of picks to attempt
	Pool       int           // Number of available players fetched per pick
	Jitter     int           // Maximum dollars added to or taken off a price
	Seed       uint64        // Seed for nomination and price jitter
	Timeout    time.Duration // HTTP request timeout
	Settle     time.Duration // How long to wait for a pick to show on the board
	OutputFile string        // Output file for the pick transcript
	LogFile    string        // Log file for run output
	Verbose    bool          // Enable verbose logging
}

// Team mirrors one entry of GET /teams.
type Team struct {
	TeamID          string `json:"team_id"`
	Picks           int    `json:"picks"`
	Spent           int    `json:"spent"`
	BudgetRemaining int    `json:"budget_remaining"`
	SpotsRemaining  int    `json:"spots_remaining"`
	MaxBid          int    `json:"max_bid"`
}

// Player mirrors the fields of a board entry the driver needs.
type Player struct {
	PlayerID  string `json:"player_id"`
	Name      string `json:"player_name"`
	Slot      string `json:"assigned_slot"`
	Price     int    `json:"auction_value"`
	Drafted   bool   `json:"drafted"`
	DraftedBy string `json:"drafted_by"`
}

// Board mirrors GET /valuations.
type Board struct {
	RunID   string   `json:"run_id"`
	Total   int      `json:"total"`
	Players []Player `json:"players"`
}

// Pick is the body of POST /picks.
type Pick struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name,omitempty"`
	TeamID     string `json:"team_id"`
	Price      int    `json:"price"`
}

// Outcome records what happened to one submitted pick.
type Outcome struct {
	Pick
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
	Value  int    `json:"auction_value"`
	RunID  string `json:"run_id,omitempty"`
}

// Stats holds run statistics.
type Stats struct {
	PicksAttempted int
	PicksAccepted  int
	PicksRejected  int
	PicksFailed    int
	DollarsSpent   int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
