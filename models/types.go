package models

import "time"

// EventStatus is the phase the event is currently in
type EventStatus string

// Event status constants, in lifecycle order
const (
	StatusWaiting       EventStatus = "waiting"
	StatusVotingP1      EventStatus = "voting_p1"
	StatusClosedP1      EventStatus = "closed_p1"
	StatusRevealedP1    EventStatus = "revealed_p1"
	StatusVotingP2      EventStatus = "voting_p2"
	StatusClosedP2      EventStatus = "closed_p2"
	StatusRevealedFinal EventStatus = "revealed_final"
)

// Phase identifies one of the two voting rounds
type Phase string

const (
	PhaseP1 Phase = "p1"
	PhaseP2 Phase = "p2"
)

// Role of an authenticated principal
type Role string

const (
	RoleParticipant Role = "participant"
	RoleJudge       Role = "judge"
	RoleAdmin       Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleParticipant, RoleJudge, RoleAdmin:
		return true
	}
	return false
}

// TallyField names the per-team counter a phase increments
type TallyField string

const (
	TallyParticipant TallyField = "participant_vote_count"
	TallyJudge       TallyField = "judge_vote_count"
)

// Defaults applied when the event row is created or fully reset
const (
	DefaultJudgeWeight       = 0.5
	DefaultParticipantWeight = 0.5
	DefaultMaxVotes          = 3
)

// Domain types

// Event is the singleton aggregate describing the hackathon's voting state.
// Limit fields are nil when unset; see phase.MaxVotes for the precedence order.
type Event struct {
	Status                EventStatus `json:"status"`
	JudgeWeight           float64     `json:"judge_weight"`
	ParticipantWeight     float64     `json:"participant_weight"`
	MaxVotesPerUser       *int        `json:"max_votes_per_user,omitempty"`
	MaxVotesP1            *int        `json:"max_votes_p1,omitempty"`
	MaxVotesP2            *int        `json:"max_votes_p2,omitempty"`
	VotingDeadline        *time.Time  `json:"voting_deadline,omitempty"`
	AutoClose             bool        `json:"auto_close"`
	Phase1SelectedTeamIDs []string    `json:"phase1_selected_team_ids"`
	Phase1TiedTeamIDs     []string    `json:"phase1_tied_team_ids"`
	FinalRankingOverrides []string    `json:"final_ranking_overrides"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

// DefaultEvent returns the event as it looks right after setup or a full reset
func DefaultEvent() Event {
	return Event{
		Status:                StatusWaiting,
		JudgeWeight:           DefaultJudgeWeight,
		ParticipantWeight:     DefaultParticipantWeight,
		Phase1SelectedTeamIDs: []string{},
		Phase1TiedTeamIDs:     []string{},
		FinalRankingOverrides: []string{},
	}
}

type Team struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Nickname             *string   `json:"nickname,omitempty"`
	JudgeVoteCount       int       `json:"judge_vote_count"`
	ParticipantVoteCount int       `json:"participant_vote_count"`
	IsHidden             bool      `json:"is_hidden"`
	CreatedAt            time.Time `json:"created_at"`
}

// User is a voting principal. ID is the user's unique login code.
type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Role       Role      `json:"role"`
	TeamID     *string   `json:"team_id,omitempty"`
	HasVoted   bool      `json:"has_voted"`
	HasVotedP1 bool      `json:"has_voted_p1"`
	HasVotedP2 bool      `json:"has_voted_p2"`
	CreatedAt  time.Time `json:"created_at"`
}

// Vote is an immutable ballot, unique per (phase, voter)
type Vote struct {
	ID        string    `json:"id"`
	VoterID   string    `json:"voter_id"`
	Phase     Phase     `json:"phase"`
	TeamIDs   []string  `json:"team_ids"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Principal is the verified identity the auth layer hands to the core
type Principal struct {
	UID    string `json:"uid"`
	Role   Role   `json:"role"`
	TeamID string `json:"team_id,omitempty"`
}

// TeamScore is derived from team tallies and never persisted
type TeamScore struct {
	TeamID                string  `json:"team_id"`
	Name                  string  `json:"name"`
	JudgeVoteCount        int     `json:"judge_vote_count"`
	ParticipantVoteCount  int     `json:"participant_vote_count"`
	JudgeNormalized       float64 `json:"judge_normalized"`
	ParticipantNormalized float64 `json:"participant_normalized"`
	FinalScore            float64 `json:"final_score"`
	Rank                  int     `json:"rank"` // 1-indexed ranking
}

// ResetScope selects what a reset operation clears
type ResetScope string

const (
	ResetAllVotes    ResetScope = "votes"
	ResetPhase2Votes ResetScope = "phase2"
	ResetEverything  ResetScope = "all"
)

// Request types

type LoginRequest struct {
	Code string `json:"code"`
}

// SubmitVoteRequest may name the phase it targets; an empty phase means
// whichever phase is open
type SubmitVoteRequest struct {
	SelectedTeams []string `json:"selectedTeams"`
	Phase         Phase    `json:"phase,omitempty"`
}

type UpdateStatusRequest struct {
	Status EventStatus `json:"status"`
}

type UpdateConfigRequest struct {
	JudgeWeight       *float64   `json:"judge_weight,omitempty"`
	ParticipantWeight *float64   `json:"participant_weight,omitempty"`
	MaxVotesPerUser   *int       `json:"max_votes_per_user,omitempty"`
	MaxVotesP1        *int       `json:"max_votes_p1,omitempty"`
	MaxVotesP2        *int       `json:"max_votes_p2,omitempty"`
	VotingDeadline    *time.Time `json:"voting_deadline,omitempty"`
	ClearDeadline     bool       `json:"clear_deadline,omitempty"`
	AutoClose         *bool      `json:"auto_close,omitempty"`
}

type ResolvePhase1Request struct {
	SelectedTeamIDs []string `json:"selected_team_ids"`
}

type ResolveFinalRequest struct {
	RankedTeamIDs []string `json:"ranked_team_ids"`
}

type SetTeamHiddenRequest struct {
	IsHidden bool `json:"is_hidden"`
}

// Response types

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Principal Principal `json:"principal"`
}

type SubmitVoteResponse struct {
	Success bool  `json:"success"`
	Phase   Phase `json:"phase"`
}

type MeResponse struct {
	Principal  Principal `json:"principal"`
	Name       string    `json:"name"`
	HasVotedP1 bool      `json:"has_voted_p1"`
	HasVotedP2 bool      `json:"has_voted_p2"`
}

// PublicEvent is the event view any authenticated user may read
type PublicEvent struct {
	Status                EventStatus `json:"status"`
	MaxVotesP1            int         `json:"max_votes_p1"`
	MaxVotesP2            int         `json:"max_votes_p2"`
	VotingDeadline        *time.Time  `json:"voting_deadline,omitempty"`
	Phase1SelectedTeamIDs []string    `json:"phase1_selected_team_ids,omitempty"`
}

type PublicTeam struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Nickname *string `json:"nickname,omitempty"`
}

type Phase1Standing struct {
	TeamID               string `json:"team_id"`
	Name                 string `json:"name"`
	ParticipantVoteCount int    `json:"participant_vote_count"`
	Selected             bool   `json:"selected"`
}

type Phase1Results struct {
	SelectedTeamIDs []string         `json:"selected_team_ids"`
	TiedTeamIDs     []string         `json:"tied_team_ids,omitempty"`
	Standings       []Phase1Standing `json:"standings"`
}

type FinalResults struct {
	Scores           []TeamScore   `json:"scores"`
	TiedTeams        []TeamScore   `json:"tied_teams,omitempty"`
	TieGroups        [][]TeamScore `json:"tie_groups,omitempty"`
	OverridesApplied bool          `json:"overrides_applied"`
}

type ResultsResponse struct {
	Status EventStatus    `json:"status"`
	Phase1 *Phase1Results `json:"phase1,omitempty"`
	Final  *FinalResults  `json:"final,omitempty"`
}

type FinalizePhase1Response struct {
	SelectedTeamIDs []string `json:"selected_team_ids"`
	TiedTeams       []Team   `json:"tied_teams"`
}

// AdminResultsResponse is the live view; nothing is sealed for admins
type AdminResultsResponse struct {
	Event       Event         `json:"event"`
	Phase1      Phase1Results `json:"phase1"`
	Final       FinalResults  `json:"final"`
	BallotsCast map[Phase]int `json:"ballots_cast"`
}

type TransitionResponse struct {
	Event  Event                   `json:"event"`
	Phase1 *FinalizePhase1Response `json:"phase1,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
