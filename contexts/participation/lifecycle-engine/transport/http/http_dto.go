package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateInitiativeRequest struct {
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle"`
	Summary         string `json:"summary"`
	Problem         string `json:"problem"`
	Demand          string `json:"demand"`
	CostEstimate    string `json:"cost_estimate"`
	FundingProposal string `json:"funding_proposal"`
	Methodology     string `json:"methodology"`
	InitialArgument string `json:"initial_argument"`
	Context         string `json:"context"`
	Scope           string `json:"scope"`
	Topic           string `json:"topic"`
	VariantOf       string `json:"variant_of,omitempty"`
	InitiatorID     string `json:"initiator_id"`
}

type UpdateInitiativeRequest struct {
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle"`
	Summary         string `json:"summary"`
	Problem         string `json:"problem"`
	Demand          string `json:"demand"`
	CostEstimate    string `json:"cost_estimate"`
	FundingProposal string `json:"funding_proposal"`
	Methodology     string `json:"methodology"`
	InitialArgument string `json:"initial_argument"`
	Context         string `json:"context"`
	Scope           string `json:"scope"`
	Topic           string `json:"topic"`
}

type InitiativeResponse struct {
	ID              string     `json:"id"`
	Slug            string     `json:"slug"`
	Title           string     `json:"title"`
	Subtitle        string     `json:"subtitle,omitempty"`
	Summary         string     `json:"summary,omitempty"`
	Problem         string     `json:"problem,omitempty"`
	Demand          string     `json:"demand,omitempty"`
	CostEstimate    string     `json:"cost_estimate,omitempty"`
	FundingProposal string     `json:"funding_proposal,omitempty"`
	Methodology     string     `json:"methodology,omitempty"`
	InitialArgument string     `json:"initial_argument,omitempty"`
	Context         string     `json:"context,omitempty"`
	Scope           string     `json:"scope,omitempty"`
	Topic           string     `json:"topic,omitempty"`
	State           string     `json:"state"`
	VariantOf       string     `json:"variant_of,omitempty"`
	EligibleVoters  *int       `json:"eligible_voters,omitempty"`
	Version         int64      `json:"version"`
	CreatedAt       time.Time  `json:"created_at"`
	ChangedAt       time.Time  `json:"changed_at"`
	WentPublicAt    *time.Time `json:"went_public_at,omitempty"`
	WasClosedAt     *time.Time `json:"was_closed_at,omitempty"`
}

type CreatePolicyRequest struct {
	Title       string            `json:"title"`
	Fields      map[string]string `json:"fields"`
	VariantOf   string            `json:"variant_of,omitempty"`
	InitiatorID string            `json:"initiator_id"`
}

type UpdatePolicyRequest struct {
	Title  string            `json:"title"`
	Fields map[string]string `json:"fields"`
}

type PolicyResponse struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Fields         map[string]string `json:"fields"`
	State          string            `json:"state"`
	VariantOf      string            `json:"variant_of,omitempty"`
	EligibleVoters *int              `json:"eligible_voters,omitempty"`
	Version        int64             `json:"version"`
	CreatedAt      time.Time         `json:"created_at"`
	ChangedAt      time.Time         `json:"changed_at"`
	WasClosedAt    *time.Time        `json:"was_closed_at,omitempty"`
}

type StatusResponse struct {
	State             string     `json:"state"`
	Supporters        int        `json:"supporters"`
	AckedInitiators   int        `json:"acked_initiators"`
	Quorum            int        `json:"quorum"`
	ReviewsSettled    int        `json:"reviews_settled"`
	RequiredReviewers int        `json:"required_reviewers"`
	Ready             bool       `json:"ready"`
	EndOfPhase        *time.Time `json:"end_of_phase,omitempty"`
}

type AddSupporterRequest struct {
	UserID    string `json:"user_id"`
	Initiator bool   `json:"initiator"`
	Public    bool   `json:"public"`
}

type AcknowledgeRequest struct {
	UserID string `json:"user_id"`
	Ack    bool   `json:"ack"`
}

type SupporterResponse struct {
	UserID    string    `json:"user_id"`
	Initiator bool      `json:"initiator"`
	Ack       bool      `json:"ack"`
	CreatedAt time.Time `json:"created_at"`
}

type SupportReportResponse struct {
	Supporters      int     `json:"supporters"`
	Quorum          int     `json:"quorum"`
	RelativePercent float64 `json:"relative_percent"`
	QuorumReached   bool    `json:"quorum_reached"`
}

type CastVoteRequest struct {
	UserID string `json:"user_id"`
	Value  string `json:"value"`
	Reason string `json:"reason,omitempty"`
}

type VoteResponse struct {
	UserID    string    `json:"user_id"`
	Value     string    `json:"value"`
	Reason    string    `json:"reason,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

type BallotReportResponse struct {
	Yes      int  `json:"yes"`
	No       int  `json:"no"`
	Abstain  int  `json:"abstain"`
	Voters   int  `json:"voters"`
	Accepted bool `json:"accepted"`
}

type CloseVotingRequest struct {
	EligibleVoters *int `json:"eligible_voters,omitempty"`
}

type SetQuorumRequest struct {
	Value int `json:"value"`
}

type QuorumResponse struct {
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}
