package httpadapter

import (
	"context"
	"log/slog"

	"agora/contexts/participation/lifecycle-engine/application/commands"
	"agora/contexts/participation/lifecycle-engine/application/queries"
	"agora/contexts/participation/lifecycle-engine/domain/entities"
	httptransport "agora/contexts/participation/lifecycle-engine/transport/http"
)

type Handler struct {
	Proposals commands.ProposalUseCase
	Advance   commands.AdvanceUseCase
	Support   commands.SupportUseCase
	Votes     commands.VoteUseCase
	Quorums   commands.QuorumUseCase
	Status    queries.StatusQuery
	Tallies   queries.TallyQuery
	Supports  queries.SupportQuery
	Logger    *slog.Logger
}

func (h Handler) CreateInitiativeHandler(ctx context.Context, req httptransport.CreateInitiativeRequest) (httptransport.InitiativeResponse, error) {
	ini, err := h.Proposals.CreateInitiative(ctx, commands.CreateInitiativeCommand{
		InitiatorID:     req.InitiatorID,
		Title:           req.Title,
		Subtitle:        req.Subtitle,
		Summary:         req.Summary,
		Problem:         req.Problem,
		Demand:          req.Demand,
		CostEstimate:    req.CostEstimate,
		FundingProposal: req.FundingProposal,
		Methodology:     req.Methodology,
		InitialArgument: req.InitialArgument,
		Context:         req.Context,
		Scope:           req.Scope,
		Topic:           req.Topic,
		VariantOf:       req.VariantOf,
	})
	if err != nil {
		return httptransport.InitiativeResponse{}, err
	}
	return initiativeResponse(ini), nil
}

func (h Handler) GetInitiativeHandler(ctx context.Context, id string) (httptransport.InitiativeResponse, error) {
	ini, err := h.Proposals.Proposals.GetInitiative(ctx, id)
	if err != nil {
		return httptransport.InitiativeResponse{}, err
	}
	return initiativeResponse(ini), nil
}

func (h Handler) UpdateInitiativeHandler(ctx context.Context, id string, req httptransport.UpdateInitiativeRequest) (httptransport.InitiativeResponse, error) {
	ini, err := h.Proposals.UpdateInitiativeContent(ctx, commands.UpdateInitiativeContentCommand{
		ID:              id,
		Title:           req.Title,
		Subtitle:        req.Subtitle,
		Summary:         req.Summary,
		Problem:         req.Problem,
		Demand:          req.Demand,
		CostEstimate:    req.CostEstimate,
		FundingProposal: req.FundingProposal,
		Methodology:     req.Methodology,
		InitialArgument: req.InitialArgument,
		Context:         req.Context,
		Scope:           req.Scope,
		Topic:           req.Topic,
	})
	if err != nil {
		return httptransport.InitiativeResponse{}, err
	}
	return initiativeResponse(ini), nil
}

func (h Handler) AdvanceInitiativeHandler(ctx context.Context, id string) (httptransport.InitiativeResponse, error) {
	ini, err := h.Advance.AdvanceInitiative(ctx, id)
	if err != nil {
		return httptransport.InitiativeResponse{}, err
	}
	return initiativeResponse(ini), nil
}

func (h Handler) CloseInitiativeVotingHandler(ctx context.Context, id string, req httptransport.CloseVotingRequest) (httptransport.InitiativeResponse, error) {
	ini, err := h.Advance.CloseInitiativeVoting(ctx, id, req.EligibleVoters)
	if err != nil {
		return httptransport.InitiativeResponse{}, err
	}
	return initiativeResponse(ini), nil
}

func (h Handler) HideInitiativeHandler(ctx context.Context, id string) (httptransport.InitiativeResponse, error) {
	ini, err := h.Advance.HideInitiative(ctx, id)
	if err != nil {
		return httptransport.InitiativeResponse{}, err
	}
	return initiativeResponse(ini), nil
}

func (h Handler) InitiativeStatusHandler(ctx context.Context, id string) (httptransport.StatusResponse, error) {
	status, err := h.Status.InitiativeStatus(ctx, id)
	if err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{
		State:             string(status.Initiative.State),
		Supporters:        status.Supporters,
		AckedInitiators:   status.AckedInitiators,
		Quorum:            status.Quorum,
		ReviewsSettled:    status.Moderation.Settled(),
		RequiredReviewers: status.RequiredReviewers,
		Ready:             status.Ready,
		EndOfPhase:        status.EndOfPhase,
	}, nil
}

func (h Handler) CreatePolicyHandler(ctx context.Context, req httptransport.CreatePolicyRequest) (httptransport.PolicyResponse, error) {
	pol, err := h.Proposals.CreatePolicy(ctx, commands.CreatePolicyCommand{
		InitiatorID: req.InitiatorID,
		Title:       req.Title,
		Fields:      req.Fields,
		VariantOf:   req.VariantOf,
	})
	if err != nil {
		return httptransport.PolicyResponse{}, err
	}
	return policyResponse(pol), nil
}

func (h Handler) GetPolicyHandler(ctx context.Context, id string) (httptransport.PolicyResponse, error) {
	pol, err := h.Proposals.Proposals.GetPolicy(ctx, id)
	if err != nil {
		return httptransport.PolicyResponse{}, err
	}
	return policyResponse(pol), nil
}

func (h Handler) UpdatePolicyHandler(ctx context.Context, id string, req httptransport.UpdatePolicyRequest) (httptransport.PolicyResponse, error) {
	pol, err := h.Proposals.UpdatePolicyContent(ctx, commands.UpdatePolicyContentCommand{
		ID:     id,
		Title:  req.Title,
		Fields: req.Fields,
	})
	if err != nil {
		return httptransport.PolicyResponse{}, err
	}
	return policyResponse(pol), nil
}

func (h Handler) AdvancePolicyHandler(ctx context.Context, id string) (httptransport.PolicyResponse, error) {
	pol, err := h.Advance.AdvancePolicy(ctx, id)
	if err != nil {
		return httptransport.PolicyResponse{}, err
	}
	return policyResponse(pol), nil
}

func (h Handler) ClosePolicyVotingHandler(ctx context.Context, id string, req httptransport.CloseVotingRequest) (httptransport.PolicyResponse, error) {
	pol, err := h.Advance.ClosePolicyVoting(ctx, id, req.EligibleVoters)
	if err != nil {
		return httptransport.PolicyResponse{}, err
	}
	return policyResponse(pol), nil
}

func (h Handler) ChallengePolicyHandler(ctx context.Context, id string) (httptransport.PolicyResponse, error) {
	pol, err := h.Advance.ChallengePolicy(ctx, id)
	if err != nil {
		return httptransport.PolicyResponse{}, err
	}
	return policyResponse(pol), nil
}

func (h Handler) HidePolicyHandler(ctx context.Context, id string) (httptransport.PolicyResponse, error) {
	pol, err := h.Advance.HidePolicy(ctx, id)
	if err != nil {
		return httptransport.PolicyResponse{}, err
	}
	return policyResponse(pol), nil
}

func (h Handler) PolicyStatusHandler(ctx context.Context, id string) (httptransport.StatusResponse, error) {
	status, err := h.Status.PolicyStatus(ctx, id)
	if err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{
		State:             string(status.Policy.State),
		Supporters:        status.Supporters,
		AckedInitiators:   status.AckedInitiators,
		Quorum:            status.Quorum,
		ReviewsSettled:    status.Moderation.Settled(),
		RequiredReviewers: status.RequiredReviewers,
		Ready:             status.Ready,
		EndOfPhase:        status.EndOfPhase,
	}, nil
}

func (h Handler) AddSupporterHandler(ctx context.Context, target entities.EntityRef, req httptransport.AddSupporterRequest) (httptransport.SupporterResponse, error) {
	supporter, err := h.Support.AddSupporter(ctx, commands.AddSupporterCommand{
		Target:    target,
		UserID:    req.UserID,
		Initiator: req.Initiator,
		Public:    req.Public,
	})
	if err != nil {
		return httptransport.SupporterResponse{}, err
	}
	return httptransport.SupporterResponse{
		UserID:    supporter.UserID,
		Initiator: supporter.Initiator,
		Ack:       supporter.Ack,
		CreatedAt: supporter.CreatedAt,
	}, nil
}

func (h Handler) AcknowledgeHandler(ctx context.Context, target entities.EntityRef, req httptransport.AcknowledgeRequest) error {
	return h.Support.Acknowledge(ctx, commands.AcknowledgeCommand{
		Target: target,
		UserID: req.UserID,
		Ack:    req.Ack,
	})
}

func (h Handler) SupportReportHandler(ctx context.Context, target entities.EntityRef) (httptransport.SupportReportResponse, error) {
	report, err := h.Supports.RelativeSupport(ctx, target)
	if err != nil {
		return httptransport.SupportReportResponse{}, err
	}
	return httptransport.SupportReportResponse{
		Supporters:      report.Supporters,
		Quorum:          report.Quorum,
		RelativePercent: report.RelativePercent,
		QuorumReached:   report.QuorumReached,
	}, nil
}

func (h Handler) CastVoteHandler(ctx context.Context, target entities.EntityRef, req httptransport.CastVoteRequest) (httptransport.VoteResponse, error) {
	vote, err := h.Votes.CastVote(ctx, commands.CastVoteCommand{
		Target: target,
		UserID: req.UserID,
		Value:  entities.VoteValue(req.Value),
		Reason: req.Reason,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return voteResponse(vote), nil
}

func (h Handler) UpdateVoteHandler(ctx context.Context, target entities.EntityRef, req httptransport.CastVoteRequest) (httptransport.VoteResponse, error) {
	vote, err := h.Votes.UpdateVote(ctx, commands.CastVoteCommand{
		Target: target,
		UserID: req.UserID,
		Value:  entities.VoteValue(req.Value),
		Reason: req.Reason,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return voteResponse(vote), nil
}

func (h Handler) BallotReportHandler(ctx context.Context, target entities.EntityRef) (httptransport.BallotReportResponse, error) {
	report, err := h.Tallies.Report(ctx, target)
	if err != nil {
		return httptransport.BallotReportResponse{}, err
	}
	return httptransport.BallotReportResponse{
		Yes:      report.Tally.Yes,
		No:       report.Tally.No,
		Abstain:  report.Tally.Abstain,
		Voters:   report.Voters,
		Accepted: report.Accepted,
	}, nil
}

func (h Handler) SetQuorumHandler(ctx context.Context, req httptransport.SetQuorumRequest) (httptransport.QuorumResponse, error) {
	q, err := h.Quorums.SetQuorum(ctx, req.Value)
	if err != nil {
		return httptransport.QuorumResponse{}, err
	}
	return httptransport.QuorumResponse{
		Value:     q.Value,
		CreatedAt: q.CreatedAt,
	}, nil
}

func initiativeResponse(ini entities.Initiative) httptransport.InitiativeResponse {
	return httptransport.InitiativeResponse{
		ID:              ini.ID,
		Slug:            ini.Slug(),
		Title:           ini.Title,
		Subtitle:        ini.Subtitle,
		Summary:         ini.Summary,
		Problem:         ini.Problem,
		Demand:          ini.Demand,
		CostEstimate:    ini.CostEstimate,
		FundingProposal: ini.FundingProposal,
		Methodology:     ini.Methodology,
		InitialArgument: ini.InitialArgument,
		Context:         ini.Context,
		Scope:           ini.Scope,
		Topic:           ini.Topic,
		State:           string(ini.State),
		VariantOf:       ini.VariantOf,
		EligibleVoters:  ini.EligibleVoters,
		Version:         ini.Version,
		CreatedAt:       ini.CreatedAt,
		ChangedAt:       ini.ChangedAt,
		WentPublicAt:    ini.WentPublicAt,
		WasClosedAt:     ini.WasClosedAt,
	}
}

func policyResponse(pol entities.Policy) httptransport.PolicyResponse {
	return httptransport.PolicyResponse{
		ID:             pol.ID,
		Title:          pol.Title,
		Fields:         pol.Fields,
		State:          string(pol.State),
		VariantOf:      pol.VariantOf,
		EligibleVoters: pol.EligibleVoters,
		Version:        pol.Version,
		CreatedAt:      pol.CreatedAt,
		ChangedAt:      pol.ChangedAt,
		WasClosedAt:    pol.WasClosedAt,
	}
}

func voteResponse(vote entities.Vote) httptransport.VoteResponse {
	return httptransport.VoteResponse{
		UserID:    vote.UserID,
		Value:     string(vote.Value),
		Reason:    vote.Reason,
		ChangedAt: vote.ChangedAt,
	}
}
