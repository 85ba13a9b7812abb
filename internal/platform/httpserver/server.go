package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	reviewpanel "agora/contexts/moderation-safety/review-panel"
	reviewentities "agora/contexts/moderation-safety/review-panel/domain/entities"
	reviewerrors "agora/contexts/moderation-safety/review-panel/domain/errors"
	reviewhttp "agora/contexts/moderation-safety/review-panel/transport/http"
	debateservice "agora/contexts/participation/debate-service"
	debateentities "agora/contexts/participation/debate-service/domain/entities"
	debateerrors "agora/contexts/participation/debate-service/domain/errors"
	debatehttp "agora/contexts/participation/debate-service/transport/http"
	lifecycleengine "agora/contexts/participation/lifecycle-engine"
	lifecycleentities "agora/contexts/participation/lifecycle-engine/domain/entities"
	lifecycleerrors "agora/contexts/participation/lifecycle-engine/domain/errors"
	lifecyclehttp "agora/contexts/participation/lifecycle-engine/transport/http"
	_ "agora/internal/platform/httpserver/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux       *http.ServeMux
	logger    *slog.Logger
	addr      string
	lifecycle lifecycleengine.Module
	reviews   reviewpanel.Module
	debates   debateservice.Module
}

func New(
	lifecycle lifecycleengine.Module,
	reviews reviewpanel.Module,
	debates debateservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		lifecycle: lifecycle,
		reviews:   reviews,
		debates:   debates,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /v1/initiatives", s.handleCreateInitiative)
	s.mux.HandleFunc("GET /v1/initiatives/{id}", s.handleGetInitiative)
	s.mux.HandleFunc("PATCH /v1/initiatives/{id}", s.handleUpdateInitiative)
	s.mux.HandleFunc("POST /v1/initiatives/{id}/advance", s.handleAdvanceInitiative)
	s.mux.HandleFunc("POST /v1/initiatives/{id}/close-voting", s.handleCloseInitiativeVoting)
	s.mux.HandleFunc("POST /v1/initiatives/{id}/hide", s.handleHideInitiative)
	s.mux.HandleFunc("GET /v1/initiatives/{id}/status", s.handleInitiativeStatus)

	s.mux.HandleFunc("POST /v1/policies", s.handleCreatePolicy)
	s.mux.HandleFunc("GET /v1/policies/{id}", s.handleGetPolicy)
	s.mux.HandleFunc("PATCH /v1/policies/{id}", s.handleUpdatePolicy)
	s.mux.HandleFunc("POST /v1/policies/{id}/advance", s.handleAdvancePolicy)
	s.mux.HandleFunc("POST /v1/policies/{id}/close-voting", s.handleClosePolicyVoting)
	s.mux.HandleFunc("POST /v1/policies/{id}/challenge", s.handleChallengePolicy)
	s.mux.HandleFunc("POST /v1/policies/{id}/hide", s.handleHidePolicy)
	s.mux.HandleFunc("GET /v1/policies/{id}/status", s.handlePolicyStatus)

	s.mux.HandleFunc("POST /v1/proposals/{kind}/{id}/supporters", s.handleAddSupporter)
	s.mux.HandleFunc("POST /v1/proposals/{kind}/{id}/supporters/acknowledge", s.handleAcknowledge)
	s.mux.HandleFunc("GET /v1/proposals/{kind}/{id}/support", s.handleSupportReport)
	s.mux.HandleFunc("POST /v1/proposals/{kind}/{id}/votes", s.handleCastVote)
	s.mux.HandleFunc("PUT /v1/proposals/{kind}/{id}/votes", s.handleUpdateVote)
	s.mux.HandleFunc("GET /v1/proposals/{kind}/{id}/ballot", s.handleBallotReport)
	s.mux.HandleFunc("POST /v1/quorum", s.handleSetQuorum)

	s.mux.HandleFunc("POST /v1/proposals/{kind}/{id}/reviews", s.handleSubmitReview)
	s.mux.HandleFunc("GET /v1/proposals/{kind}/{id}/reviews", s.handleListReviews)
	s.mux.HandleFunc("GET /v1/proposals/{kind}/{id}/reviews/counts", s.handleReviewCounts)
	s.mux.HandleFunc("PUT /v1/moderation/roster", s.handleSetRoster)
	s.mux.HandleFunc("GET /v1/moderation/roster", s.handleListRoster)

	s.mux.HandleFunc("POST /v1/proposals/{kind}/{id}/arguments", s.handleCreateArgument)
	s.mux.HandleFunc("GET /v1/proposals/{kind}/{id}/arguments", s.handleListArguments)
	s.mux.HandleFunc("PATCH /v1/arguments/{id}", s.handleUpdateArgument)
	s.mux.HandleFunc("POST /v1/arguments/{id}/comments", s.handleCreateComment)
	s.mux.HandleFunc("GET /v1/arguments/{id}/comments", s.handleListComments)
	s.mux.HandleFunc("POST /v1/debate/{kind}/{id}/likes", s.handleLike)
	s.mux.HandleFunc("DELETE /v1/debate/{kind}/{id}/likes", s.handleUnlike)
}

func (s *Server) handleCreateInitiative(w http.ResponseWriter, r *http.Request) {
	var req lifecyclehttp.CreateInitiativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.lifecycle.Handler.CreateInitiativeHandler(r.Context(), req)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetInitiative(w http.ResponseWriter, r *http.Request) {
	resp, err := s.lifecycle.Handler.GetInitiativeHandler(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateInitiative(w http.ResponseWriter, r *http.Request) {
	var req lifecyclehttp.UpdateInitiativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.lifecycle.Handler.UpdateInitiativeHandler(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdvanceInitiative(w http.ResponseWriter, r *http.Request) {
	resp, err := s.lifecycle.Handler.AdvanceInitiativeHandler(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCloseInitiativeVoting(w http.ResponseWriter, r *http.Request) {
	var req lifecyclehttp.CloseVotingRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.lifecycle.Handler.CloseInitiativeVotingHandler(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHideInitiative(w http.ResponseWriter, r *http.Request) {
	resp, err := s.lifecycle.Handler.HideInitiativeHandler(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInitiativeStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.lifecycle.Handler.InitiativeStatusHandler(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req lifecyclehttp.CreatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.lifecycle.Handler.CreatePolicyHandler(r.Context(), req)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	resp, err := s.lifecycle.Handler.GetPolicyHandler(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdatePolicy(w http.ResponseWriter, r *http.Request) {
	var req lifecyclehttp.UpdatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.lifecycle.Handler.UpdatePolicyHandler(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdvancePolicy(w http.ResponseWriter, r *http.Request) {
	resp, err := s.lifecycle.Handler.AdvancePolicyHandler(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClosePolicyVoting(w http.ResponseWriter, r *http.Request) {
	var req lifecyclehttp.CloseVotingRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.lifecycle.Handler.ClosePolicyVotingHandler(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChallengePolicy(w http.ResponseWriter, r *http.Request) {
	resp, err := s.lifecycle.Handler.ChallengePolicyHandler(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHidePolicy(w http.ResponseWriter, r *http.Request) {
	resp, err := s.lifecycle.Handler.HidePolicyHandler(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePolicyStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.lifecycle.Handler.PolicyStatusHandler(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddSupporter(w http.ResponseWriter, r *http.Request) {
	target, ok := lifecycleRef(w, r)
	if !ok {
		return
	}
	var req lifecyclehttp.AddSupporterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.lifecycle.Handler.AddSupporterHandler(r.Context(), target, req)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	target, ok := lifecycleRef(w, r)
	if !ok {
		return
	}
	var req lifecyclehttp.AcknowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.lifecycle.Handler.AcknowledgeHandler(r.Context(), target, req); err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSupportReport(w http.ResponseWriter, r *http.Request) {
	target, ok := lifecycleRef(w, r)
	if !ok {
		return
	}
	resp, err := s.lifecycle.Handler.SupportReportHandler(r.Context(), target)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	target, ok := lifecycleRef(w, r)
	if !ok {
		return
	}
	var req lifecyclehttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.lifecycle.Handler.CastVoteHandler(r.Context(), target, req)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUpdateVote(w http.ResponseWriter, r *http.Request) {
	target, ok := lifecycleRef(w, r)
	if !ok {
		return
	}
	var req lifecyclehttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.lifecycle.Handler.UpdateVoteHandler(r.Context(), target, req)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBallotReport(w http.ResponseWriter, r *http.Request) {
	target, ok := lifecycleRef(w, r)
	if !ok {
		return
	}
	resp, err := s.lifecycle.Handler.BallotReportHandler(r.Context(), target)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetQuorum(w http.ResponseWriter, r *http.Request) {
	var req lifecyclehttp.SetQuorumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.lifecycle.Handler.SetQuorumHandler(r.Context(), req)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	target, ok := reviewRef(w, r)
	if !ok {
		return
	}
	var req reviewhttp.SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeReviewError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.reviews.Handler.SubmitReviewHandler(r.Context(), target, req)
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	target, ok := reviewRef(w, r)
	if !ok {
		return
	}
	resp, err := s.reviews.Handler.ListReviewsHandler(r.Context(), target)
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReviewCounts(w http.ResponseWriter, r *http.Request) {
	target, ok := reviewRef(w, r)
	if !ok {
		return
	}
	resp, err := s.reviews.Handler.ReviewCountsHandler(r.Context(), target)
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetRoster(w http.ResponseWriter, r *http.Request) {
	var req reviewhttp.RosterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeReviewError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.reviews.Handler.SetRosterHandler(r.Context(), req)
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListRoster(w http.ResponseWriter, r *http.Request) {
	resp, err := s.reviews.Handler.ListRosterHandler(r.Context())
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateArgument(w http.ResponseWriter, r *http.Request) {
	target, ok := debateRef(w, r)
	if !ok {
		return
	}
	var req debatehttp.CreateArgumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDebateError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.debates.Handler.CreateArgumentHandler(r.Context(), target, req)
	if err != nil {
		writeDebateDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListArguments(w http.ResponseWriter, r *http.Request) {
	target, ok := debateRef(w, r)
	if !ok {
		return
	}
	resp, err := s.debates.Handler.ListArgumentsHandler(r.Context(), target, r.URL.Query().Get("kind"))
	if err != nil {
		writeDebateDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateArgument(w http.ResponseWriter, r *http.Request) {
	var req debatehttp.UpdateArgumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDebateError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.debates.Handler.UpdateArgumentHandler(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeDebateDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var req debatehttp.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDebateError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.debates.Handler.CreateCommentHandler(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeDebateDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	resp, err := s.debates.Handler.ListCommentsHandler(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDebateDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	target, ok := likeRef(w, r)
	if !ok {
		return
	}
	var req debatehttp.LikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDebateError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.debates.Handler.LikeHandler(r.Context(), target, req)
	if err != nil {
		writeDebateDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUnlike(w http.ResponseWriter, r *http.Request) {
	target, ok := likeRef(w, r)
	if !ok {
		return
	}
	var req debatehttp.LikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDebateError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.debates.Handler.UnlikeHandler(r.Context(), target, req); err != nil {
		writeDebateDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func lifecycleRef(w http.ResponseWriter, r *http.Request) (lifecycleentities.EntityRef, bool) {
	kind := lifecycleentities.EntityKind(r.PathValue("kind"))
	if !kind.Valid() {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_kind", "kind must be initiative or policy")
		return lifecycleentities.EntityRef{}, false
	}
	return lifecycleentities.EntityRef{Kind: kind, ID: r.PathValue("id")}, true
}

func reviewRef(w http.ResponseWriter, r *http.Request) (reviewentities.EntityRef, bool) {
	kind := reviewentities.EntityKind(r.PathValue("kind"))
	if !kind.Valid() {
		writeReviewError(w, http.StatusBadRequest, "invalid_kind", "kind must be initiative or policy")
		return reviewentities.EntityRef{}, false
	}
	return reviewentities.EntityRef{Kind: kind, ID: r.PathValue("id")}, true
}

func debateRef(w http.ResponseWriter, r *http.Request) (debateentities.EntityRef, bool) {
	kind := debateentities.EntityKind(r.PathValue("kind"))
	if !kind.Valid() {
		writeDebateError(w, http.StatusBadRequest, "invalid_kind", "kind must be initiative or policy")
		return debateentities.EntityRef{}, false
	}
	return debateentities.EntityRef{Kind: kind, ID: r.PathValue("id")}, true
}

func likeRef(w http.ResponseWriter, r *http.Request) (debateentities.LikeRef, bool) {
	kind := debateentities.LikeTargetKind(r.PathValue("kind"))
	if !kind.Valid() {
		writeDebateError(w, http.StatusBadRequest, "invalid_kind", "kind must be argument or comment")
		return debateentities.LikeRef{}, false
	}
	return debateentities.LikeRef{Kind: kind, ID: r.PathValue("id")}, true
}

func writeLifecycleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lifecycleerrors.ErrInitiativeNotFound):
		writeLifecycleError(w, http.StatusNotFound, "initiative_not_found", err.Error())
	case errors.Is(err, lifecycleerrors.ErrPolicyNotFound):
		writeLifecycleError(w, http.StatusNotFound, "policy_not_found", err.Error())
	case errors.Is(err, lifecycleerrors.ErrVoteNotFound):
		writeLifecycleError(w, http.StatusNotFound, "vote_not_found", err.Error())
	case errors.Is(err, lifecycleerrors.ErrSupporterNotFound):
		writeLifecycleError(w, http.StatusNotFound, "supporter_not_found", err.Error())
	case errors.Is(err, lifecycleerrors.ErrDuplicateSupport):
		writeLifecycleError(w, http.StatusConflict, "duplicate_support", err.Error())
	case errors.Is(err, lifecycleerrors.ErrDuplicateVote):
		writeLifecycleError(w, http.StatusConflict, "duplicate_vote", err.Error())
	case errors.Is(err, lifecycleerrors.ErrTieUnresolved):
		writeLifecycleError(w, http.StatusConflict, "variant_tie", err.Error())
	case errors.Is(err, lifecycleerrors.ErrNotReadyForTransition):
		writeLifecycleError(w, http.StatusConflict, "not_ready", err.Error())
	case errors.Is(err, lifecycleerrors.ErrInvalidStateForAction):
		writeLifecycleError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, lifecycleerrors.ErrConcurrentTransition):
		writeLifecycleError(w, http.StatusConflict, "concurrent_transition", err.Error())
	case errors.Is(err, lifecycleerrors.ErrZeroQuorum):
		writeLifecycleError(w, http.StatusUnprocessableEntity, "zero_quorum", err.Error())
	case errors.Is(err, lifecycleerrors.ErrInvalidInput):
		writeLifecycleError(w, http.StatusBadRequest, "invalid_input", err.Error())
	default:
		writeLifecycleError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeReviewDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reviewerrors.ErrReviewNotFound),
		errors.Is(err, reviewerrors.ErrRosterNotFound):
		writeReviewError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, reviewerrors.ErrNotActiveModerator):
		writeReviewError(w, http.StatusForbidden, "not_active_moderator", err.Error())
	case errors.Is(err, reviewerrors.ErrInvalidInput):
		writeReviewError(w, http.StatusBadRequest, "invalid_input", err.Error())
	default:
		writeReviewError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeDebateDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, debateerrors.ErrArgumentNotFound):
		writeDebateError(w, http.StatusNotFound, "argument_not_found", err.Error())
	case errors.Is(err, debateerrors.ErrCommentNotFound):
		writeDebateError(w, http.StatusNotFound, "comment_not_found", err.Error())
	case errors.Is(err, debateerrors.ErrLikeNotFound):
		writeDebateError(w, http.StatusNotFound, "like_not_found", err.Error())
	case errors.Is(err, debateerrors.ErrDuplicateLike):
		writeDebateError(w, http.StatusConflict, "duplicate_like", err.Error())
	case errors.Is(err, debateerrors.ErrInvalidInput):
		writeDebateError(w, http.StatusBadRequest, "invalid_input", err.Error())
	default:
		writeDebateError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeLifecycleError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, lifecyclehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeReviewError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, reviewhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeDebateError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, debatehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeOptionalBody tolerates an empty request body for endpoints whose
// parameters are all optional.
func decodeOptionalBody(r *http.Request, target any) error {
	err := json.NewDecoder(r.Body).Decode(target)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
