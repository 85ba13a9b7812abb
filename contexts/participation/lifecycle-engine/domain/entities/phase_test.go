package entities

import (
	"errors"
	"testing"
	"time"

	domainerrors "agora/contexts/participation/lifecycle-engine/domain/errors"
)

func testConfig() LifecycleConfig {
	return DefaultLifecycleConfig()
}

func stamp(value time.Time) *time.Time {
	return &value
}

func TestInitiativeEndOfPhaseSeekingSupport(t *testing.T) {
	cfg := testConfig()
	modern := time.Date(2020, time.March, 1, 12, 0, 0, 0, time.UTC)
	legacy := time.Date(2017, time.March, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		snapshot InitiativeSnapshot
		want     *time.Time
	}{
		{
			name: "quorum reached runs two more weeks",
			snapshot: InitiativeSnapshot{
				Initiative: Initiative{State: InitiativeSeekingSupport, WentPublicAt: stamp(modern)},
				Supporters: 10,
				Quorum:     5,
			},
			want: stamp(modern.Add(14 * 24 * time.Hour)),
		},
		{
			name: "quorum reached in legacy era runs one more week",
			snapshot: InitiativeSnapshot{
				Initiative: Initiative{State: InitiativeSeekingSupport, WentPublicAt: stamp(legacy)},
				Supporters: 10,
				Quorum:     5,
			},
			want: stamp(legacy.Add(7 * 24 * time.Hour)),
		},
		{
			name: "legacy era without quorum expires after half a year",
			snapshot: InitiativeSnapshot{
				Initiative: Initiative{State: InitiativeSeekingSupport, WentPublicAt: stamp(legacy)},
				Supporters: 1,
				Quorum:     5,
			},
			want: stamp(legacy.Add(183 * 24 * time.Hour)),
		},
		{
			name: "modern era without quorum has no deadline",
			snapshot: InitiativeSnapshot{
				Initiative: Initiative{State: InitiativeSeekingSupport, WentPublicAt: stamp(modern)},
				Supporters: 1,
				Quorum:     5,
			},
			want: nil,
		},
		{
			name: "variant is anchored to the parent discussion window",
			snapshot: InitiativeSnapshot{
				Initiative:       Initiative{State: InitiativeSeekingSupport, VariantOf: "ini-parent", WentPublicAt: stamp(modern)},
				ParentDiscussion: stamp(modern.Add(24 * time.Hour)),
				Supporters:       10,
				Quorum:           5,
			},
			want: stamp(modern.Add(15 * 24 * time.Hour)),
		},
	}

	for _, tc := range cases {
		got := tc.snapshot.EndOfPhase(cfg)
		if tc.want == nil {
			if got != nil {
				t.Fatalf("%s: expected no deadline, got %v", tc.name, got)
			}
			continue
		}
		if got == nil || !got.Equal(*tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestInitiativeEndOfPhaseVotingAndClosure(t *testing.T) {
	cfg := testConfig()
	started := time.Date(2021, time.June, 1, 0, 0, 0, 0, time.UTC)

	voting := InitiativeSnapshot{
		Initiative: Initiative{
			State:          InitiativeVoting,
			WentPublicAt:   stamp(started.Add(-60 * 24 * time.Hour)),
			WentToVotingAt: stamp(started),
		},
	}
	got := voting.EndOfPhase(cfg)
	if got == nil || !got.Equal(started.Add(21*24*time.Hour)) {
		t.Fatalf("expected three week voting window, got %v", got)
	}

	closed := InitiativeSnapshot{
		Initiative: Initiative{
			State:        InitiativeAccepted,
			WentPublicAt: stamp(started),
			WasClosedAt:  stamp(started.Add(30 * 24 * time.Hour)),
		},
	}
	got = closed.EndOfPhase(cfg)
	if got == nil || !got.Equal(started.Add((30+183)*24*time.Hour)) {
		t.Fatalf("expected half year rest after closure, got %v", got)
	}
}

func TestPolicyEndOfPhaseSupportWindow(t *testing.T) {
	cfg := testConfig()
	validated := time.Date(2022, time.April, 1, 0, 0, 0, 0, time.UTC)

	withQuorum := PolicySnapshot{
		Policy:     Policy{State: PolicyValidated, WasValidatedAt: stamp(validated)},
		Supporters: 20,
		Quorum:     10,
		Now:        validated.Add(10 * 24 * time.Hour),
	}
	got := withQuorum.EndOfPhase(cfg)
	want := validated.Add(time.Duration(cfg.PolicySupportMinimumDays+cfg.PolicySupportCooldownDays) * 24 * time.Hour)
	if got == nil || !got.Equal(want) {
		t.Fatalf("expected minimum plus cool-down %v, got %v", want, got)
	}

	withoutQuorum := PolicySnapshot{
		Policy:     Policy{State: PolicyValidated, WasValidatedAt: stamp(validated)},
		Supporters: 1,
		Quorum:     10,
		Now:        validated.Add(30 * 24 * time.Hour),
	}
	got = withoutQuorum.EndOfPhase(cfg)
	want = validated.Add(time.Duration(cfg.PolicySupportMaximumDays) * 24 * time.Hour)
	if got == nil || !got.Equal(want) {
		t.Fatalf("expected maximum support window %v, got %v", want, got)
	}
}

func TestRequiredReviewers(t *testing.T) {
	cases := []struct {
		active  int
		percent int
		floor   int
		want    int
	}{
		{active: 100, percent: 10, floor: 2, want: 10},
		{active: 20, percent: 10, floor: 2, want: 2},
		{active: 20, percent: 10, floor: 4, want: 5},
		{active: 0, percent: 10, floor: 3, want: 3},
		{active: 45, percent: 10, floor: 2, want: 5},
	}
	for _, tc := range cases {
		cfg := LifecycleConfig{ModeratorPercentage: tc.percent, ModeratorVoteFloor: tc.floor}
		if got := RequiredReviewers(tc.active, cfg); got != tc.want {
			t.Fatalf("RequiredReviewers(%d, pct=%d, floor=%d) = %d, want %d",
				tc.active, tc.percent, tc.floor, got, tc.want)
		}
	}
}

func TestResolveAcceptance(t *testing.T) {
	accepted, err := ResolveAcceptance(Tally{Yes: 5, No: 3}, nil)
	if err != nil || !accepted {
		t.Fatalf("expected lone winning ballot to be accepted, got %v %v", accepted, err)
	}

	accepted, err = ResolveAcceptance(Tally{Yes: 4, No: 5}, nil)
	if err != nil || accepted {
		t.Fatalf("expected losing ballot to be rejected, got %v %v", accepted, err)
	}

	accepted, err = ResolveAcceptance(Tally{Yes: 5, No: 1}, []Tally{{Yes: 8, No: 2}})
	if err != nil || accepted {
		t.Fatalf("expected stronger variant to win, got %v %v", accepted, err)
	}

	_, err = ResolveAcceptance(Tally{Yes: 10, No: 2}, []Tally{{Yes: 10, No: 3}})
	if !errors.Is(err, domainerrors.ErrTieUnresolved) {
		t.Fatalf("expected unresolved tie, got %v", err)
	}

	// A tied variant that is not winning on its own does not count.
	accepted, err = ResolveAcceptance(Tally{Yes: 10, No: 2}, []Tally{{Yes: 10, No: 10}})
	if err != nil || !accepted {
		t.Fatalf("expected non-winning sibling to be ignored, got %v %v", accepted, err)
	}
}

func TestInitiativeReadyForNextStage(t *testing.T) {
	cfg := testConfig()
	now := time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC)

	seeking := InitiativeSnapshot{
		Initiative: Initiative{State: InitiativeSeekingSupport, WentPublicAt: stamp(now.Add(-24 * time.Hour))},
		Supporters: 4,
		Quorum:     5,
		Now:        now,
	}
	if seeking.ReadyForNextStage(cfg) {
		t.Fatalf("expected seeking support below quorum to be not ready")
	}
	seeking.Supporters = 5
	if !seeking.ReadyForNextStage(cfg) {
		t.Fatalf("expected seeking support at quorum to be ready")
	}

	moderation := InitiativeSnapshot{
		Initiative:      Initiative{State: InitiativeModeration},
		AckedInitiators: 3,
		Moderation:      ModerationStats{Total: 3, RequestInfo: 2, Approvals: 1, ActiveModerators: 20},
		Now:             now,
	}
	if moderation.ReadyForNextStage(cfg) {
		t.Fatalf("expected open info requests to hold moderation")
	}
	moderation.Moderation = ModerationStats{Total: 3, Approvals: 2, Rejections: 1, ActiveModerators: 20}
	if !moderation.ReadyForNextStage(cfg) {
		t.Fatalf("expected settled reviews to release moderation")
	}
	if !moderation.ReadyToProceed() {
		t.Fatalf("expected approving majority to proceed")
	}
	moderation.Moderation.Approvals = 1
	moderation.Moderation.Rejections = 2
	if moderation.ReadyToProceed() {
		t.Fatalf("expected rejecting majority to block")
	}
}
