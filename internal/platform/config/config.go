package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	// EventBus selects the relay target: "memory" for in-process delivery,
	// "redis" for Redis Streams.
	EventBus string
	RedisURL string

	// Lifecycle tuning. These map onto the phase clock and readiness rules;
	// defaults mirror the production platform settings.
	MinInitiators       int
	ModeratorPercentage int
	ModeratorVoteFloor  int
	SpeedPhaseEnd       time.Time
	AbstentionStart     time.Time

	PolicySupportMinimumDays  int
	PolicySupportMaximumDays  int
	PolicySupportCooldownDays int
	PolicyDiscussionDays      int
	PolicyVotingDays          int
	PolicyMoratoriumDays      int

	// PolicyFieldSchema is a comma-separated list of section keys a policy
	// document must carry. Empty selects the built-in schema.
	PolicyFieldSchema string

	OutboxBatchSize int
	RelayCronSpec   string
	SweepCronSpec   string
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "agora"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	bus := strings.TrimSpace(strings.ToLower(os.Getenv("EVENT_BUS")))
	if bus == "" {
		bus = "memory"
	}
	if bus != "memory" && bus != "redis" {
		return Config{}, fmt.Errorf("unsupported EVENT_BUS %q", bus)
	}

	speedPhaseEnd, err := envDate("LIFECYCLE_SPEED_PHASE_END", time.Date(2018, time.January, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return Config{}, err
	}
	abstentionStart, err := envDate("LIFECYCLE_ABSTENTION_START", time.Date(2018, time.October, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return Config{}, err
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		EventBus: bus,
		RedisURL: os.Getenv("REDIS_URL"),

		MinInitiators:       envInt("LIFECYCLE_MIN_INITIATORS", 3),
		ModeratorPercentage: envInt("LIFECYCLE_MODERATOR_PERCENTAGE", 10),
		ModeratorVoteFloor:  envInt("LIFECYCLE_MODERATOR_VOTE_FLOOR", 2),
		SpeedPhaseEnd:       speedPhaseEnd,
		AbstentionStart:     abstentionStart,

		PolicySupportMinimumDays:  envInt("POLICY_SUPPORT_MINIMUM_DAYS", 14),
		PolicySupportMaximumDays:  envInt("POLICY_SUPPORT_MAXIMUM_DAYS", 180),
		PolicySupportCooldownDays: envInt("POLICY_SUPPORT_COOLDOWN_DAYS", 7),
		PolicyDiscussionDays:      envInt("POLICY_DISCUSSION_DAYS", 21),
		PolicyVotingDays:          envInt("POLICY_VOTING_DAYS", 21),
		PolicyMoratoriumDays:      envInt("POLICY_MORATORIUM_DAYS", 180),

		PolicyFieldSchema: strings.TrimSpace(os.Getenv("POLICY_FIELD_SCHEMA")),

		OutboxBatchSize: envInt("OUTBOX_BATCH_SIZE", 100),
		RelayCronSpec:   envString("RELAY_CRON_SPEC", "@every 2s"),
		SweepCronSpec:   envString("SWEEP_CRON_SPEC", "@every 1m"),
	}, nil
}

func envString(name string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envDate(name string, fallback time.Time) (time.Time, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s: %w", name, err)
	}
	return value, nil
}
