// Package reviewpanel keeps the moderation side of proposal intake inside
// the moderation-safety context.
//
// Moderators submit reviews on proposals; a re-submission supersedes the
// moderator's earlier review rather than editing it. The package also owns
// the panel roster, whose active head count feeds the review quorum computed
// by the lifecycle engine.
package reviewpanel
