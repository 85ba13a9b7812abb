// Package lifecycleengine drives citizen proposals through their public
// lifecycle inside the participation context.
//
// The module owns the state machines for initiatives and policies, the phase
// deadline arithmetic, quorum-based support tracking, moderation readiness
// checks, and vote tallying with variant-aware acceptance. Advancement is
// always an explicit, version-checked command; the phase sweep worker only
// issues those commands on schedule. Infrastructure stays behind ports with
// postgres and in-memory adapters.
package lifecycleengine
