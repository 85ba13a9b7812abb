// Package debateservice carries the discussion attached to proposals inside
// the participation context.
//
// Arguments come in three fixed lanes (pro, contra, proposal) with static
// display metadata, and collect comments and likes. Like and comment counts
// are cached on their parent rows and maintained transactionally by the
// storage adapters.
package debateservice
