// Package audit records the domain actions that change collections: who did
// what to which entity. Events flow through a buffered channel to a background
// worker so request handling never blocks on the sink.
package audit

import "time"

// Actions recorded by the collection services.
const (
	ActionUserRegistered = "user_registered"
	ActionRankingCreated = "ranking_created"
	ActionRankingUpdated = "ranking_updated"
	ActionRankingDeleted = "ranking_deleted"
	ActionBoxCreated     = "box_created"
	ActionBoxUpdated     = "box_updated"
	ActionBoxDeleted     = "box_deleted"
	ActionBoxFavorited   = "box_favorited"
)

// Event is emitted from domain logic after a mutation commits. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp  time.Time         `json:"timestamp"`
	Action     string            `json:"action"`
	ActorID    string            `json:"actor_id"`
	EntityType string            `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	Detail     map[string]string `json:"detail,omitempty"`
}
