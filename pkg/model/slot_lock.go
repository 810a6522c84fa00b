package model

import "time"

// SlotLock is an advisory lock document serializing concurrent
// booking attempts on the same court. The _id encodes the court, so
// a duplicate-key insert failure means another attempt on that court
// is in flight. ExpiresAt backs a TTL index that reaps locks leaked
// by crashed processes.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
