package model

import "time"

// SlotLock is an advisory lock serializing writers for one resource. The
// unique _id insert is the storage-level guard: the second writer's insert
// fails with a duplicate key error and is turned into a conflict response.
// ExpiresAt bounds the damage of a crashed holder.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
