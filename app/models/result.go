package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// The write results mirror what the storefront client reads back from
// mutations, whichever backend produced them.

type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
	UpsertedCount int64 `json:"upsertedCount"`
}

type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// NewID returns a fresh id in ObjectID hex form. Both backends use it so
// ids look the same regardless of storage.
func NewID() string { return primitive.NewObjectID().Hex() }

// ValidID reports whether s is a 24-character hex ObjectID.
func ValidID(s string) bool {
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}
