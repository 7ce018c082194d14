package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a fresh record id. Every store uses the 24-character hex form of
// a document ObjectID so ids stay portable between backends.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID reports whether id is a well-formed record id.
func IsValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}
