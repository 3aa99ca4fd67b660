package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"foodie/src/types"
)

func TestFavoriteBSONUsesDirectoryID(t *testing.T) {
	raw, err := bson.Marshal(favorite("abc123", 4.5))
	assert.NoError(t, err)

	var doc bson.M
	assert.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, "abc123", doc["_id"])
	assert.Equal(t, 4.5, doc["rating"])
}

func TestMongoUserAccount(t *testing.T) {
	oid := primitive.NewObjectID()
	a := mongoUser{ID: oid, Email: "a@b.com", PasswordHash: "h"}.account()
	assert.Equal(t, oid.Hex(), a.ID)
	assert.Equal(t, "a@b.com", a.Email)
}

func TestMongoErr(t *testing.T) {
	assert.ErrorIs(t, mongoErr("get", mongo.ErrNoDocuments), types.ErrNotFound)

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, mongoErr("save", dup), types.ErrAlreadyExists)

	assert.ErrorIs(t, mongoErr("list", errors.New("server selection timeout")), types.ErrStoreUnavailable)
}
