package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"foodie/src/types"
)

var (
	_ types.FavoriteStore = (*MongoStore)(nil)
	_ types.AccountStore  = (*MongoStore)(nil)
)

type mongoUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"hashed_pwd"`
}

// MongoStore uses the "favorites" and "users" collections of one database.
// Favorites use the directory id as _id.
type MongoStore struct {
	client    *mongo.Client
	favorites *mongo.Collection
	users     *mongo.Collection
}

func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrStoreUnavailable, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: %v", types.ErrStoreUnavailable, err)
	}

	db := client.Database(database)
	return &MongoStore{
		client:    client,
		favorites: db.Collection("favorites"),
		users:     db.Collection("users"),
	}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) ListFavorites(ctx context.Context) ([]types.Favorite, error) {
	opts := options.Find().SetSort(bson.D{{Key: "rating", Value: 1}})
	cur, err := s.favorites.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, mongoErr("listing favorites", err)
	}
	favorites := []types.Favorite{}
	if err := cur.All(ctx, &favorites); err != nil {
		return nil, mongoErr("listing favorites", err)
	}
	return favorites, nil
}

func (s *MongoStore) SaveFavorite(ctx context.Context, f types.Favorite) error {
	if _, err := s.favorites.InsertOne(ctx, f); err != nil {
		return mongoErr("saving favorite "+f.ID, err)
	}
	return nil
}

func (s *MongoStore) GetFavorite(ctx context.Context, id string) (*types.Favorite, error) {
	var f types.Favorite
	if err := s.favorites.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		return nil, mongoErr("getting favorite "+id, err)
	}
	return &f, nil
}

func (s *MongoStore) DeleteFavorite(ctx context.Context, id string) error {
	res, err := s.favorites.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mongoErr("deleting favorite "+id, err)
	}
	if res.DeletedCount == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (s *MongoStore) CreateAccount(ctx context.Context, email, passwordHash string) (string, error) {
	res, err := s.users.InsertOne(ctx, mongoUser{Email: email, PasswordHash: passwordHash})
	if err != nil {
		return "", mongoErr("creating account", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("creating account: unexpected id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (s *MongoStore) FindAccountsByEmail(ctx context.Context, email string) ([]types.Account, error) {
	// ObjectIDs start with their creation time, so _id order is insertion order.
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.users.Find(ctx, bson.M{"email": email}, opts)
	if err != nil {
		return nil, mongoErr("finding accounts", err)
	}
	var users []mongoUser
	if err := cur.All(ctx, &users); err != nil {
		return nil, mongoErr("finding accounts", err)
	}
	accounts := make([]types.Account, 0, len(users))
	for _, u := range users {
		accounts = append(accounts, u.account())
	}
	return accounts, nil
}

// GetAccount treats an id that is not a valid ObjectID as unknown.
func (s *MongoStore) GetAccount(ctx context.Context, id string) (*types.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, types.ErrNotFound
	}
	var u mongoUser
	if err := s.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&u); err != nil {
		return nil, mongoErr("getting account "+id, err)
	}
	a := u.account()
	return &a, nil
}

func (u mongoUser) account() types.Account {
	return types.Account{ID: u.ID.Hex(), Email: u.Email, PasswordHash: u.PasswordHash}
}

func mongoErr(op string, err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return types.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return types.ErrAlreadyExists
	default:
		return fmt.Errorf("%s: %w: %v", op, types.ErrStoreUnavailable, err)
	}
}
