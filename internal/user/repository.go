package user

import (
	"context"
	"time"

	"shopmart-be/internal/db"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*User, error)
}

type repository struct {
	users *mongo.Collection
}

func NewRepository(users *mongo.Collection) Repository {
	return &repository{users: users}
}

func (r *repository) Create(ctx context.Context, u *User) (*User, error) {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	res, err := r.users.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	u.ID = res.InsertedID.(primitive.ObjectID)
	return u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return db.WithRetry(ctx, func(ctx context.Context) (*User, error) {
		var u User
		err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&u)
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		if err != nil {
			return nil, err
		}
		return &u, nil
	})
}

func (r *repository) FindByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return db.WithRetry(ctx, func(ctx context.Context) (*User, error) {
		var u User
		err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		if err != nil {
			return nil, err
		}
		return &u, nil
	})
}
