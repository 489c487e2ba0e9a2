package product

import (
	"context"
	"regexp"
	"time"

	"shopmart-be/internal/db"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	GetList(ctx context.Context, opts QueryOptions) ([]*Product, int64, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*Product, error)
	Create(ctx context.Context, p *Product) (*Product, error)
	Update(ctx context.Context, id primitive.ObjectID, input UpdateInput) (*Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AppendReview(ctx context.Context, id primitive.ObjectID, review Review) error
	SetRatings(ctx context.Context, id primitive.ObjectID, ratings Ratings) error
}

type repository struct {
	products *mongo.Collection
}

func NewRepository(products *mongo.Collection) Repository {
	return &repository{products: products}
}

func containsInsensitive(term string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
}

func buildListFilter(opts QueryOptions) bson.M {
	filter := bson.M{}

	if opts.Category != "" {
		filter["category"] = containsInsensitive(opts.Category)
	}
	if opts.Brand != "" {
		filter["brand"] = containsInsensitive(opts.Brand)
	}
	if opts.Search != "" {
		re := containsInsensitive(opts.Search)
		filter["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"description": re},
		}
	}
	if opts.MinPrice != nil || opts.MaxPrice != nil {
		price := bson.M{}
		if opts.MinPrice != nil {
			price["$gte"] = *opts.MinPrice
		}
		if opts.MaxPrice != nil {
			price["$lte"] = *opts.MaxPrice
		}
		filter["price"] = price
	}

	return filter
}

func (r *repository) GetList(ctx context.Context, opts QueryOptions) ([]*Product, int64, error) {
	filter := buildListFilter(opts)

	findOpts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((opts.Page - 1) * opts.Limit).
		SetLimit(opts.Limit)

	products, err := db.WithRetry(ctx, func(ctx context.Context) ([]*Product, error) {
		cur, err := r.products.Find(ctx, filter, findOpts)
		if err != nil {
			return nil, err
		}
		defer cur.Close(ctx)

		var items []*Product
		if err := cur.All(ctx, &items); err != nil {
			return nil, err
		}
		return items, nil
	})
	if err != nil {
		return nil, 0, err
	}

	total, err := db.WithRetry(ctx, func(ctx context.Context) (int64, error) {
		return r.products.CountDocuments(ctx, filter)
	})
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *repository) GetByID(ctx context.Context, id primitive.ObjectID) (*Product, error) {
	return db.WithRetry(ctx, func(ctx context.Context) (*Product, error) {
		var p Product
		err := r.products.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
		if err == mongo.ErrNoDocuments {
			return nil, ErrProductNotFound
		}
		if err != nil {
			return nil, err
		}
		return &p, nil
	})
}

func (r *repository) Create(ctx context.Context, p *Product) (*Product, error) {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Reviews == nil {
		p.Reviews = []Review{}
	}

	res, err := r.products.InsertOne(ctx, p)
	if err != nil {
		return nil, err
	}

	p.ID = res.InsertedID.(primitive.ObjectID)
	return p, nil
}

func (r *repository) Update(ctx context.Context, id primitive.ObjectID, input UpdateInput) (*Product, error) {
	set := bson.M{"updatedAt": time.Now()}

	if input.Name != nil {
		set["name"] = *input.Name
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.Price != nil {
		set["price"] = *input.Price
	}
	if input.Category != nil {
		set["category"] = *input.Category
	}
	if input.Brand != nil {
		set["brand"] = *input.Brand
	}
	if input.Stock != nil {
		set["stock"] = *input.Stock
	}
	if len(input.Images) > 0 {
		set["images"] = input.Images
	}

	var p Product
	err := r.products.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

// AppendReview pushes a review only when the reviewer has not reviewed this
// product yet. The ratings aggregate is written separately, recomputed from
// the post-push document, so concurrent reviews cannot clobber each other's
// contribution to the mean.
func (r *repository) AppendReview(ctx context.Context, id primitive.ObjectID, review Review) error {
	res, err := r.products.UpdateOne(
		ctx,
		bson.M{
			"_id":            id,
			"reviews.userId": bson.M{"$ne": review.UserID},
		},
		bson.M{
			"$push": bson.M{"reviews": review},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}

	// The caller verified the product exists, so a zero match means the
	// reviewer guard rejected the write.
	if res.MatchedCount == 0 {
		return ErrDuplicateReview
	}

	return nil
}

// SetRatings writes the aggregate only while the review count still matches
// the one it was computed from. When another review lands in between, the
// guard skips the stale write and the later reviewer owns the aggregate.
func (r *repository) SetRatings(ctx context.Context, id primitive.ObjectID, ratings Ratings) error {
	_, err := r.products.UpdateOne(
		ctx,
		bson.M{
			"_id":     id,
			"reviews": bson.M{"$size": ratings.Count},
		},
		bson.M{"$set": bson.M{
			"ratings":   ratings,
			"updatedAt": time.Now(),
		}},
	)
	return err
}
