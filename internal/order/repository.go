package order

import (
	"context"
	"time"

	"shopmart-be/internal/db"
	"shopmart-be/internal/product"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Insert(ctx context.Context, o *Order) (*Order, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*Order, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID) ([]*Order, error)
	GetAll(ctx context.Context, page, limit int64) ([]*Order, int64, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status Status, trackingURL string) (*Order, error)

	GetProduct(ctx context.Context, id primitive.ObjectID) (*product.Product, error)
	GetProductsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*product.Product, error)
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) (bool, error)
	RestoreStock(ctx context.Context, id primitive.ObjectID, qty int) error
}

type repository struct {
	orders   *mongo.Collection
	products *mongo.Collection
}

func NewRepository(orders, products *mongo.Collection) Repository {
	return &repository{orders: orders, products: products}
}

func (r *repository) Insert(ctx context.Context, o *Order) (*Order, error) {
	res, err := r.orders.InsertOne(ctx, o)
	if err != nil {
		return nil, err
	}

	o.ID = res.InsertedID.(primitive.ObjectID)
	return o, nil
}

func (r *repository) GetByID(ctx context.Context, id primitive.ObjectID) (*Order, error) {
	return db.WithRetry(ctx, func(ctx context.Context) (*Order, error) {
		var o Order
		err := r.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
		if err == mongo.ErrNoDocuments {
			return nil, ErrOrderNotFound
		}
		if err != nil {
			return nil, err
		}
		return &o, nil
	})
}

func (r *repository) GetByUser(ctx context.Context, userID primitive.ObjectID) ([]*Order, error) {
	return db.WithRetry(ctx, func(ctx context.Context) ([]*Order, error) {
		cur, err := r.orders.Find(ctx, bson.M{"user": userID},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
		if err != nil {
			return nil, err
		}
		defer cur.Close(ctx)

		var orders []*Order
		if err := cur.All(ctx, &orders); err != nil {
			return nil, err
		}
		return orders, nil
	})
}

func (r *repository) GetAll(ctx context.Context, page, limit int64) ([]*Order, int64, error) {
	findOpts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	orders, err := db.WithRetry(ctx, func(ctx context.Context) ([]*Order, error) {
		cur, err := r.orders.Find(ctx, bson.M{}, findOpts)
		if err != nil {
			return nil, err
		}
		defer cur.Close(ctx)

		var items []*Order
		if err := cur.All(ctx, &items); err != nil {
			return nil, err
		}
		return items, nil
	})
	if err != nil {
		return nil, 0, err
	}

	total, err := db.WithRetry(ctx, func(ctx context.Context) (int64, error) {
		return r.orders.CountDocuments(ctx, bson.M{})
	})
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status Status, trackingURL string) (*Order, error) {
	var o Order
	err := r.orders.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"status":      status,
			"trackingUrl": trackingURL,
			"updatedAt":   time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&o)
	if err == mongo.ErrNoDocuments {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	return &o, nil
}

func (r *repository) GetProduct(ctx context.Context, id primitive.ObjectID) (*product.Product, error) {
	return db.WithRetry(ctx, func(ctx context.Context) (*product.Product, error) {
		var p product.Product
		err := r.products.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
		if err == mongo.ErrNoDocuments {
			return nil, product.ErrProductNotFound
		}
		if err != nil {
			return nil, err
		}
		return &p, nil
	})
}

func (r *repository) GetProductsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*product.Product, error) {
	if len(ids) == 0 {
		return map[primitive.ObjectID]*product.Product{}, nil
	}

	return db.WithRetry(ctx, func(ctx context.Context) (map[primitive.ObjectID]*product.Product, error) {
		cur, err := r.products.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return nil, err
		}
		defer cur.Close(ctx)

		var items []*product.Product
		if err := cur.All(ctx, &items); err != nil {
			return nil, err
		}

		byID := make(map[primitive.ObjectID]*product.Product, len(items))
		for _, p := range items {
			byID[p.ID] = p
		}
		return byID, nil
	})
}

// DecrementStock atomically takes qty units if and only if that many are
// available. A false return means another order got there first.
func (r *repository) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) (bool, error) {
	res, err := r.products.UpdateOne(
		ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"stock": -qty}},
	)
	if err != nil {
		return false, err
	}

	return res.ModifiedCount == 1, nil
}

func (r *repository) RestoreStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	_, err := r.products.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"stock": qty}},
	)
	return err
}
