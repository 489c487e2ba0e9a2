package product

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	UserName  string             `bson:"userName" json:"userName"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Ratings struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Category    string             `bson:"category" json:"category"`
	Brand       string             `bson:"brand" json:"brand"`
	Stock       int                `bson:"stock" json:"stock"`
	Images      []string           `bson:"images" json:"images"`
	Ratings     Ratings            `bson:"ratings" json:"ratings"`
	Reviews     []Review           `bson:"reviews" json:"reviews"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type QueryOptions struct {
	Category string
	Brand    string
	Search   string
	MinPrice *float64
	MaxPrice *float64
	Page     int64
	Limit    int64
}

type ListResult struct {
	Items []*Product
	Total int64
	Page  int64
	Limit int64
	Pages int64
}

// UpdateInput carries only the fields the caller wants to change.
type UpdateInput struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	Brand       *string
	Stock       *int
	Images      []string
}

func (u UpdateInput) HasChanges() bool {
	return u.Name != nil ||
		u.Description != nil ||
		u.Price != nil ||
		u.Category != nil ||
		u.Brand != nil ||
		u.Stock != nil ||
		len(u.Images) > 0
}

// RecomputeRatings derives the aggregate from the full review list.
func RecomputeRatings(reviews []Review) Ratings {
	if len(reviews) == 0 {
		return Ratings{}
	}

	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}

	return Ratings{
		Average: float64(sum) / float64(len(reviews)),
		Count:   len(reviews),
	}
}
