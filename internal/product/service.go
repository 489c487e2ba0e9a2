package product

import (
	"context"
	"math"
	"time"

	"shopmart-be/internal/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Service interface {
	GetList(ctx context.Context, opts QueryOptions) (*ListResult, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, p *Product) (*Product, error)
	Update(ctx context.Context, id string, input UpdateInput) (*Product, error)
	Delete(ctx context.Context, id string) error
	AddReview(ctx context.Context, productID string, reviewerID primitive.ObjectID, reviewerName string, rating int, comment string) (*Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetList(ctx context.Context, opts QueryOptions) (*ListResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "GetList"),
	)

	start := time.Now()

	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	} else if opts.Limit > 100 {
		opts.Limit = 100
	}

	items, total, err := s.repo.GetList(ctx, opts)
	if err != nil {
		log.Error("failed to fetch product list",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, err
	}

	log.Info("product list fetched",
		zap.Int("count", len(items)),
		zap.Int64("total", total),
		zap.Int64("page", opts.Page),
		zap.Int64("limit", opts.Limit),
		zap.Duration("duration", time.Since(start)),
	)

	return &ListResult{
		Items: items,
		Total: total,
		Page:  opts.Page,
		Limit: opts.Limit,
		Pages: int64(math.Ceil(float64(total) / float64(opts.Limit))),
	}, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	return s.repo.GetByID(ctx, oid)
}

func (s *service) Create(ctx context.Context, p *Product) (*Product, error) {
	log := logger.FromCtx(ctx)

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		log.Error("failed to create product", zap.String("name", p.Name), zap.Error(err))
		return nil, err
	}

	log.Info("product created",
		zap.String("product_id", created.ID.Hex()),
		zap.String("name", created.Name),
	)

	return created, nil
}

func (s *service) Update(ctx context.Context, id string, input UpdateInput) (*Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	if !input.HasChanges() {
		return nil, ErrNoFieldsToUpdate
	}

	return s.repo.Update(ctx, oid, input)
}

func (s *service) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrProductNotFound
	}

	if err := s.repo.Delete(ctx, oid); err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("product deleted", zap.String("product_id", id))
	return nil
}

func (s *service) AddReview(ctx context.Context, productID string, reviewerID primitive.ObjectID, reviewerName string, rating int, comment string) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddReview"),
		zap.String("product_id", productID),
		zap.String("reviewer_id", reviewerID.Hex()),
	)

	oid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, ErrProductNotFound
	}

	p, err := s.repo.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	for _, r := range p.Reviews {
		if r.UserID == reviewerID {
			log.Warn("duplicate review rejected")
			return nil, ErrDuplicateReview
		}
	}

	review := Review{
		UserID:    reviewerID,
		UserName:  reviewerName,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	}

	if err := s.repo.AppendReview(ctx, oid, review); err != nil {
		log.Error("failed to append review", zap.Error(err))
		return nil, err
	}

	// Recompute from the document as it is after the push, not from the
	// earlier read: a concurrent reviewer's rating must land in the mean.
	updated, err := s.repo.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	ratings := RecomputeRatings(updated.Reviews)
	if err := s.repo.SetRatings(ctx, oid, ratings); err != nil {
		log.Error("failed to store ratings aggregate", zap.Error(err))
		return nil, err
	}
	updated.Ratings = ratings

	log.Info("review added",
		zap.Int("rating", rating),
		zap.Float64("average", ratings.Average),
		zap.Int("count", ratings.Count),
	)

	return updated, nil
}
