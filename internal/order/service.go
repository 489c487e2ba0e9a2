package order

import (
	"context"
	"fmt"
	"math"
	"time"

	"shopmart-be/internal/logger"
	"shopmart-be/internal/metrics"
	"shopmart-be/internal/product"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Service interface {
	PlaceOrder(ctx context.Context, userID primitive.ObjectID, input PlaceOrderInput) (*Order, error)
	GetUserOrders(ctx context.Context, userID primitive.ObjectID) ([]*Order, error)
	GetOrderDetail(ctx context.Context, orderID string, requesterID primitive.ObjectID, isAdmin bool) (*Order, error)
	GetAllOrders(ctx context.Context, page, limit int64) (*ListResult, error)
	UpdateStatus(ctx context.Context, orderID string, status Status, trackingURL string) (*Order, error)
}

type service struct {
	repo   Repository
	counts *metrics.Registry
}

func NewService(repo Repository, counts *metrics.Registry) Service {
	return &service{repo: repo, counts: counts}
}

func (s *service) PlaceOrder(ctx context.Context, userID primitive.ObjectID, input PlaceOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PlaceOrder"),
		zap.String("user_id", userID.Hex()),
		zap.Int("item_count", len(input.Items)),
	)

	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if !ValidPaymentMethod(input.PaymentMethod) {
		return nil, ErrInvalidPayment
	}

	// 1. Resolve products, snapshot name and price, pre-check stock.
	items := make([]Item, 0, len(input.Items))
	total := 0.0

	for i, li := range input.Items {
		oid, err := primitive.ObjectIDFromHex(li.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", product.ErrProductNotFound, li.ProductID)
		}

		p, err := s.repo.GetProduct(ctx, oid)
		if err != nil {
			log.Warn("line item resolution failed",
				zap.Int("index", i),
				zap.String("product_id", li.ProductID),
				zap.Error(err),
			)
			return nil, err
		}

		if p.Stock < li.Quantity {
			s.counts.OversellRejections.Inc()
			return nil, &InsufficientStockError{
				ProductName: p.Name,
				Requested:   li.Quantity,
				Available:   p.Stock,
			}
		}

		items = append(items, Item{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  li.Quantity,
			Price:     p.Price,
		})
		total += p.Price * float64(li.Quantity)
	}

	// 2. Reserve stock. The conditional decrement closes the
	// check-then-act race: two orders racing for the last units cannot
	// both succeed, whatever the pre-check said.
	reserved := make([]Item, 0, len(items))
	for _, it := range items {
		ok, err := s.repo.DecrementStock(ctx, it.ProductID, it.Quantity)
		if err == nil && !ok {
			s.counts.OversellRejections.Inc()
			err = s.insufficientFor(ctx, it)
		}
		if err != nil {
			s.releaseStock(ctx, reserved)
			return nil, err
		}
		reserved = append(reserved, it)
	}

	// 3. Persist the order only once every unit is held.
	now := time.Now()
	o := &Order{
		UserID:          userID,
		Items:           items,
		TotalAmount:     total,
		Status:          StatusPending,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		PaymentStatus:   PaymentPending,
		OrderDate:       now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := s.repo.Insert(ctx, o)
	if err != nil {
		log.Error("failed to persist order", zap.Error(err))
		s.releaseStock(ctx, reserved)
		return nil, err
	}

	s.counts.OrdersPlaced.Inc()
	log.Info("order placed",
		zap.String("order_id", created.ID.Hex()),
		zap.Float64("total_amount", created.TotalAmount),
	)

	return created, nil
}

// insufficientFor rebuilds the stock error with fresh availability after a
// conditional decrement lost the race.
func (s *service) insufficientFor(ctx context.Context, it Item) error {
	available := 0
	if p, err := s.repo.GetProduct(ctx, it.ProductID); err == nil {
		available = p.Stock
	}
	return &InsufficientStockError{
		ProductName: it.Name,
		Requested:   it.Quantity,
		Available:   available,
	}
}

// releaseStock returns already-reserved units. It runs detached from the
// request's cancellation: a half-reserved order must not leak stock.
func (s *service) releaseStock(ctx context.Context, reserved []Item) {
	ctx = context.WithoutCancel(ctx)
	log := logger.FromCtx(ctx)

	for _, it := range reserved {
		if err := s.repo.RestoreStock(ctx, it.ProductID, it.Quantity); err != nil {
			log.Error("failed to restore stock",
				zap.String("product_id", it.ProductID.Hex()),
				zap.Int("quantity", it.Quantity),
				zap.Error(err),
			)
		}
	}
}

func (s *service) GetUserOrders(ctx context.Context, userID primitive.ObjectID) ([]*Order, error) {
	orders, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.resolveItemImages(ctx, orders)
	return orders, nil
}

func (s *service) GetOrderDetail(ctx context.Context, orderID string, requesterID primitive.ObjectID, isAdmin bool) (*Order, error) {
	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	o, err := s.repo.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	if o.UserID != requesterID && !isAdmin {
		return nil, ErrAccessDenied
	}

	s.resolveItemImages(ctx, []*Order{o})
	return o, nil
}

func (s *service) GetAllOrders(ctx context.Context, page, limit int64) (*ListResult, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	} else if limit > 100 {
		limit = 100
	}

	orders, total, err := s.repo.GetAll(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Items: orders,
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: int64(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

func (s *service) UpdateStatus(ctx context.Context, orderID string, status Status, trackingURL string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateStatus"),
		zap.String("order_id", orderID),
	)

	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	o, err := s.repo.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	if !o.Status.CanTransitionTo(status) {
		log.Warn("status transition rejected",
			zap.String("from", string(o.Status)),
			zap.String("to", string(status)),
		)
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, status)
	}

	updated, err := s.repo.UpdateStatus(ctx, oid, status, trackingURL)
	if err != nil {
		return nil, err
	}

	log.Info("order status updated",
		zap.String("from", string(o.Status)),
		zap.String("to", string(status)),
	)

	return updated, nil
}

// resolveItemImages attaches current product images to item snapshots for
// display. Missing products leave the item untouched.
func (s *service) resolveItemImages(ctx context.Context, orders []*Order) {
	idSet := map[primitive.ObjectID]struct{}{}
	for _, o := range orders {
		for _, it := range o.Items {
			idSet[it.ProductID] = struct{}{}
		}
	}

	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	byID, err := s.repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		logger.FromCtx(ctx).Warn("failed to resolve product images", zap.Error(err))
		return
	}

	for _, o := range orders {
		for i := range o.Items {
			if p, ok := byID[o.Items[i].ProductID]; ok {
				o.Items[i].Images = p.Images
			}
		}
	}
}
