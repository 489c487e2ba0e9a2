package product

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetList(ctx context.Context, opts QueryOptions) ([]*Product, int64, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, p *Product) (*Product, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id primitive.ObjectID, input UpdateInput) (*Product, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) AppendReview(ctx context.Context, id primitive.ObjectID, review Review) error {
	args := m.Called(ctx, id, review)
	return args.Error(0)
}

func (m *MockRepository) SetRatings(ctx context.Context, id primitive.ObjectID, ratings Ratings) error {
	args := m.Called(ctx, id, ratings)
	return args.Error(0)
}

// --- Tests ---

func TestRecomputeRatings(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, Ratings{}, RecomputeRatings(nil))
	})

	t.Run("Mean of all ratings", func(t *testing.T) {
		reviews := []Review{{Rating: 5}, {Rating: 3}, {Rating: 4}}
		got := RecomputeRatings(reviews)
		assert.Equal(t, 3, got.Count)
		assert.InDelta(t, 4.0, got.Average, 1e-9)
	})

	t.Run("Single review", func(t *testing.T) {
		got := RecomputeRatings([]Review{{Rating: 2}})
		assert.Equal(t, Ratings{Average: 2, Count: 1}, got)
	})
}

func TestService_GetList(t *testing.T) {
	ctx := context.Background()

	t.Run("Normalizes page and limit", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("GetList", ctx, mock.MatchedBy(func(opts QueryOptions) bool {
			return opts.Page == 1 && opts.Limit == 20
		})).Return([]*Product{}, int64(0), nil)

		_, err := svc.GetList(ctx, QueryOptions{Page: 0, Limit: -5})
		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Caps limit at 100", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("GetList", ctx, mock.MatchedBy(func(opts QueryOptions) bool {
			return opts.Limit == 100
		})).Return([]*Product{}, int64(0), nil)

		_, err := svc.GetList(ctx, QueryOptions{Page: 1, Limit: 500})
		assert.NoError(t, err)
	})

	t.Run("Pages is ceiling of total over limit", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("GetList", ctx, mock.Anything).Return([]*Product{{}, {}}, int64(41), nil)

		res, err := svc.GetList(ctx, QueryOptions{Page: 1, Limit: 20})
		assert.NoError(t, err)
		assert.Equal(t, int64(41), res.Total)
		assert.Equal(t, int64(3), res.Pages)
	})
}

func TestService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Malformed id maps to not found", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		_, err := svc.GetByID(ctx, "not-a-hex-id")
		assert.ErrorIs(t, err, ErrProductNotFound)
		mockRepo.AssertNotCalled(t, "GetByID")
	})

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		id := primitive.NewObjectID()

		mockRepo.On("GetByID", ctx, id).Return(&Product{ID: id, Name: "Widget"}, nil)

		p, err := svc.GetByID(ctx, id.Hex())
		assert.NoError(t, err)
		assert.Equal(t, "Widget", p.Name)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	id := primitive.NewObjectID()

	t.Run("No fields", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		_, err := svc.Update(ctx, id.Hex(), UpdateInput{})
		assert.ErrorIs(t, err, ErrNoFieldsToUpdate)
	})

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		name := "Renamed"
		input := UpdateInput{Name: &name}
		mockRepo.On("Update", ctx, id, input).Return(&Product{ID: id, Name: name}, nil)

		p, err := svc.Update(ctx, id.Hex(), input)
		assert.NoError(t, err)
		assert.Equal(t, name, p.Name)
	})
}

func TestService_AddReview(t *testing.T) {
	ctx := context.Background()
	productID := primitive.NewObjectID()
	reviewerID := primitive.NewObjectID()

	existing := func() *Product {
		return &Product{
			ID:      productID,
			Name:    "Widget",
			Reviews: []Review{{UserID: primitive.NewObjectID(), Rating: 5}},
			Ratings: Ratings{Average: 5, Count: 1},
		}
	}

	t.Run("Success recomputes the mean from the stored reviews", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		p := existing()
		mockRepo.On("GetByID", ctx, productID).Return(p, nil).Once()
		mockRepo.On("AppendReview", ctx, productID, mock.MatchedBy(func(r Review) bool {
			return r.UserID == reviewerID && r.Rating == 3 && r.Comment == "decent product"
		})).Return(nil)

		// The post-push read is the source of truth for the aggregate.
		stored := existing()
		stored.Reviews = append(stored.Reviews, Review{UserID: reviewerID, Rating: 3, Comment: "decent product"})
		mockRepo.On("GetByID", ctx, productID).Return(stored, nil).Once()
		mockRepo.On("SetRatings", ctx, productID, Ratings{Average: 4.0, Count: 2}).Return(nil)

		got, err := svc.AddReview(ctx, productID.Hex(), reviewerID, "Reviewer", 3, "decent product")
		assert.NoError(t, err)
		assert.Equal(t, Ratings{Average: 4.0, Count: 2}, got.Ratings)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Duplicate reviewer", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		p := existing()
		p.Reviews = append(p.Reviews, Review{UserID: reviewerID, Rating: 4})
		mockRepo.On("GetByID", ctx, productID).Return(p, nil)

		_, err := svc.AddReview(ctx, productID.Hex(), reviewerID, "Reviewer", 3, "again")
		assert.ErrorIs(t, err, ErrDuplicateReview)
		mockRepo.AssertNotCalled(t, "AppendReview")
	})

	t.Run("Product absent", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("GetByID", ctx, productID).Return(nil, ErrProductNotFound)

		_, err := svc.AddReview(ctx, productID.Hex(), reviewerID, "Reviewer", 3, "missing")
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

// reviewRepo is a fake with real guarded-push semantics for the race test.
type reviewRepo struct {
	mu sync.Mutex
	p  Product
}

func newReviewRepo(p Product) *reviewRepo {
	return &reviewRepo{p: p}
}

func (r *reviewRepo) GetList(ctx context.Context, opts QueryOptions) ([]*Product, int64, error) {
	return nil, 0, nil
}

func (r *reviewRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := r.p
	cp.Reviews = append([]Review{}, r.p.Reviews...)
	return &cp, nil
}

func (r *reviewRepo) Create(ctx context.Context, p *Product) (*Product, error) {
	return p, nil
}

func (r *reviewRepo) Update(ctx context.Context, id primitive.ObjectID, input UpdateInput) (*Product, error) {
	return nil, ErrProductNotFound
}

func (r *reviewRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

func (r *reviewRepo) AppendReview(ctx context.Context, id primitive.ObjectID, review Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.p.Reviews {
		if existing.UserID == review.UserID {
			return ErrDuplicateReview
		}
	}
	r.p.Reviews = append(r.p.Reviews, review)
	return nil
}

func (r *reviewRepo) SetRatings(ctx context.Context, id primitive.ObjectID, ratings Ratings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Mirrors the size guard: a stale aggregate never overwrites a newer one.
	if len(r.p.Reviews) != ratings.Count {
		return nil
	}
	r.p.Ratings = ratings
	return nil
}

// Two reviewers racing on the same product must both end up in the stored
// aggregate, whichever interleaving the scheduler picks.
func TestService_AddReview_ConcurrentReviewers(t *testing.T) {
	repo := newReviewRepo(Product{ID: primitive.NewObjectID(), Name: "Widget"})
	svc := NewService(repo)
	productID := repo.p.ID

	var wg sync.WaitGroup
	ratings := []int{5, 1}
	for _, rating := range ratings {
		wg.Add(1)
		go func(rating int) {
			defer wg.Done()
			_, err := svc.AddReview(context.Background(), productID.Hex(), primitive.NewObjectID(), "Reviewer", rating, "race entry")
			assert.NoError(t, err)
		}(rating)
	}
	wg.Wait()

	final, err := repo.GetByID(context.Background(), productID)
	assert.NoError(t, err)
	assert.Len(t, final.Reviews, 2)
	assert.Equal(t, 2, final.Ratings.Count)
	assert.Equal(t, 3.0, final.Ratings.Average)
}
