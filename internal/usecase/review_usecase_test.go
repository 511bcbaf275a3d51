package usecase_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks（衝突回避の命名）
// =====================

type RevRepoMock struct{ mock.Mock }

func (m *RevRepoMock) ListByProductID(ctx context.Context, productID int64, onlyApproved bool) ([]model.Review, error) {
	args := m.Called(ctx, productID, onlyApproved)
	list, _ := args.Get(0).([]model.Review)
	return list, args.Error(1)
}

func (m *RevRepoMock) ListAll(ctx context.Context) ([]model.Review, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.Review)
	return list, args.Error(1)
}

func (m *RevRepoMock) FindByID(ctx context.Context, id int64) (model.Review, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(model.Review)
	return r, args.Error(1)
}

func (m *RevRepoMock) Create(ctx context.Context, r model.Review) (model.Review, error) {
	args := m.Called(ctx, r)
	created, _ := args.Get(0).(model.Review)
	return created, args.Error(1)
}

func (m *RevRepoMock) SetApproved(ctx context.Context, id int64, approved bool) error {
	args := m.Called(ctx, id, approved)
	return args.Error(0)
}

func (m *RevRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newReviewUsecase() (*usecase.ReviewUsecase, *RevRepoMock, *CartProductRepoMock) {
	rRepo := new(RevRepoMock)
	pRepo := new(CartProductRepoMock)
	return usecase.NewReviewUsecase(rRepo, pRepo), rRepo, pRepo
}

// =====================
// Create
// =====================

// 投稿直後は未承認。承認されるまで公開一覧に出ない。
func TestReviewUsecase_Create_StartsUnapproved(t *testing.T) {
	uc, rRepo, pRepo := newReviewUsecase()

	pRepo.On("FindByID", mock.Anything, int64(10)).Return(model.Product{ID: 10}, nil)
	rRepo.On("Create", mock.Anything, mock.MatchedBy(func(r model.Review) bool {
		return !r.IsApproved && r.Rating == 5 && r.UserID == 7
	})).Return(model.Review{ID: 1, ProductID: 10, UserID: 7, Rating: 5, IsApproved: false}, nil)

	out, err := uc.Create(context.Background(), 7, usecase.CreateReviewInput{
		ProductID: 10,
		Rating:    5,
		Comment:   "Отличный диван",
	})
	assert.NoError(t, err)
	assert.False(t, out.IsApproved)

	rRepo.AssertExpectations(t)
}

func TestReviewUsecase_Create_InvalidRating(t *testing.T) {
	uc, _, _ := newReviewUsecase()

	for _, rating := range []int{0, 6} {
		_, err := uc.Create(context.Background(), 7, usecase.CreateReviewInput{
			ProductID: 10,
			Rating:    rating,
			Comment:   "ok",
		})
		assertHTTPStatus(t, err, http.StatusBadRequest)
	}
}

func TestReviewUsecase_Create_CommentTooLong(t *testing.T) {
	uc, _, _ := newReviewUsecase()

	_, err := uc.Create(context.Background(), 7, usecase.CreateReviewInput{
		ProductID: 10,
		Rating:    4,
		Comment:   strings.Repeat("a", 2001),
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestReviewUsecase_Create_ProductNotFound(t *testing.T) {
	uc, _, pRepo := newReviewUsecase()

	pRepo.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.Create(context.Background(), 7, usecase.CreateReviewInput{
		ProductID: 99,
		Rating:    4,
		Comment:   "ok",
	})
	assertHTTPStatus(t, err, http.StatusNotFound)
}

// =====================
// List / Moderation
// =====================

func TestReviewUsecase_ListByProduct_OnlyApproved(t *testing.T) {
	uc, rRepo, _ := newReviewUsecase()

	rRepo.On("ListByProductID", mock.Anything, int64(10), true).
		Return([]model.Review{{ID: 1, ProductID: 10, IsApproved: true}}, nil)

	out, err := uc.ListByProduct(context.Background(), 10)
	assert.NoError(t, err)
	assert.Len(t, out, 1)

	rRepo.AssertExpectations(t)
}

func TestReviewUsecase_AdminSetApproved(t *testing.T) {
	uc, rRepo, _ := newReviewUsecase()

	rRepo.On("SetApproved", mock.Anything, int64(1), true).Return(nil)

	err := uc.AdminSetApproved(context.Background(), 1, true)
	assert.NoError(t, err)
}

func TestReviewUsecase_AdminSetApproved_NotFound(t *testing.T) {
	uc, rRepo, _ := newReviewUsecase()

	rRepo.On("SetApproved", mock.Anything, int64(9), true).Return(repo.ErrNotFound)

	err := uc.AdminSetApproved(context.Background(), 9, true)
	assertHTTPStatus(t, err, http.StatusNotFound)
}
