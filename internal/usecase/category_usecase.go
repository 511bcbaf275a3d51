package usecase

import (
	"context"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/slug"
)

type CategoryUsecase struct {
	categoryRepo repo.CategoryRepository
}

// DI
func NewCategoryUsecase(categoryRepo repo.CategoryRepository) *CategoryUsecase {
	return &CategoryUsecase{categoryRepo: categoryRepo}
}

func (u *CategoryUsecase) List(ctx context.Context) ([]model.Category, error) {
	list, err := u.categoryRepo.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return list, nil
}

type CategoryInput struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parentId"`
}

func (u *CategoryUsecase) AdminCreate(ctx context.Context, in CategoryInput) (model.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "name required")
	}

	//親は1階層のみ（孫カテゴリは作らない）
	if in.ParentID != nil {
		parent, err := u.categoryRepo.FindByID(ctx, *in.ParentID)
		if err == repo.ErrNotFound {
			return model.Category{}, NewHTTPError(http.StatusBadRequest, "parent category not found")
		}
		if err != nil {
			return model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if parent.ParentID != nil {
			return model.Category{}, NewHTTPError(http.StatusBadRequest, "nested subcategories are not allowed")
		}
	}

	s, err := slug.Generate(ctx, u.categoryRepo, name, 0)
	if err != nil {
		return model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	c, err := u.categoryRepo.Create(ctx, model.Category{
		Name:     name,
		Slug:     s,
		ParentID: in.ParentID,
	})
	if err != nil {
		return model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return c, nil
}

func (u *CategoryUsecase) AdminUpdate(ctx context.Context, id int64, in CategoryInput) (model.Category, error) {
	if id <= 0 {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "name required")
	}

	current, err := u.categoryRepo.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return model.Category{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	newSlug := current.Slug
	if name != current.Name {
		newSlug, err = slug.Generate(ctx, u.categoryRepo, name, id)
		if err != nil {
			return model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	current.Name = name
	current.Slug = newSlug
	current.ParentID = in.ParentID

	if err := u.categoryRepo.Update(ctx, current); err != nil {
		if err == repo.ErrNotFound {
			return model.Category{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return current, nil
}

func (u *CategoryUsecase) AdminDelete(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := u.categoryRepo.Delete(ctx, id); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
