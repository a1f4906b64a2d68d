package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"company-workspace-backend/pkg/database"
	"company-workspace-backend/pkg/logger"
	"company-workspace-backend/pkg/models"
)

// CategoryUpdate is the payload of the category editor
type CategoryUpdate struct {
	Name  string
	Color string
}

type CategoryService interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	UpdateCategory(ctx context.Context, id string, update CategoryUpdate) error
	DeleteCategory(ctx context.Context, id string) error
	Palette() []string
}

type categoryService struct {
	db database.DatabaseInterface
}

func NewCategoryService(db database.DatabaseInterface) CategoryService {
	return &categoryService{db: db}
}

func (s *categoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.db.ListCategories(ctx)
	if err != nil {
		logger.Categories().WithError(err).Error("failed to list categories")
		return nil, err
	}
	return categories, nil
}

// UpdateCategory renames and recolours a category. Any colour is accepted;
// the palette only drives the editor.
func (s *categoryService) UpdateCategory(ctx context.Context, id string, update CategoryUpdate) error {
	name := strings.TrimSpace(update.Name)
	if strings.TrimSpace(id) == "" || name == "" {
		return ErrInvalidInput
	}
	if err := s.db.UpdateCategory(ctx, id, name, strings.TrimSpace(update.Color)); err != nil {
		logger.Categories().WithError(err).WithFields(logrus.Fields{
			"category_id": id,
			"name":        name,
		}).Error("failed to update category")
		return err
	}
	return nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	if err := s.db.DeleteCategory(ctx, id); err != nil {
		logger.Categories().WithError(err).WithField("category_id", id).Error("failed to delete category")
		return err
	}
	return nil
}

// Palette returns a copy of the editor's preset colours
func (s *categoryService) Palette() []string {
	out := make([]string, len(models.CategoryPalette))
	copy(out, models.CategoryPalette)
	return out
}
