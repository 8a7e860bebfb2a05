package service

import (
	"context"
	"strings"

	"github.com/pizza-nz/hotel-service/internal/db/repository"
	"github.com/pizza-nz/hotel-service/internal/models"
)

// CatalogService handles item administration
type CatalogService struct {
	repos *repository.Repositories
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repos *repository.Repositories) *CatalogService {
	return &CatalogService{
		repos: repos,
	}
}

// GetItems retrieves all items with their stored base price and rule
func (s *CatalogService) GetItems(ctx context.Context) ([]models.Item, error) {
	items, err := s.repos.Item.List(ctx)
	return items, storeErr("list items", err)
}

// CreateItem creates a new item
func (s *CatalogService) CreateItem(ctx context.Context, req models.ItemRequest) (*models.Item, error) {
	item, err := itemFromRequest(req)
	if err != nil {
		return nil, err
	}

	if err := s.repos.Item.Create(ctx, item); err != nil {
		return nil, storeErr("create item", err)
	}

	return &item, nil
}

// UpdateItem replaces an item's name, base price and rule
func (s *CatalogService) UpdateItem(ctx context.Context, req models.ItemRequest) (*models.Item, error) {
	item, err := itemFromRequest(req)
	if err != nil {
		return nil, err
	}

	if err := s.repos.Item.Update(ctx, item); err != nil {
		return nil, storeErr("update item", err)
	}

	return &item, nil
}

// DeleteItem deletes an item
func (s *CatalogService) DeleteItem(ctx context.Context, id int) error {
	return storeErr("delete item", s.repos.Item.Delete(ctx, id))
}

func itemFromRequest(req models.ItemRequest) (models.Item, error) {
	name := strings.TrimSpace(req.Name)
	switch {
	case req.ID <= 0:
		return models.Item{}, invalid("item ID", "must be a positive number")
	case name == "":
		return models.Item{}, invalid("item name", "must not be empty")
	case req.Price < 0:
		return models.Item{}, invalid("item price", "must not be negative")
	}

	return models.Item{
		ID:          req.ID,
		Name:        name,
		Price:       req.Price,
		PricingRule: req.PricingRule,
	}, nil
}
