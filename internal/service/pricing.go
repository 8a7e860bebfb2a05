package service

import (
	"context"

	"github.com/pizza-nz/hotel-service/internal/models"
)

// ItemStore is the read side of the item repository.
type ItemStore interface {
	GetByID(ctx context.Context, id int) (*models.Item, error)
	List(ctx context.Context) ([]models.Item, error)
}

// PricedItem pairs an item with its effective price.
type PricedItem struct {
	models.Item
	Effective float64
}

// PricingResolver derives effective prices from base price and rule tag.
// Results keep full precision; round only when displaying.
type PricingResolver struct {
	items ItemStore
}

// NewPricingResolver creates a new pricing resolver
func NewPricingResolver(items ItemStore) *PricingResolver {
	return &PricingResolver{items: items}
}

// Price returns the effective price of an item, or ErrNotFound.
func (p *PricingResolver) Price(ctx context.Context, itemID int) (float64, error) {
	item, err := p.Resolve(ctx, itemID)
	if err != nil {
		return 0, err
	}
	return item.Effective, nil
}

// Resolve returns the item together with its effective price.
func (p *PricingResolver) Resolve(ctx context.Context, itemID int) (*PricedItem, error) {
	item, err := p.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, storeErr("price item", err)
	}
	return &PricedItem{Item: *item, Effective: item.EffectivePrice()}, nil
}

// Menu lists every item with its effective price.
func (p *PricingResolver) Menu(ctx context.Context) ([]PricedItem, error) {
	items, err := p.items.List(ctx)
	if err != nil {
		return nil, storeErr("list menu", err)
	}

	menu := make([]PricedItem, 0, len(items))
	for _, item := range items {
		menu = append(menu, PricedItem{Item: item, Effective: item.EffectivePrice()})
	}

	return menu, nil
}
