package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartService struct {
	Repo    *repo.GormRepo
	Catalog Catalog
}

type AddItemInput struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
}

func (s *CartService) GetCart(ctx context.Context, actor Actor) (*models.Cart, error) {
	cart, err := s.Repo.GetOrCreateCart(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	items, err := s.Repo.CartItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items
	return cart, nil
}

// AddItem always appends a new line, even for a product already in the cart.
func (s *CartService) AddItem(ctx context.Context, actor Actor, in AddItemInput) (*models.CartItem, error) {
	if in.ProductID == uuid.Nil {
		return nil, fmt.Errorf("%w: product_id required", ErrValidation)
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	}

	if _, err := s.Catalog.ResolveProduct(ctx, in.ProductID); err != nil {
		return nil, translate(err, "product "+in.ProductID.String())
	}
	if in.VariantID != nil {
		v, err := s.Catalog.ResolveVariant(ctx, *in.VariantID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown variant %s", ErrValidation, *in.VariantID)
		}
		if err != nil {
			return nil, err
		}
		if v.ProductID != in.ProductID {
			return nil, fmt.Errorf("%w: variant %s is not a variant of product %s", ErrValidation, v.ID, in.ProductID)
		}
	}

	cart, err := s.Repo.GetOrCreateCart(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	item := &models.CartItem{
		CartID:    cart.ID,
		ProductID: in.ProductID,
		VariantID: in.VariantID,
		Quantity:  uint(in.Quantity),
	}
	if err := s.Repo.AddCartItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, actor Actor, itemID uuid.UUID) error {
	cart, err := s.Repo.GetOrCreateCart(ctx, actor.UserID)
	if err != nil {
		return err
	}
	return translate(s.Repo.DeleteCartItem(ctx, cart.ID, itemID), "cart item "+itemID.String())
}

func (s *CartService) ClearCart(ctx context.Context, actor Actor) error {
	cart, err := s.Repo.GetOrCreateCart(ctx, actor.UserID)
	if err != nil {
		return err
	}
	_, err = s.Repo.ClearCart(ctx, cart.ID)
	return err
}
