package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/Skotchmaster/marketplace/internal/metrics"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/money"
	"github.com/Skotchmaster/marketplace/internal/notify"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const transactionRefBytes = 12

type CheckoutService struct {
	Repo    *repo.GormRepo
	Catalog Catalog

	Notifier Notifier
	Events   EventPublisher
}

type CheckoutResult struct {
	TransactionRef string         `json:"transaction_ref"`
	Orders         []models.Order `json:"orders"`
}

type pricedLine struct {
	item    models.CartItem
	product *repo.ProductInfo
}

// Checkout splits the actor's cart into one pending order per vendor. All
// orders share a fresh transaction reference. Orders are written and the
// cart lines removed in one transaction; if any line read here is already
// gone by then, nothing is written.
func (s *CheckoutService) Checkout(ctx context.Context, actor Actor) (*CheckoutResult, error) {
	cart, err := s.Repo.GetOrCreateCart(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	items, err := s.Repo.CartItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		metrics.CheckoutsTotal.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}

	byVendor := make(map[uuid.UUID][]pricedLine)
	lineIDs := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		p, err := s.Catalog.ResolveProduct(ctx, it.ProductID)
		if err != nil {
			return nil, translate(err, "product "+it.ProductID.String()+" is no longer available")
		}
		byVendor[p.VendorID] = append(byVendor[p.VendorID], pricedLine{item: it, product: p})
		lineIDs = append(lineIDs, it.ID)
	}

	txRef, err := NewTransactionRef()
	if err != nil {
		return nil, err
	}
	orders := splitOrders(actor.UserID, txRef, byVendor)

	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if err := tx.LockCart(ctx, cart.ID); err != nil {
			return err
		}
		if err := tx.CreateOrders(ctx, orders); err != nil {
			return err
		}
		n, err := tx.DeleteCartItems(ctx, cart.ID, lineIDs)
		if err != nil {
			return err
		}
		if n != int64(len(lineIDs)) {
			return fmt.Errorf("%w: cart changed during checkout", ErrConflict)
		}
		return nil
	})
	if err != nil {
		metrics.CheckoutsTotal.WithLabelValues("failed").Inc()
		return nil, translate(err, "cart")
	}

	metrics.CheckoutsTotal.WithLabelValues("ok").Inc()
	metrics.OrdersTotal.WithLabelValues(string(models.OrderStatusPending)).Add(float64(len(orders)))

	s.afterCheckout(ctx, actor, txRef, orders)

	out := &CheckoutResult{TransactionRef: txRef, Orders: make([]models.Order, 0, len(orders))}
	for _, o := range orders {
		out.Orders = append(out.Orders, *o)
	}
	return out, nil
}

// splitOrders builds one pending order per vendor, ordered by vendor id.
// Item prices are the catalog prices resolved for this checkout.
func splitOrders(userID uuid.UUID, txRef string, byVendor map[uuid.UUID][]pricedLine) []*models.Order {
	vendors := make([]uuid.UUID, 0, len(byVendor))
	for v := range byVendor {
		vendors = append(vendors, v)
	}
	sort.Slice(vendors, func(i, j int) bool { return vendors[i].String() < vendors[j].String() })

	orders := make([]*models.Order, 0, len(vendors))
	for _, vendorID := range vendors {
		lines := byVendor[vendorID]
		total := decimal.Zero
		orderItems := make([]models.OrderItem, 0, len(lines))
		for _, l := range lines {
			total = total.Add(money.LineTotal(l.product.Price, l.item.Quantity))
			orderItems = append(orderItems, models.OrderItem{
				ProductID: l.item.ProductID,
				VariantID: l.item.VariantID,
				Quantity:  l.item.Quantity,
				Price:     l.product.Price,
			})
		}

		orders = append(orders, &models.Order{
			ID:             uuid.New(),
			UserID:         userID,
			VendorID:       vendorID,
			TotalPrice:     total,
			Commission:     money.Commission(total),
			Status:         models.OrderStatusPending,
			TransactionRef: txRef,
			Items:          orderItems,
		})
	}
	return orders
}

func (s *CheckoutService) afterCheckout(ctx context.Context, actor Actor, txRef string, orders []*models.Order) {
	fx := sideEffects{Notifier: s.Notifier, Events: s.Events}

	var b strings.Builder
	fmt.Fprintf(&b, "Your order %s was placed.\n\n", txRef)
	grand := decimal.Zero
	for _, o := range orders {
		fmt.Fprintf(&b, "Order %s: %d item(s), %s\n", o.ID, len(o.Items), o.TotalPrice.StringFixed(2))
		grand = grand.Add(o.TotalPrice)
		fx.publish(ctx, TopicOrders, o.ID.String(), newOrderEvent(EventOrderCreated, o))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", grand.StringFixed(2))

	fx.notify(ctx, notify.Message{
		Subject:    "Order placed: " + txRef,
		Body:       b.String(),
		Recipients: recipients(actorEmail(ctx, s.Repo, actor)),
	})
}

// NewTransactionRef returns 96 random bits, hex encoded.
func NewTransactionRef() (string, error) {
	b := make([]byte, transactionRefBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("transaction ref: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func recipients(emails ...string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}
