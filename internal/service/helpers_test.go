package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Skotchmaster/marketplace/internal/gateway"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/notify"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(dec(want)), "want %s, got %s", want, got.String())
}

type fakeGateway struct {
	mu            sync.Mutex
	initialized   []gateway.InitializeRequest
	verifications map[string]gateway.Verification
	initErr       error
	verifyErr     error
	verifyCalls   int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{verifications: make(map[string]gateway.Verification)}
}

func (g *fakeGateway) Initialize(ctx context.Context, req gateway.InitializeRequest) (*gateway.InitializeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.initErr != nil {
		return nil, g.initErr
	}
	g.initialized = append(g.initialized, req)
	return &gateway.InitializeResult{
		Reference:        req.Reference,
		AuthorizationURL: "https://checkout.example/" + req.Reference,
		AccessCode:       "ac_" + req.Reference,
	}, nil
}

func (g *fakeGateway) Verify(ctx context.Context, reference string) (*gateway.Verification, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifyCalls++
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	v, ok := g.verifications[reference]
	if !ok {
		return &gateway.Verification{Reference: reference, Status: "failed"}, nil
	}
	return &v, nil
}

// succeed records a successful charge of amount for reference.
func (g *fakeGateway) succeed(reference, amount string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	minor := dec(amount).Shift(2).IntPart()
	g.verifications[reference] = gateway.Verification{
		Reference:   reference,
		Status:      gateway.StatusSuccess,
		AmountMinor: minor,
		Currency:    "NGN",
	}
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (n *fakeNotifier) Send(ctx context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

func (n *fakeNotifier) messages() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.sent...)
}

type publishedEvent struct {
	Topic string
	Key   string
	Event any
}

type fakeEvents struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakeEvents) PublishEvent(ctx context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Key: key, Event: event})
	return p.err
}

func (p *fakeEvents) ofType(typ string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		switch ev := e.Event.(type) {
		case OrderEvent:
			if ev.Type == typ {
				n++
			}
		case WithdrawalEvent:
			if ev.Type == typ {
				n++
			}
		}
	}
	return n
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
	err  error
}

func (l *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, false, l.err
	}
	if l.held == nil {
		l.held = make(map[string]bool)
	}
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	return func(context.Context) {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
	}, true, nil
}

var errBoom = errors.New("boom")

type env struct {
	t      *testing.T
	ctx    context.Context
	db     *gorm.DB
	repo   *repo.GormRepo
	gw     *fakeGateway
	notes  *fakeNotifier
	events *fakeEvents

	cart        *CartService
	checkout    *CheckoutService
	orders      *OrderService
	payments    *PaymentService
	ledger      *LedgerService
	withdrawals *WithdrawalService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := testutil.NewDB(t)
	r := repo.New(db)
	gw := newFakeGateway()
	notes := &fakeNotifier{}
	events := &fakeEvents{}

	return &env{
		t:      t,
		ctx:    context.Background(),
		db:     db,
		repo:   r,
		gw:     gw,
		notes:  notes,
		events: events,

		cart:     &CartService{Repo: r, Catalog: r},
		checkout: &CheckoutService{Repo: r, Catalog: r, Notifier: notes, Events: events},
		orders:   &OrderService{Repo: r, Events: events},
		payments: &PaymentService{
			Repo:        r,
			Gateway:     gw,
			Notifier:    notes,
			Events:      events,
			CallbackURL: "https://shop.example/paid",
			Currency:    "NGN",
		},
		ledger:      &LedgerService{Repo: r},
		withdrawals: &WithdrawalService{Repo: r, Notifier: notes, Events: events},
	}
}

func (e *env) customer(name string) Actor {
	u := testutil.SeedCustomer(e.t, e.db, name)
	return Actor{UserID: u.ID, Role: models.RoleCustomer, Email: u.Email}
}

func (e *env) vendor(store string) Actor {
	u, v := testutil.SeedVendor(e.t, e.db, store)
	id := v.ID
	return Actor{UserID: u.ID, Role: models.RoleVendor, VendorID: &id, Email: u.Email}
}

func admin() Actor {
	return Actor{UserID: uuid.New(), Role: models.RoleAdmin, Email: "admin@example.com"}
}

func (e *env) product(vendor Actor, name, price string) *models.Product {
	return testutil.SeedProduct(e.t, e.db, *vendor.VendorID, name, price)
}

func (e *env) add(buyer Actor, p *models.Product, qty int) *models.CartItem {
	e.t.Helper()
	item, err := e.cart.AddItem(e.ctx, buyer, AddItemInput{ProductID: p.ID, Quantity: qty})
	require.NoError(e.t, err)
	return item
}

func (e *env) balance(vendor Actor) (decimal.Decimal, decimal.Decimal) {
	e.t.Helper()
	earning, err := e.repo.GetEarning(e.ctx, *vendor.VendorID)
	require.NoError(e.t, err)
	return earning.Balance, earning.TotalWithdrawn
}

func (e *env) order(id uuid.UUID) *models.Order {
	e.t.Helper()
	o, err := e.repo.GetOrder(e.ctx, id)
	require.NoError(e.t, err)
	return o
}

func chargeSuccess(ref string) []byte {
	return []byte(`{"event":"charge.success","data":{"reference":"` + ref + `"}}`)
}
