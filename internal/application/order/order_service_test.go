package order

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/troves/backend/internal/domain/cart"
	"github.com/troves/backend/internal/domain/catalog"
	"github.com/troves/backend/internal/domain/order"
	"github.com/troves/backend/internal/domain/shared"
	"github.com/troves/backend/internal/testutil"
	"go.uber.org/zap"
)

const session = "sess-checkout"

type fixture struct {
	svc      *Service
	products *testutil.MockProductRepository
	carts    *testutil.MockCartRepository
	orders   *testutil.MockOrderRepository
	uow      *testutil.MockUnitOfWork
	pub      *testutil.RecordingPublisher
	receipts *fakeReceipts
}

type fakeReceipts struct {
	pdf bool
}

func (f *fakeReceipts) HTML(_ context.Context, o *order.Order) ([]byte, error) {
	return []byte("<html>" + o.OrderNumber + "</html>"), nil
}

func (f *fakeReceipts) PDF(_ context.Context, _ *order.Order) ([]byte, error) {
	return []byte("%PDF-1.4"), nil
}

func (f *fakeReceipts) PDFEnabled() bool { return f.pdf }

func newFixture() *fixture {
	f := &fixture{
		products: new(testutil.MockProductRepository),
		carts:    new(testutil.MockCartRepository),
		orders:   new(testutil.MockOrderRepository),
		pub:      &testutil.RecordingPublisher{},
		receipts: &fakeReceipts{},
	}
	f.uow = &testutil.MockUnitOfWork{Repos: order.Repositories{Products: f.products, Carts: f.carts, Orders: f.orders}}
	f.svc = NewService(f.uow, f.orders, f.receipts, f.pub, zap.NewNop())
	return f
}

func stockedProduct(t *testing.T, name string, price float64, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("", catalog.ProductDetails{Name: name, Price: decimal.NewFromFloat(price)})
	require.NoError(t, err)
	require.NoError(t, p.AdjustStock(stock, "seed"))
	p.ClearDomainEvents()
	return p
}

func placeRequest() PlaceOrderRequest {
	return PlaceOrderRequest{
		Customer: CustomerInput{Name: "Luna Rivers", Email: "Luna@Example.com"},
		ShippingAddress: AddressInput{
			Line1: "12 Harbour Road", City: "Bristol", PostalCode: "BS1 4DJ", Country: "GB",
		},
	}
}

func existingOrder(t *testing.T, items ...order.Line) *order.Order {
	t.Helper()
	if len(items) == 0 {
		items = []order.Line{{ProductID: uuid.New(), ProductName: "Amethyst Point", UnitPrice: decimal.NewFromInt(12), Quantity: 2}}
	}
	o, err := order.NewOrder(session, order.Customer{Name: "Luna Rivers", Email: "luna@example.com"},
		order.Address{Line1: "12 Harbour Road", City: "Bristol", PostalCode: "BS1 4DJ", Country: "GB"}, items, "")
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

func TestService_PlaceOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	tiger := stockedProduct(t, "Tiger's Eye Bracelet", 24.25, 5)
	amethyst := stockedProduct(t, "Amethyst Point", 12, 10)
	c, err := cart.New(session)
	require.NoError(t, err)
	_, _ = c.Add(tiger.ID, 2)
	_, _ = c.Add(amethyst.ID, 1)

	f.carts.On("FindBySession", ctx, session).Return(c, nil)
	f.products.On("FindByID", ctx, tiger.ID).Return(tiger, nil)
	f.products.On("FindByID", ctx, amethyst.ID).Return(amethyst, nil)
	f.products.On("SaveWithLock", ctx, tiger, tiger.Version).Return(nil)
	f.products.On("SaveWithLock", ctx, amethyst, amethyst.Version).Return(nil)
	f.orders.On("Save", ctx, mock.AnythingOfType("*order.Order")).Return(nil)
	f.carts.On("DeleteBySession", ctx, session).Return(nil)

	resp, err := f.svc.PlaceOrder(ctx, session, placeRequest())
	require.NoError(t, err)

	assert.Equal(t, "PENDING", resp.Status)
	assert.Equal(t, "luna@example.com", resp.CustomerEmail)
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromFloat(60.5)))
	assert.Equal(t, 3, resp.ItemCount)
	assert.Regexp(t, `^TC-\d{8}-[0-9A-F]{6}$`, resp.OrderNumber)
	assert.Equal(t, 3, tiger.Stock)
	assert.Equal(t, 9, amethyst.Stock)

	types := f.pub.Types()
	assert.Contains(t, types, order.EventTypeOrderPlaced)
	assert.Contains(t, types, catalog.EventTypeProductStockChanged)
	assert.Equal(t, 1, f.uow.Calls)
	f.carts.AssertExpectations(t)
	f.orders.AssertExpectations(t)
}

func TestService_PlaceOrder_EmptyCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.carts.On("FindBySession", ctx, session).Return(cart.Load(session, nil), nil)

	_, err := f.svc.PlaceOrder(ctx, session, placeRequest())
	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "EMPTY_CART", de.Code)
	assert.Empty(t, f.pub.Events())
}

func TestService_PlaceOrder_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := stockedProduct(t, "Labradorite Ring", 30, 1)
	c := cart.Load(session, nil)
	_, _ = c.Add(p.ID, 2)

	f.carts.On("FindBySession", ctx, session).Return(c, nil)
	f.products.On("FindByID", ctx, p.ID).Return(p, nil)

	_, err := f.svc.PlaceOrder(ctx, session, placeRequest())
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Labradorite Ring")
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.carts.AssertNotCalled(t, "DeleteBySession", mock.Anything, mock.Anything)
}

func TestService_PlaceOrder_VanishedProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	id := uuid.New()
	c := cart.Load(session, nil)
	_, _ = c.Add(id, 1)

	f.carts.On("FindBySession", ctx, session).Return(c, nil)
	f.products.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

	_, err := f.svc.PlaceOrder(ctx, session, placeRequest())
	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "PRODUCT_UNAVAILABLE", de.Code)
}

func TestService_Get_Visibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := existingOrder(t)
	f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

	_, err := f.svc.Get(ctx, o.ID, Viewer{SessionID: session})
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, o.ID, Viewer{SessionID: "someone-else"})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = f.svc.Get(ctx, o.ID, Viewer{})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = f.svc.Get(ctx, o.ID, Viewer{Admin: true})
	require.NoError(t, err)
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := existingOrder(t)
	f.orders.On("FindAll", mock.Anything, mock.MatchedBy(func(fl shared.Filter) bool {
		return fl.Filters["status"] == "PENDING" && fl.Filters["email"] == "luna@example.com"
	})).Return([]order.Order{*o}, nil)
	f.orders.On("Count", mock.Anything, mock.Anything).Return(int64(1), nil)

	items, total, err := f.svc.List(ctx, ListFilter{Status: "PENDING", Email: "luna@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
}

func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := existingOrder(t)
	f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
	f.orders.On("SaveWithLock", ctx, o, mock.AnythingOfType("int")).Return(nil)

	resp, err := f.svc.Confirm(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", resp.Status)
	assert.NotNil(t, resp.ConfirmedAt)

	resp, err = f.svc.Ship(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "SHIPPED", resp.Status)

	_, err = f.svc.Confirm(ctx, o.ID)
	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "INVALID_STATE", de.Code)

	resp, err = f.svc.Deliver(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "DELIVERED", resp.Status)
	assert.Len(t, f.pub.Types(), 3)
	assert.Equal(t, 4, f.uow.Calls)
}

func TestService_Transition_StaleVersion(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := existingOrder(t)
	f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
	f.orders.On("SaveWithLock", ctx, o, o.Version).Return(shared.ErrConcurrencyConflict)

	_, err := f.svc.Confirm(ctx, o.ID)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.Empty(t, f.pub.Types())
}

func TestService_Cancel_RestoresStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := stockedProduct(t, "Amethyst Point", 12, 1)
	deleted := uuid.New()
	o := existingOrder(t,
		order.Line{ProductID: p.ID, ProductName: p.Name, UnitPrice: p.Price, Quantity: 2},
		order.Line{ProductID: deleted, ProductName: "Old Stock", UnitPrice: decimal.NewFromInt(5), Quantity: 1},
	)

	f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
	f.products.On("FindByID", ctx, p.ID).Return(p, nil)
	f.products.On("FindByID", ctx, deleted).Return(nil, shared.ErrNotFound)
	f.products.On("SaveWithLock", ctx, p, p.Version).Return(nil)
	f.orders.On("SaveWithLock", ctx, o, o.Version).Return(nil)

	resp, err := f.svc.Cancel(ctx, o.ID, CancelOrderRequest{Reason: "changed my mind"})
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", resp.Status)
	assert.Equal(t, "changed my mind", resp.CancelReason)
	assert.Equal(t, 3, p.Stock)
	assert.Contains(t, f.pub.Types(), order.EventTypeOrderStatusChanged)
}

func TestService_Cancel_ShippedOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := existingOrder(t)
	require.NoError(t, o.Confirm())
	require.NoError(t, o.Ship())
	f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

	_, err := f.svc.Cancel(ctx, o.ID, CancelOrderRequest{})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	f.products.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Receipt(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := existingOrder(t)
	f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
	viewer := Viewer{SessionID: session}

	doc, err := f.svc.Receipt(ctx, o.ID, viewer, ReceiptHTML)
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=utf-8", doc.ContentType)
	assert.Contains(t, string(doc.Data), o.OrderNumber)
	assert.Equal(t, "receipt-"+o.OrderNumber+".html", doc.Filename)

	_, err = f.svc.Receipt(ctx, o.ID, viewer, ReceiptPDF)
	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "RECEIPT_UNAVAILABLE", de.Code)

	f.receipts.pdf = true
	doc, err = f.svc.Receipt(ctx, o.ID, viewer, ReceiptPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)

	_, err = f.svc.Receipt(ctx, o.ID, viewer, "docx")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
