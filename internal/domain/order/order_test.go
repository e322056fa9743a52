package order

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/troves/backend/internal/domain/shared"
)

func testCustomer() Customer {
	return Customer{Name: "Luna Vale", Email: " Luna@Example.com ", Phone: "555-0101"}
}

func testAddress() Address {
	return Address{Line1: "12 Quartz Lane", City: "Sedona", State: "AZ", PostalCode: "86336", Country: "US"}
}

func testLines() []Line {
	return []Line{
		{ProductID: uuid.New(), ProductName: "Rose Quartz Bracelet", UnitPrice: decimal.NewFromFloat(24.99), Quantity: 2},
		{ProductID: uuid.New(), ProductName: "Moonstone Ring", UnitPrice: decimal.NewFromInt(60), Quantity: 1},
	}
}

func TestNewOrder(t *testing.T) {
	o, err := NewOrder("sess-1", testCustomer(), testAddress(), testLines(), "gift wrap please")
	require.NoError(t, err)

	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, "luna@example.com", o.Customer.Email)
	assert.Len(t, o.Items, 2)
	assert.Equal(t, 3, o.ItemCount())
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromFloat(109.98)), o.TotalAmount.String())
	assert.Regexp(t, regexp.MustCompile(`^TC-\d{8}-[0-9A-F]{6}$`), o.OrderNumber)
	for _, it := range o.Items {
		assert.Equal(t, o.ID, it.OrderID)
	}

	events := o.GetDomainEvents()
	require.Len(t, events, 1)
	placed, ok := events[0].(*OrderPlacedEvent)
	require.True(t, ok)
	assert.Equal(t, o.OrderNumber, placed.OrderNumber)
	assert.True(t, placed.TotalAmount.Equal(o.TotalAmount))
}

func TestNewOrderValidation(t *testing.T) {
	dupID := uuid.New()
	tests := []struct {
		name     string
		session  string
		customer Customer
		address  Address
		lines    []Line
		code     string
	}{
		{"missing session", "", testCustomer(), testAddress(), testLines(), "INVALID_SESSION"},
		{"bad email", "s", Customer{Name: "A", Email: "not-an-email"}, testAddress(), testLines(), "INVALID_EMAIL"},
		{"missing name", "s", Customer{Email: "a@b.co"}, testAddress(), testLines(), "INVALID_CUSTOMER"},
		{"missing city", "s", testCustomer(), Address{Line1: "x", PostalCode: "1", Country: "US"}, testLines(), "INVALID_ADDRESS"},
		{"no lines", "s", testCustomer(), testAddress(), nil, "EMPTY_CART"},
		{"zero quantity", "s", testCustomer(), testAddress(), []Line{{ProductID: uuid.New(), ProductName: "x", UnitPrice: decimal.NewFromInt(1)}}, "INVALID_QUANTITY"},
		{"duplicate product", "s", testCustomer(), testAddress(), []Line{
			{ProductID: dupID, ProductName: "x", UnitPrice: decimal.NewFromInt(1), Quantity: 1},
			{ProductID: dupID, ProductName: "x", UnitPrice: decimal.NewFromInt(1), Quantity: 1},
		}, "DUPLICATE_ITEM"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrder(tt.session, tt.customer, tt.address, tt.lines, "")
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.code, de.Code)
		})
	}
}

func TestStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusConfirmed, StatusShipped, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestOrderLifecycle(t *testing.T) {
	o, err := NewOrder("sess-1", testCustomer(), testAddress(), testLines(), "")
	require.NoError(t, err)
	o.ClearDomainEvents()

	require.NoError(t, o.Confirm())
	require.NotNil(t, o.ConfirmedAt)
	require.NoError(t, o.Ship())
	require.NotNil(t, o.ShippedAt)
	require.NoError(t, o.Deliver())
	require.NotNil(t, o.DeliveredAt)
	assert.True(t, o.Status.IsTerminal())
	assert.Equal(t, 4, o.Version)

	events := o.GetDomainEvents()
	require.Len(t, events, 3)
	last := events[2].(*OrderStatusChangedEvent)
	assert.Equal(t, StatusShipped, last.OldStatus)
	assert.Equal(t, StatusDelivered, last.NewStatus)

	err = o.Cancel("too late")
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestOrderCancel(t *testing.T) {
	o, err := NewOrder("sess-1", testCustomer(), testAddress(), testLines(), "")
	require.NoError(t, err)

	require.NoError(t, o.Cancel("  changed my mind "))
	assert.Equal(t, StatusCancelled, o.Status)
	assert.Equal(t, "changed my mind", o.CancelReason)
	require.NotNil(t, o.CancelledAt)
}

func TestOrderBelongsTo(t *testing.T) {
	o, err := NewOrder("sess-1", testCustomer(), testAddress(), testLines(), "")
	require.NoError(t, err)
	assert.True(t, o.BelongsTo("sess-1"))
	assert.False(t, o.BelongsTo("sess-2"))
	assert.False(t, o.BelongsTo(""))
}

func TestGenerateOrderNumber(t *testing.T) {
	at := time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC)
	n := GenerateOrderNumber(at)
	assert.Contains(t, n, "TC-20260314-")
	assert.NotEqual(t, n, GenerateOrderNumber(at))
}
