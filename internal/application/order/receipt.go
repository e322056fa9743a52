package order

import (
	"context"
	"fmt"

	"github.com/troves/backend/internal/domain/order"
)

// ReceiptFormat selects the receipt rendering
type ReceiptFormat string

const (
	ReceiptHTML ReceiptFormat = "html"
	ReceiptPDF  ReceiptFormat = "pdf"
)

// ReceiptRenderer renders an order receipt. PDF returns an error when no
// PDF backend is configured.
type ReceiptRenderer interface {
	HTML(ctx context.Context, o *order.Order) ([]byte, error)
	PDF(ctx context.Context, o *order.Order) ([]byte, error)
	PDFEnabled() bool
}

// ReceiptDocument is a rendered receipt ready to stream
type ReceiptDocument struct {
	ContentType string
	Filename    string
	Data        []byte
}

func receiptFilename(o *order.Order, ext string) string {
	return fmt.Sprintf("receipt-%s.%s", o.OrderNumber, ext)
}
