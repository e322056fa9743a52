// Package printing renders order receipts as HTML and, through headless
// Chrome, as PDF.
package printing

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	orderapp "github.com/troves/backend/internal/application/order"
	"github.com/troves/backend/internal/domain/order"
	"github.com/troves/backend/internal/infrastructure/config"
)

//go:embed templates/*.html
var templateFS embed.FS

const defaultShopName = "Troves & Coves"

// ErrPDFDisabled is returned by PDF when no PDF converter is configured
var ErrPDFDisabled = errors.New("printing: pdf rendering disabled")

var _ orderapp.ReceiptRenderer = (*ReceiptRenderer)(nil)

// HTMLConverter turns an HTML document into PDF bytes
type HTMLConverter interface {
	Convert(ctx context.Context, html string) ([]byte, error)
}

type receiptData struct {
	ShopName    string
	Order       *order.Order
	GeneratedAt time.Time
}

// ReceiptRenderer implements the order receipt formats
type ReceiptRenderer struct {
	tmpl     *template.Template
	shopName string
	pdf      HTMLConverter
	logger   *zap.Logger
	now      func() time.Time
}

// NewReceiptRenderer parses the embedded receipt template. pdf may be nil.
func NewReceiptRenderer(cfg config.ReceiptConfig, pdf HTMLConverter, logger *zap.Logger) (*ReceiptRenderer, error) {
	tmpl, err := template.New("receipt.html").Funcs(template.FuncMap{
		"money":    formatMoney,
		"date":     func(t time.Time) string { return t.UTC().Format("January 2, 2006") },
		"datetime": func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04 MST") },
	}).ParseFS(templateFS, "templates/receipt.html")
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	shop := cfg.ShopName
	if shop == "" {
		shop = defaultShopName
	}
	return &ReceiptRenderer{
		tmpl:     tmpl,
		shopName: shop,
		pdf:      pdf,
		logger:   logger.Named("printing"),
		now:      time.Now,
	}, nil
}

func formatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// HTML renders the receipt page
func (r *ReceiptRenderer) HTML(_ context.Context, o *order.Order) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, receiptData{ShopName: r.shopName, Order: o, GeneratedAt: r.now()}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PDF renders the receipt page and converts it
func (r *ReceiptRenderer) PDF(ctx context.Context, o *order.Order) ([]byte, error) {
	if r.pdf == nil {
		return nil, ErrPDFDisabled
	}
	html, err := r.HTML(ctx, o)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	data, err := r.pdf.Convert(ctx, string(html))
	if err != nil {
		r.logger.Error("receipt pdf failed", zap.String("order_number", o.OrderNumber), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("receipt pdf rendered",
		zap.String("order_number", o.OrderNumber),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)
	return data, nil
}

// PDFEnabled reports whether a converter is configured
func (r *ReceiptRenderer) PDFEnabled() bool {
	return r.pdf != nil
}
