package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	cartapp "github.com/troves/backend/internal/application/cart"
	catalogapp "github.com/troves/backend/internal/application/catalog"
	contactapp "github.com/troves/backend/internal/application/contact"
	orderapp "github.com/troves/backend/internal/application/order"
	"github.com/troves/backend/internal/domain/catalog"
	"github.com/troves/backend/internal/infrastructure/auth"
	"github.com/troves/backend/internal/infrastructure/config"
	"github.com/troves/backend/internal/infrastructure/persistence"
	"github.com/troves/backend/internal/infrastructure/printing"
	"github.com/troves/backend/internal/interfaces/http/middleware"
	"github.com/troves/backend/internal/testutil"
)

const adminBearer = "Bearer admin"

type fakePDF struct{}

func (fakePDF) Convert(context.Context, string) ([]byte, error) {
	return []byte("%PDF-1.4\n%%EOF"), nil
}

// storefront mounts the resource handlers over real services backed by an
// in-memory sqlite database. Session and admin identity come straight from
// request headers.
type storefront struct {
	t        *testing.T
	products *persistence.GormProductRepository
	engine   *gin.Engine
}

type request struct {
	method  string
	path    string
	body    string
	session string
	admin   bool
}

func newStorefront(t *testing.T) *storefront {
	t.Helper()
	require.NoError(t, middleware.SetupValidator())

	db := testutil.NewSQLiteDB(t)
	productRepo := persistence.NewGormProductRepository(db)
	cartRepo := persistence.NewGormCartRepository(db)
	orderRepo := persistence.NewGormOrderRepository(db)

	receipts, err := printing.NewReceiptRenderer(config.ReceiptConfig{ShopName: "Troves & Coves"}, fakePDF{}, nil)
	require.NoError(t, err)

	catalogH := NewCatalogHandler(catalogapp.NewProductService(productRepo, nil, nil, nil))
	cartH := NewCartHandler(cartapp.NewService(cartRepo, productRepo, nil))
	orderH := NewOrderHandler(orderapp.NewService(persistence.NewGormUnitOfWork(db), orderRepo, receipts, nil, nil))
	contactH := NewContactHandler(contactapp.NewService(persistence.NewGormContactRepository(db), nil, nil))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.SessionIDKey, c.GetHeader(middleware.SessionIDHeader))
		if c.GetHeader("Authorization") == adminBearer {
			c.Set(middleware.ClaimsKey, &auth.Claims{Role: "admin"})
		}
		c.Next()
	})

	r.GET("/products", catalogH.List)
	r.GET("/products/featured", catalogH.Featured)
	r.GET("/products/:id", catalogH.GetByID)
	r.GET("/products/slug/:slug", catalogH.GetBySlug)
	r.POST("/products", catalogH.Create)
	r.PUT("/products/:id", catalogH.Update)
	r.DELETE("/products/:id", catalogH.Delete)
	r.POST("/products/:id/stock", catalogH.AdjustStock)
	r.POST("/products/:id/activate", catalogH.Activate)
	r.POST("/products/:id/deactivate", catalogH.Deactivate)

	r.GET("/cart", cartH.Get)
	r.POST("/cart/items", cartH.AddItem)
	r.PUT("/cart/items/:product_id", cartH.UpdateQuantity)
	r.DELETE("/cart/items/:product_id", cartH.RemoveItem)
	r.DELETE("/cart", cartH.Clear)

	r.POST("/orders", orderH.Place)
	r.GET("/orders", orderH.List)
	r.GET("/orders/:id", orderH.Get)
	r.GET("/orders/:id/receipt", orderH.Receipt)
	r.POST("/orders/:id/confirm", orderH.Confirm)
	r.POST("/orders/:id/ship", orderH.Ship)
	r.POST("/orders/:id/deliver", orderH.Deliver)
	r.POST("/orders/:id/cancel", orderH.Cancel)

	r.POST("/contact", contactH.Submit)
	r.GET("/contact", contactH.List)
	r.POST("/contact/:id/read", contactH.MarkRead)
	r.POST("/contact/:id/archive", contactH.Archive)

	return &storefront{t: t, products: productRepo, engine: r}
}

func (s *storefront) do(req request) *httptest.ResponseRecorder {
	s.t.Helper()
	var r *http.Request
	if req.body != "" {
		r = httptest.NewRequest(req.method, req.path, strings.NewReader(req.body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(req.method, req.path, nil)
	}
	if req.session != "" {
		r.Header.Set(middleware.SessionIDHeader, req.session)
	}
	if req.admin {
		r.Header.Set("Authorization", adminBearer)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, r)
	return w
}

func (s *storefront) seedProduct(name string, price float64, stock int) *catalog.Product {
	s.t.Helper()
	p, err := catalog.NewProduct("", catalog.ProductDetails{
		Name:        name,
		Price:       decimal.NewFromFloat(price),
		Category:    catalog.CategoryBracelets,
		CrystalType: "amethyst",
	})
	require.NoError(s.t, err)
	if stock > 0 {
		require.NoError(s.t, p.AdjustStock(stock, "seed"))
	}
	require.NoError(s.t, s.products.Save(context.Background(), p))
	return p
}

func errorCodeOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error, w.Body.String())
	return resp.Error.Code
}
