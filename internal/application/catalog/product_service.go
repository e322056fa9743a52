// Package catalog implements the product use cases of the storefront.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/troves/backend/internal/domain/catalog"
	"github.com/troves/backend/internal/domain/shared"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultFeaturedLimit = 8
	maxFeaturedLimit     = 50
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ProductService handles product-related business operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	storage        ObjectStorage
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProductService creates a new ProductService. storage and publisher may be nil.
func NewProductService(
	productRepo catalog.ProductRepository,
	storage ObjectStorage,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo:    productRepo,
		storage:        storage,
		eventPublisher: publisher,
		logger:         logger,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Slug, catalog.ProductDetails{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    catalog.Category(req.Category),
		CrystalType: req.CrystalType,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := s.productRepo.ExistsBySlug(ctx, product.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this slug already exists")
	}

	if req.Stock > 0 {
		if err := product.AdjustStock(req.Stock, "initial stock"); err != nil {
			return nil, err
		}
	}
	product.SetFeatured(req.Featured)

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// GetBySlug retrieves a product by slug
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*ProductResponse, error) {
	product, err := s.productRepo.FindBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	domainFilter := toDomainFilter(filter)

	var (
		products []catalog.Product
		total    int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.productRepo.FindAll(gctx, domainFilter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.productRepo.Count(gctx, domainFilter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

func toDomainFilter(filter ProductListFilter) shared.Filter {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	f.Search = strings.TrimSpace(filter.Search)

	if filter.Category != "" {
		f.Filters["category"] = filter.Category
	}
	if filter.CrystalType != "" {
		f.Filters["crystal_type"] = filter.CrystalType
	}
	if filter.Featured != nil {
		f.Filters["featured"] = *filter.Featured
	}
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}
	return f
}

// Featured returns active featured products for the landing page
func (s *ProductService) Featured(ctx context.Context, limit int) ([]ProductResponse, error) {
	if limit <= 0 {
		limit = defaultFeaturedLimit
	}
	if limit > maxFeaturedLimit {
		limit = maxFeaturedLimit
	}
	products, err := s.productRepo.FindFeatured(ctx, limit)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// Update applies a partial update
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	expectedVersion := product.Version

	details := catalog.ProductDetails{
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Category:    product.Category,
		CrystalType: product.CrystalType,
		ImageURL:    product.ImageURL,
	}
	changed := false
	if req.Name != nil {
		details.Name, changed = *req.Name, true
	}
	if req.Description != nil {
		details.Description, changed = *req.Description, true
	}
	if req.Price != nil {
		details.Price, changed = *req.Price, true
	}
	if req.Category != nil {
		details.Category, changed = catalog.Category(*req.Category), true
	}
	if req.CrystalType != nil {
		details.CrystalType, changed = *req.CrystalType, true
	}
	if req.ImageURL != nil {
		details.ImageURL, changed = *req.ImageURL, true
	}
	if changed {
		if err := product.Update(details); err != nil {
			return nil, err
		}
	}
	if req.Featured != nil {
		product.SetFeatured(*req.Featured)
	}

	if product.Version != expectedVersion {
		if err := s.productRepo.SaveWithLock(ctx, product, expectedVersion); err != nil {
			return nil, err
		}
		s.publishEvents(ctx, product)
	}

	response := ToProductResponse(product)
	return &response, nil
}

// AdjustStock applies a signed movement to on-hand stock
func (s *ProductService) AdjustStock(ctx context.Context, id uuid.UUID, req AdjustStockRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	expectedVersion := product.Version

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "manual adjustment"
	}
	if err := product.AdjustStock(req.Delta, reason); err != nil {
		return nil, err
	}
	if err := s.productRepo.SaveWithLock(ctx, product, expectedVersion); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// Activate lists the product again
func (s *ProductService) Activate(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	return s.changeStatus(ctx, id, (*catalog.Product).Activate)
}

// Deactivate hides the product from the storefront
func (s *ProductService) Deactivate(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	return s.changeStatus(ctx, id, (*catalog.Product).Deactivate)
}

func (s *ProductService) changeStatus(ctx context.Context, id uuid.UUID, apply func(*catalog.Product) error) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	expectedVersion := product.Version
	if err := apply(product); err != nil {
		return nil, err
	}
	if err := s.productRepo.SaveWithLock(ctx, product, expectedVersion); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// Delete removes a product. Orders keep their own snapshot of it.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

// RequestImageUpload issues a presigned PUT URL for a new product image
func (s *ProductService) RequestImageUpload(ctx context.Context, id uuid.UUID, req ImageUploadRequest) (*ImageUploadResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Image uploads are not configured")
	}
	ext, ok := imageExtensions[req.ContentType]
	if !ok {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unsupported image content type: "+req.ContentType)
	}
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("products/%s/%s%s", id, uuid.New(), ext)
	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, req.ContentType, 0)
	if err != nil {
		return nil, fmt.Errorf("generate image upload url: %w", err)
	}
	return &ImageUploadResponse{UploadURL: url, StorageKey: key, ExpiresAt: expiresAt}, nil
}

// publishEvents publishes and clears pending events. Failures are logged by
// the bus and never fail the request.
func (s *ProductService) publishEvents(ctx context.Context, product *catalog.Product) {
	events := product.GetDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		product.ClearDomainEvents()
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish product events",
			zap.String("product_id", product.ID.String()),
			zap.Error(err),
		)
	}
	product.ClearDomainEvents()
}
