package catalog

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/troves/backend/internal/domain/shared"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
)

// IsValid reports whether s is a known status
func (s ProductStatus) IsValid() bool {
	return s == ProductStatusActive || s == ProductStatusInactive
}

// Category groups jewelry by how it is worn
type Category string

const (
	CategoryNecklaces Category = "necklaces"
	CategoryBracelets Category = "bracelets"
	CategoryEarrings  Category = "earrings"
	CategoryRings     Category = "rings"
	CategoryPendants  Category = "pendants"
	CategoryOther     Category = "other"
)

// Categories lists every known category in display order
func Categories() []Category {
	return []Category{CategoryNecklaces, CategoryBracelets, CategoryEarrings, CategoryRings, CategoryPendants, CategoryOther}
}

// IsValid reports whether c is a known category
func (c Category) IsValid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// DefaultLowStockThreshold is the stock level at or below which a
// ProductLowStock event is raised.
const DefaultLowStockThreshold = 3

const (
	maxNameLength        = 200
	maxSlugLength        = 120
	maxDescriptionLength = 5000
	maxCrystalTypeLength = 60
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Product is the catalog aggregate root: a piece of crystal jewelry for sale.
type Product struct {
	shared.BaseAggregateRoot
	Name        string
	Slug        string
	Description string
	Price       decimal.Decimal
	Category    Category
	CrystalType string
	ImageURL    string
	Stock       int
	Featured    bool
	Status      ProductStatus
}

// ProductDetails carries the editable descriptive fields of a product
type ProductDetails struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    Category
	CrystalType string
	ImageURL    string
}

// NewProduct creates an active product with zero stock
func NewProduct(slug string, details ProductDetails) (*Product, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		slug = Slugify(details.Name)
	}
	if err := validateSlug(slug); err != nil {
		return nil, err
	}
	details = normalizeDetails(details)
	if err := validateDetails(details); err != nil {
		return nil, err
	}

	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Slug:              slug,
		Status:            ProductStatusActive,
	}
	p.apply(details)
	p.AddDomainEvent(NewProductCreatedEvent(p))
	return p, nil
}

// Update replaces the descriptive fields
func (p *Product) Update(details ProductDetails) error {
	details = normalizeDetails(details)
	if err := validateDetails(details); err != nil {
		return err
	}
	oldPrice := p.Price
	p.apply(details)
	p.touch()

	p.AddDomainEvent(NewProductUpdatedEvent(p))
	if !oldPrice.Equal(p.Price) {
		p.AddDomainEvent(NewProductPriceChangedEvent(p, oldPrice))
	}
	return nil
}

// SetFeatured toggles whether the product shows on the landing page
func (p *Product) SetFeatured(featured bool) {
	if p.Featured == featured {
		return
	}
	p.Featured = featured
	p.touch()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
}

// AdjustStock applies delta to the on-hand stock. The result may not be negative.
func (p *Product) AdjustStock(delta int, reason string) error {
	if delta == 0 {
		return nil
	}
	next := p.Stock + delta
	if next < 0 {
		return shared.ErrInsufficientStock
	}
	old := p.Stock
	p.Stock = next
	p.touch()

	p.AddDomainEvent(NewProductStockChangedEvent(p, old, reason))
	if delta < 0 && next <= DefaultLowStockThreshold {
		p.AddDomainEvent(NewProductLowStockEvent(p))
	}
	return nil
}

// Activate makes the product purchasable again
func (p *Product) Activate() error {
	if p.Status == ProductStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}
	p.setStatus(ProductStatusActive)
	return nil
}

// Deactivate hides the product from the storefront
func (p *Product) Deactivate() error {
	if p.Status == ProductStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Product is already inactive")
	}
	p.setStatus(ProductStatusInactive)
	return nil
}

// IsActive reports whether the product is listed
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// IsPurchasable reports whether qty units can be bought right now
func (p *Product) IsPurchasable(qty int) bool {
	return p.IsActive() && qty > 0 && p.Stock >= qty
}

func (p *Product) setStatus(status ProductStatus) {
	old := p.Status
	p.Status = status
	p.touch()
	p.AddDomainEvent(NewProductStatusChangedEvent(p, old))
}

func (p *Product) apply(d ProductDetails) {
	p.Name = d.Name
	p.Description = d.Description
	p.Price = d.Price
	p.Category = d.Category
	p.CrystalType = d.CrystalType
	p.ImageURL = d.ImageURL
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

func normalizeDetails(d ProductDetails) ProductDetails {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	d.CrystalType = strings.TrimSpace(d.CrystalType)
	d.ImageURL = strings.TrimSpace(d.ImageURL)
	if d.Category == "" {
		d.Category = CategoryOther
	}
	return d
}

func validateDetails(d ProductDetails) error {
	if d.Name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(d.Name) > maxNameLength {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	if len(d.Description) > maxDescriptionLength {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Product description cannot exceed 5000 characters")
	}
	if d.Price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if !d.Category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Unknown product category: "+string(d.Category))
	}
	if len(d.CrystalType) > maxCrystalTypeLength {
		return shared.NewDomainError("INVALID_CRYSTAL_TYPE", "Crystal type cannot exceed 60 characters")
	}
	return nil
}

func validateSlug(slug string) error {
	if slug == "" {
		return shared.NewDomainError("INVALID_SLUG", "Product slug cannot be empty")
	}
	if len(slug) > maxSlugLength {
		return shared.NewDomainError("INVALID_SLUG", "Product slug cannot exceed 120 characters")
	}
	if !slugPattern.MatchString(slug) {
		return shared.NewDomainError("INVALID_SLUG", "Product slug may only contain lowercase letters, digits and single hyphens")
	}
	return nil
}

// IsValidSlug reports whether slug is usable as a product URL slug
func IsValidSlug(slug string) bool {
	return validateSlug(slug) == nil
}

// Slugify derives a URL slug from a product name
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if len(s) > maxSlugLength {
		s = strings.TrimSuffix(s[:maxSlugLength], "-")
	}
	return s
}

// ReconstructProduct rebuilds a product from persistence without raising events
func ReconstructProduct(
	id uuid.UUID,
	slug string,
	details ProductDetails,
	stock int,
	featured bool,
	status ProductStatus,
	version int,
	createdAt, updatedAt time.Time,
) *Product {
	p := &Product{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{ID: id, CreatedAt: createdAt, UpdatedAt: updatedAt},
			Version:    version,
		},
		Slug:     slug,
		Stock:    stock,
		Featured: featured,
		Status:   status,
	}
	p.apply(details)
	return p
}
