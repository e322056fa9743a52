package models

import (
	"github.com/shopspring/decimal"
	"github.com/troves/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product aggregate
type ProductModel struct {
	AggregateModel
	Name        string                `gorm:"type:varchar(200);not null"`
	Slug        string                `gorm:"type:varchar(120);not null;uniqueIndex"`
	Description string                `gorm:"type:text"`
	Price       decimal.Decimal       `gorm:"type:decimal(12,2);not null;default:0"`
	Category    string                `gorm:"type:varchar(30);not null;index"`
	CrystalType string                `gorm:"type:varchar(60);index"`
	ImageURL    string                `gorm:"column:image_url;type:varchar(500)"`
	Stock       int                   `gorm:"not null;default:0"`
	Featured    bool                  `gorm:"not null;default:false;index"`
	Status      catalog.ProductStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return catalog.ReconstructProduct(
		m.ID,
		m.Slug,
		catalog.ProductDetails{
			Name:        m.Name,
			Description: m.Description,
			Price:       m.Price,
			Category:    catalog.Category(m.Category),
			CrystalType: m.CrystalType,
			ImageURL:    m.ImageURL,
		},
		m.Stock,
		m.Featured,
		m.Status,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.Slug = p.Slug
	m.Description = p.Description
	m.Price = p.Price
	m.Category = string(p.Category)
	m.CrystalType = p.CrystalType
	m.ImageURL = p.ImageURL
	m.Stock = p.Stock
	m.Featured = p.Featured
	m.Status = p.Status
}

// ProductModelFromDomain creates a new persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
