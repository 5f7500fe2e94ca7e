package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Kind discriminates the two product variants.
type Kind string

const (
	KindVerified   Kind = "verified"
	KindSecondhand Kind = "secondhand"
)

func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindVerified:
		return KindVerified, nil
	case KindSecondhand:
		return KindSecondhand, nil
	default:
		return "", ErrInvalidKind
	}
}

// Category is the closed set of catalog tags.
type Category string

const (
	CategoryArtesanal       Category = "artesanal"
	CategoryAntiguitats     Category = "antiguitats"
	CategoryCosmetica       Category = "cosmetica"
	CategoryCuina           Category = "cuina"
	CategoryElectrodomestic Category = "electrodomestics"
	CategoryElectronica     Category = "electronica"
	CategoryEquipamentLab   Category = "equipament_lab"
	CategoryEsports         Category = "esports"
	CategoryFerramentes     Category = "ferramentes"
	CategoryInfantil        Category = "infantil"
	CategoryInstruments     Category = "instruments"
	CategoryJardineria      Category = "jardineria"
	CategoryJocsDeTaula     Category = "jocs_de_taula"
	CategoryJoies           Category = "joies_complements_accessoris"
	CategoryLlibres         Category = "llibres"
	CategoryMascotes        Category = "mascotes"
	CategoryMobles          Category = "mobles"
	CategoryNeteja          Category = "neteja"
	CategoryRoba            Category = "roba"
	CategorySabates         Category = "sabates"
	CategoryVehicles        Category = "vehicles"
	CategoryVideojocs       Category = "videojocs"
	CategoryAltres          Category = "altres"
)

var categories = map[Category]struct{}{
	CategoryArtesanal: {}, CategoryAntiguitats: {}, CategoryCosmetica: {},
	CategoryCuina: {}, CategoryElectrodomestic: {}, CategoryElectronica: {},
	CategoryEquipamentLab: {}, CategoryEsports: {}, CategoryFerramentes: {},
	CategoryInfantil: {}, CategoryInstruments: {}, CategoryJardineria: {},
	CategoryJocsDeTaula: {}, CategoryJoies: {}, CategoryLlibres: {},
	CategoryMascotes: {}, CategoryMobles: {}, CategoryNeteja: {},
	CategoryRoba: {}, CategorySabates: {}, CategoryVehicles: {},
	CategoryVideojocs: {}, CategoryAltres: {},
}

func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := categories[c]; !ok {
		return "", ErrInvalidCategory
	}
	return c, nil
}

// Condition describes the state of a secondhand listing.
type Condition string

const (
	ConditionNone      Condition = ""
	ConditionNew       Condition = "nou"
	ConditionLikeNew   Condition = "seminou"
	ConditionUsed      Condition = "usat"
	ConditionDefective Condition = "defectuos"
	ConditionForParts  Condition = "per_peces"
)

func ParseCondition(raw string) (Condition, error) {
	switch Condition(strings.ToLower(strings.TrimSpace(raw))) {
	case ConditionNone:
		return ConditionNone, nil
	case ConditionNew:
		return ConditionNew, nil
	case ConditionLikeNew:
		return ConditionLikeNew, nil
	case ConditionUsed:
		return ConditionUsed, nil
	case ConditionDefective:
		return ConditionDefective, nil
	case ConditionForParts:
		return ConditionForParts, nil
	default:
		return "", ErrInvalidCondition
	}
}

// ProductID is the global id allocator row. Every product id exists
// here and in exactly one variant table.
type ProductID struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ProductID) TableName() string { return "product_ids" }

// VerifiedProduct is a stocked listing by a professional or enterprise
// seller.
type VerifiedProduct struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	OwnerID     snowflake.ID      `gorm:"not null;index;index:ux_verified_products_owner_sku,unique,priority:1" json:"owner_id"`
	SKU         string            `gorm:"column:sku;not null;index:ux_verified_products_owner_sku,unique,priority:2" json:"sku"`
	Name        string            `gorm:"type:text;not null" json:"name"`
	Slug        string            `gorm:"type:text;not null" json:"slug"`
	Description string            `gorm:"type:text;not null" json:"description"`
	Stock       int64             `gorm:"not null;default:0" json:"stock"`
	Price       float64           `gorm:"not null" json:"price"`
	Image       string            `gorm:"type:text;not null" json:"image"`
	Category    Category          `gorm:"type:text;not null;index" json:"category"`
	Condition   Condition         `gorm:"type:text;not null;default:''" json:"condition"`
	Sold        int64             `gorm:"not null;default:0" json:"sold"`
	Rating      float64           `gorm:"not null;default:0" json:"rating"`
	Discount    float64           `gorm:"not null;default:0" json:"discount"`
	Deleted     bool              `gorm:"not null;default:false" json:"deleted"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (VerifiedProduct) TableName() string { return "verified_products" }

// SecondhandProduct is a single-unit listing by a particular or
// professional seller.
type SecondhandProduct struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	OwnerID     snowflake.ID      `gorm:"not null;index" json:"owner_id"`
	Name        string            `gorm:"type:text;not null" json:"name"`
	Slug        string            `gorm:"type:text;not null" json:"slug"`
	Description string            `gorm:"type:text;not null" json:"description"`
	Price       float64           `gorm:"not null" json:"price"`
	Image       string            `gorm:"type:text;not null" json:"image"`
	Category    Category          `gorm:"type:text;not null;index" json:"category"`
	Condition   Condition         `gorm:"type:text;not null;default:''" json:"condition"`
	Rating      float64           `gorm:"not null;default:0" json:"rating"`
	Discount    float64           `gorm:"not null;default:0" json:"discount"`
	Deleted     bool              `gorm:"not null;default:false" json:"deleted"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (SecondhandProduct) TableName() string { return "secondhand_products" }

// Product is the tagged-union view over both variants. SKU, Stock and
// Sold are set only when Kind is verified.
type Product struct {
	Kind        Kind              `json:"kind"`
	ID          snowflake.ID      `json:"id"`
	OwnerID     snowflake.ID      `json:"owner_id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	Price       float64           `json:"price"`
	Image       string            `json:"image"`
	Category    Category          `json:"category"`
	Condition   Condition         `json:"condition,omitempty"`
	Rating      float64           `json:"rating"`
	Discount    float64           `json:"discount"`
	Metadata    map[string]any    `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`

	SKU   *string `json:"sku,omitempty"`
	Stock *int64  `json:"stock,omitempty"`
	Sold  *int64  `json:"sold,omitempty"`
}

func (v *VerifiedProduct) ToProduct() Product {
	sku := v.SKU
	stock := v.Stock
	sold := v.Sold
	return Product{
		Kind:        KindVerified,
		ID:          v.ID,
		OwnerID:     v.OwnerID,
		Name:        v.Name,
		Slug:        v.Slug,
		Description: v.Description,
		Price:       v.Price,
		Image:       v.Image,
		Category:    v.Category,
		Condition:   v.Condition,
		Rating:      v.Rating,
		Discount:    v.Discount,
		Metadata:    v.Metadata,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
		SKU:         &sku,
		Stock:       &stock,
		Sold:        &sold,
	}
}

func (s *SecondhandProduct) ToProduct() Product {
	return Product{
		Kind:        KindSecondhand,
		ID:          s.ID,
		OwnerID:     s.OwnerID,
		Name:        s.Name,
		Slug:        s.Slug,
		Description: s.Description,
		Price:       s.Price,
		Image:       s.Image,
		Category:    s.Category,
		Condition:   s.Condition,
		Rating:      s.Rating,
		Discount:    s.Discount,
		Metadata:    s.Metadata,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
