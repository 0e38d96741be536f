package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SizeBucket holds the available stock for one size variant of a product.
type SizeBucket struct {
	SizeName string `bson:"sizeName" json:"sizeName"`
	Count    int    `bson:"count" json:"count"`
}

// Discount is an optional product discount. Percent is stored as a 0-1
// fraction; callers express it as 0-100 on the wire.
type Discount struct {
	Percent float64   `bson:"percent" json:"percent"`
	EndDate time.Time `bson:"endDate" json:"endDate"`
}

var ErrInvalidDiscount = errors.New("discount must contain a 0-100 percent and a future end date")

// NewDiscount validates both fields together: a discount is either fully
// present and valid, or absent.
func NewDiscount(percent float64, endDate time.Time) (*Discount, error) {
	if percent < 0 || percent > 100 {
		return nil, ErrInvalidDiscount
	}
	if endDate.Before(time.Now()) {
		return nil, ErrInvalidDiscount
	}
	return &Discount{Percent: percent / 100, EndDate: endDate}, nil
}

// Valid reports whether the discount is still applicable.
func (d *Discount) Valid() bool {
	return d != nil && !d.EndDate.Before(time.Now())
}

// Product is a catalog document.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Sizes       []SizeBucket       `bson:"sizes" json:"sizes"`
	Price       float64            `bson:"price" json:"price"`
	Discount    *Discount          `bson:"discount,omitempty" json:"discount,omitempty"`
	Brand       string             `bson:"brand" json:"brand"`
	Description string             `bson:"description" json:"description"`
	Images      []string           `bson:"images" json:"images"`
	Gender      string             `bson:"gender,omitempty" json:"gender,omitempty"`
	Categories  []string           `bson:"categories" json:"categories"`
}

// Size locates a size bucket by name. Returns nil if the product has no
// bucket with that name.
func (p *Product) Size(name string) *SizeBucket {
	for i := range p.Sizes {
		if p.Sizes[i].SizeName == name {
			return &p.Sizes[i]
		}
	}
	return nil
}

// DiscountPrice returns the effective price after any valid discount.
func (p *Product) DiscountPrice() float64 {
	if !p.Discount.Valid() {
		return p.Price
	}
	return p.Price * (1 - p.Discount.Percent)
}

// ArchivedProduct is the permanent tombstone substituted for a deleted
// product so purchase history stays resolvable. Only brand and description
// survive deletion.
type ArchivedProduct struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Brand       string             `bson:"brand" json:"brand"`
	Description string             `bson:"description" json:"description"`
}

// CartItem is one pending selection in a user's cart. At most one line
// exists per (productId, sizeName) pair and quantity is always positive.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	SizeName  string             `bson:"sizeName" json:"sizeName"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// PurchaseItem is one line inside a committed purchase. After archival the
// productId points at an ArchivedProduct and IsArchived is true.
type PurchaseItem struct {
	ProductID  primitive.ObjectID `bson:"productId" json:"productId"`
	SizeName   string             `bson:"sizeName" json:"sizeName"`
	Quantity   int                `bson:"quantity" json:"quantity"`
	IsArchived bool               `bson:"isArchived" json:"isArchived"`
}

// PurchaseRecord is an append-only purchase history entry.
type PurchaseRecord struct {
	DateAdded time.Time      `bson:"dateAdded" json:"dateAdded"`
	Products  []PurchaseItem `bson:"products" json:"products"`
}

// User is an account document. Authentication is handled upstream; only the
// cart and purchase history matter here.
type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email           string             `bson:"email" json:"email"`
	Cart            []CartItem         `bson:"cart" json:"cart"`
	PurchaseHistory []PurchaseRecord   `bson:"purchaseHistory" json:"purchaseHistory"`
}

// UnavailablePurchase describes a cart line that cannot be fulfilled from
// current stock.
type UnavailablePurchase struct {
	ProductID primitive.ObjectID `json:"productId"`
	SizeName  string             `json:"sizeName"`
	Requested int                `json:"requested"`
	Available int                `json:"available"`
}

// ProductDetail is the minimal display detail kept for history rendering.
type ProductDetail struct {
	ProductID   primitive.ObjectID `json:"productId"`
	Brand       string             `json:"brand"`
	Description string             `json:"description"`
}

// Categories returns the fixed set of catalog categories.
func Categories() []string {
	return []string{
		"Shoes",
		"Bags",
		"T-shirts",
		"Bathing suits",
		"Dresses",
		"Jeans",
		"Jackets",
		"Shirts",
	}
}
