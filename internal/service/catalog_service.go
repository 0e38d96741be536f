package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/sizes"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var sizeNamePattern = regexp.MustCompile(`^[A-Z0-9]{1,3}$`)

const (
	maxBrandLength       = 30
	maxDescriptionLength = 1000
)

// ProductCache caches the rendered product list. A nil cache disables
// caching without changing behavior.
type ProductCache interface {
	GetProductList(ctx context.Context) ([]byte, bool)
	SetProductList(ctx context.Context, data []byte) error
	Invalidate(ctx context.Context) error
}

// CatalogService handles admin catalog mutations and the read-side product
// listing.
type CatalogService struct {
	catalog CatalogStore
	cache   ProductCache
	logger  *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalog CatalogStore, cache ProductCache) *CatalogService {
	return &CatalogService{
		catalog: catalog,
		cache:   cache,
		logger:  util.GetLogger(),
	}
}

// DiscountInput is the wire form of a discount: percent expressed 0-100.
type DiscountInput struct {
	Percent float64   `json:"percent"`
	EndDate time.Time `json:"endDate"`
}

// ProductInput carries the fields of a new product.
type ProductInput struct {
	Sizes       []models.SizeBucket `json:"sizes"`
	Price       float64             `json:"price"`
	Discount    *DiscountInput      `json:"discount,omitempty"`
	Brand       string              `json:"brand"`
	Description string              `json:"description"`
	Images      []string            `json:"images"`
	Gender      string              `json:"gender,omitempty"`
	Categories  []string            `json:"categories"`
}

// ProductUpdate carries a partial update; nil fields are left unchanged.
type ProductUpdate struct {
	Sizes       *[]models.SizeBucket `json:"sizes,omitempty"`
	Price       *float64             `json:"price,omitempty"`
	Discount    *DiscountInput       `json:"discount,omitempty"`
	Brand       *string              `json:"brand,omitempty"`
	Description *string              `json:"description,omitempty"`
	Images      *[]string            `json:"images,omitempty"`
	Gender      *string              `json:"gender,omitempty"`
	Categories  *[]string            `json:"categories,omitempty"`
}

// CreateProduct validates and inserts a new catalog product.
func (cs *CatalogService) CreateProduct(ctx context.Context, input ProductInput) (primitive.ObjectID, error) {
	product := &models.Product{
		Sizes:       input.Sizes,
		Price:       input.Price,
		Brand:       input.Brand,
		Description: input.Description,
		Images:      input.Images,
		Gender:      input.Gender,
		Categories:  input.Categories,
	}

	if input.Discount != nil {
		discount, err := models.NewDiscount(input.Discount.Percent, input.Discount.EndDate)
		if err != nil {
			return primitive.NilObjectID, err
		}
		product.Discount = discount
	}

	if err := validateProduct(product); err != nil {
		return primitive.NilObjectID, err
	}

	id, err := cs.catalog.CreateProduct(ctx, product)
	if err != nil {
		return primitive.NilObjectID, err
	}

	cs.invalidate(ctx)
	cs.logger.Info("Product created", zap.String("product_id", id.Hex()))
	return id, nil
}

// UpdateProduct applies a partial update to an existing product.
func (cs *CatalogService) UpdateProduct(ctx context.Context, id primitive.ObjectID, update ProductUpdate) error {
	product, err := cs.catalog.GetProductByID(ctx, id)
	if err != nil {
		return mapProductErr(err)
	}

	if update.Sizes != nil {
		product.Sizes = *update.Sizes
	}
	if update.Price != nil {
		product.Price = *update.Price
	}
	if update.Discount != nil {
		discount, err := models.NewDiscount(update.Discount.Percent, update.Discount.EndDate)
		if err != nil {
			return err
		}
		product.Discount = discount
	}
	if update.Brand != nil {
		product.Brand = *update.Brand
	}
	if update.Description != nil {
		product.Description = *update.Description
	}
	if update.Images != nil {
		product.Images = *update.Images
	}
	if update.Gender != nil {
		product.Gender = *update.Gender
	}
	if update.Categories != nil {
		product.Categories = *update.Categories
	}

	if err := validateProduct(product); err != nil {
		return err
	}

	if err := cs.catalog.ReplaceProduct(ctx, product); err != nil {
		return mapProductErr(err)
	}

	cs.invalidate(ctx)
	return nil
}

// SizePatchOp is one add/edit/delete operation on a product's size buckets.
type SizePatchOp struct {
	Action string            `json:"action"`
	Value  models.SizeBucket `json:"value"`
}

// PatchSizes applies size bucket operations in order. Add rejects an
// existing name, edit rejects a missing one, delete of a missing name is a
// no-op.
func (cs *CatalogService) PatchSizes(ctx context.Context, id primitive.ObjectID, ops []SizePatchOp) error {
	product, err := cs.catalog.GetProductByID(ctx, id)
	if err != nil {
		return mapProductErr(err)
	}

	for _, op := range ops {
		if !sizeNamePattern.MatchString(op.Value.SizeName) {
			return ErrInvalidSizeName
		}

		existing := product.Size(op.Value.SizeName)

		switch op.Action {
		case "delete":
			if existing != nil {
				product.Sizes = removeSize(product.Sizes, op.Value.SizeName)
			}
		case "add":
			if op.Value.Count < 0 {
				return ErrInvalidSizeCount
			}
			if existing != nil {
				return ErrDuplicateSize
			}
			product.Sizes = append(product.Sizes, op.Value)
		case "edit":
			if op.Value.Count < 0 {
				return ErrInvalidSizeCount
			}
			if existing == nil {
				return ErrSizeNotFound
			}
			existing.Count = op.Value.Count
		default:
			return ErrInvalidOperation
		}
	}

	if err := cs.catalog.ReplaceProduct(ctx, product); err != nil {
		return mapProductErr(err)
	}

	cs.invalidate(ctx)
	return nil
}

// CategoryPatchOp is one add/delete operation on a product's categories.
type CategoryPatchOp struct {
	Action string `json:"action"`
	Value  string `json:"value"`
}

// PatchCategories applies category operations in order.
func (cs *CatalogService) PatchCategories(ctx context.Context, id primitive.ObjectID, ops []CategoryPatchOp) error {
	product, err := cs.catalog.GetProductByID(ctx, id)
	if err != nil {
		return mapProductErr(err)
	}

	for _, op := range ops {
		if !validCategory(op.Value) {
			return ErrInvalidCategory
		}

		has := containsString(product.Categories, op.Value)

		switch op.Action {
		case "add":
			if has {
				return ErrDuplicateCategory
			}
			product.Categories = append(product.Categories, op.Value)
		case "delete":
			if !has {
				return ErrCategoryNotFound
			}
			product.Categories = removeString(product.Categories, op.Value)
		default:
			return ErrInvalidOperation
		}
	}

	if err := cs.catalog.ReplaceProduct(ctx, product); err != nil {
		return mapProductErr(err)
	}

	cs.invalidate(ctx)
	return nil
}

// DiscountView is how a discount renders: percent back in 0-100 form.
type DiscountView struct {
	Percent float64 `json:"percent"`
	EndDate string  `json:"endDate"`
}

// ProductView is a product prepared for display: sizes in display order,
// numeric sizes grouped into filterable ranges, discount price computed.
type ProductView struct {
	ID            string              `json:"id"`
	Sizes         []models.SizeBucket `json:"sizes"`
	SizeRanges    []string            `json:"sizeRanges,omitempty"`
	Price         float64             `json:"price"`
	Discount      *DiscountView       `json:"discount,omitempty"`
	DiscountPrice *float64            `json:"discountPrice,omitempty"`
	Brand         string              `json:"brand"`
	Description   string              `json:"description"`
	Images        []string            `json:"images,omitempty"`
	Gender        string              `json:"gender"`
	Categories    []string            `json:"categories"`
}

// ListProducts returns the catalog rendered for display, served from cache
// when possible.
func (cs *CatalogService) ListProducts(ctx context.Context) ([]ProductView, error) {
	if cs.cache != nil {
		if data, ok := cs.cache.GetProductList(ctx); ok {
			var views []ProductView
			if err := json.Unmarshal(data, &views); err == nil {
				util.ProductCacheHits.Inc()
				return views, nil
			}
		}
		util.ProductCacheMisses.Inc()
	}

	products, err := cs.catalog.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]ProductView, 0, len(products))
	for i := range products {
		views = append(views, NewProductView(&products[i]))
	}

	if cs.cache != nil {
		if data, err := json.Marshal(views); err == nil {
			if err := cs.cache.SetProductList(ctx, data); err != nil {
				cs.logger.Warn("Failed to cache product list", zap.Error(err))
			}
		}
	}

	return views, nil
}

// NewProductView renders a single product for display.
func NewProductView(p *models.Product) ProductView {
	view := ProductView{
		ID:          p.ID.Hex(),
		Price:       p.Price,
		Brand:       p.Brand,
		Description: p.Description,
		Images:      p.Images,
		Gender:      p.Gender,
		Categories:  p.Categories,
	}

	if view.Gender == "" {
		view.Gender = "U"
	}

	view.Sizes = make([]models.SizeBucket, len(p.Sizes))
	copy(view.Sizes, p.Sizes)
	sortSizeBuckets(view.Sizes)
	view.SizeRanges = sizeRanges(view.Sizes)

	if p.Discount.Valid() {
		view.Discount = &DiscountView{
			Percent: p.Discount.Percent * 100,
			EndDate: p.Discount.EndDate.Format("2006-01-02"),
		}
		price := p.DiscountPrice()
		view.DiscountPrice = &price
	}

	return view
}

func sortSizeBuckets(buckets []models.SizeBucket) {
	labels := make([]string, len(buckets))
	byName := make(map[string]models.SizeBucket, len(buckets))
	for i, b := range buckets {
		labels[i] = b.SizeName
		byName[b.SizeName] = b
	}
	sizes.Sort(labels)
	for i, name := range labels {
		buckets[i] = byName[name]
	}
}

// sizeRanges returns the distinct 5-wide buckets covering the product's
// numeric sizes, in order.
func sizeRanges(buckets []models.SizeBucket) []string {
	var ranges []string
	seen := make(map[string]bool)
	for _, b := range buckets {
		if len(b.SizeName) == 0 || b.SizeName[0] < '0' || b.SizeName[0] > '9' {
			continue
		}
		n := 0
		for i := 0; i < len(b.SizeName) && b.SizeName[i] >= '0' && b.SizeName[i] <= '9'; i++ {
			n = n*10 + int(b.SizeName[i]-'0')
		}
		r := sizes.Range(n)
		if !seen[r] {
			seen[r] = true
			ranges = append(ranges, r)
		}
	}
	return ranges
}

func (cs *CatalogService) invalidate(ctx context.Context) {
	if cs.cache == nil {
		return
	}
	if err := cs.cache.Invalidate(ctx); err != nil {
		cs.logger.Warn("Failed to invalidate product cache", zap.Error(err))
	}
}

func validateProduct(p *models.Product) error {
	if p.Price < 0 {
		return ErrInvalidPrice
	}
	if p.Brand == "" || len(p.Brand) > maxBrandLength {
		return fmt.Errorf("%w: brand is required and limited to %d characters", ErrInvalidProduct, maxBrandLength)
	}
	if p.Description == "" || len(p.Description) > maxDescriptionLength {
		return fmt.Errorf("%w: description is required and limited to %d characters", ErrInvalidProduct, maxDescriptionLength)
	}
	if p.Gender != "" && p.Gender != "M" && p.Gender != "F" {
		return fmt.Errorf("%w: gender must be M or F", ErrInvalidProduct)
	}

	seen := make(map[string]bool, len(p.Sizes))
	for _, bucket := range p.Sizes {
		if !sizeNamePattern.MatchString(bucket.SizeName) {
			return ErrInvalidSizeName
		}
		if bucket.Count < 0 {
			return ErrInvalidSizeCount
		}
		if seen[bucket.SizeName] {
			return ErrDuplicateSize
		}
		seen[bucket.SizeName] = true
	}

	for _, category := range p.Categories {
		if !validCategory(category) {
			return ErrInvalidCategory
		}
	}
	return nil
}

func validCategory(category string) bool {
	return containsString(models.Categories(), category)
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

func removeString(list []string, value string) []string {
	out := list[:0]
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}

func removeSize(buckets []models.SizeBucket, name string) []models.SizeBucket {
	out := buckets[:0]
	for _, b := range buckets {
		if b.SizeName != name {
			out = append(out, b)
		}
	}
	return out
}

func mapProductErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrProductNotFound
	}
	return err
}
