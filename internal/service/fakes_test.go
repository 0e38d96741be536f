package service

import (
	"context"
	"sync"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeCatalogStore is a mutex-guarded in-memory CatalogStore. The per-bucket
// decrement holds the lock for the whole check-and-write, matching the
// atomicity of the real conditional update.
type fakeCatalogStore struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]*models.Product
	archived map[primitive.ObjectID]*models.ArchivedProduct

	createErr    error
	decrementErr error
}

func newFakeCatalogStore(products ...*models.Product) *fakeCatalogStore {
	fs := &fakeCatalogStore{
		products: make(map[primitive.ObjectID]*models.Product),
		archived: make(map[primitive.ObjectID]*models.ArchivedProduct),
	}
	for _, p := range products {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		fs.products[p.ID] = p
	}
	return fs
}

func copyProduct(p *models.Product) *models.Product {
	out := *p
	out.Sizes = append([]models.SizeBucket(nil), p.Sizes...)
	out.Images = append([]string(nil), p.Images...)
	out.Categories = append([]string(nil), p.Categories...)
	if p.Discount != nil {
		d := *p.Discount
		out.Discount = &d
	}
	return &out
}

func (fs *fakeCatalogStore) GetProductByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	p, ok := fs.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyProduct(p), nil
}

func (fs *fakeCatalogStore) GetProductsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var out []models.Product
	for _, id := range ids {
		if p, ok := fs.products[id]; ok {
			out = append(out, *copyProduct(p))
		}
	}
	return out, nil
}

func (fs *fakeCatalogStore) ListProducts(_ context.Context) ([]models.Product, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var out []models.Product
	for _, p := range fs.products {
		out = append(out, *copyProduct(p))
	}
	return out, nil
}

func (fs *fakeCatalogStore) CreateProduct(_ context.Context, product *models.Product) (primitive.ObjectID, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.createErr != nil {
		return primitive.NilObjectID, fs.createErr
	}
	id := primitive.NewObjectID()
	stored := copyProduct(product)
	stored.ID = id
	fs.products[id] = stored
	return id, nil
}

func (fs *fakeCatalogStore) ReplaceProduct(_ context.Context, product *models.Product) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.products[product.ID]; !ok {
		return store.ErrNotFound
	}
	fs.products[product.ID] = copyProduct(product)
	return nil
}

func (fs *fakeCatalogStore) DeleteProduct(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	p, ok := fs.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	delete(fs.products, id)
	return p, nil
}

func (fs *fakeCatalogStore) DecrementSizeCount(_ context.Context, productID primitive.ObjectID, sizeName string, quantity int) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.decrementErr != nil {
		return false, fs.decrementErr
	}
	p, ok := fs.products[productID]
	if !ok {
		return false, nil
	}
	bucket := p.Size(sizeName)
	if bucket == nil || bucket.Count < quantity {
		return false, nil
	}
	bucket.Count -= quantity
	return true, nil
}

func (fs *fakeCatalogStore) IncrementSizeCount(_ context.Context, productID primitive.ObjectID, sizeName string, quantity int) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	p, ok := fs.products[productID]
	if !ok {
		return store.ErrNotFound
	}
	bucket := p.Size(sizeName)
	if bucket == nil {
		return store.ErrNotFound
	}
	bucket.Count += quantity
	return nil
}

func (fs *fakeCatalogStore) CreateArchivedProduct(_ context.Context, archived *models.ArchivedProduct) (primitive.ObjectID, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.createErr != nil {
		return primitive.NilObjectID, fs.createErr
	}
	id := primitive.NewObjectID()
	stored := *archived
	stored.ID = id
	fs.archived[id] = &stored
	return id, nil
}

func (fs *fakeCatalogStore) GetArchivedProductsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.ArchivedProduct, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var out []models.ArchivedProduct
	for _, id := range ids {
		if a, ok := fs.archived[id]; ok {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (fs *fakeCatalogStore) sizeCount(productID primitive.ObjectID, sizeName string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	p, ok := fs.products[productID]
	if !ok {
		return 0
	}
	if bucket := p.Size(sizeName); bucket != nil {
		return bucket.Count
	}
	return 0
}

// fakeAccountStore is a mutex-guarded in-memory AccountStore.
type fakeAccountStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User

	commitErr error
}

func newFakeAccountStore(users ...*models.User) *fakeAccountStore {
	fs := &fakeAccountStore{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		fs.users[u.ID] = u
	}
	return fs
}

func copyUser(u *models.User) *models.User {
	out := *u
	out.Cart = append([]models.CartItem(nil), u.Cart...)
	out.PurchaseHistory = make([]models.PurchaseRecord, len(u.PurchaseHistory))
	for i, record := range u.PurchaseHistory {
		out.PurchaseHistory[i] = record
		out.PurchaseHistory[i].Products = append([]models.PurchaseItem(nil), record.Products...)
	}
	return &out
}

func (fs *fakeAccountStore) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	u, ok := fs.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyUser(u), nil
}

func (fs *fakeAccountStore) SetCart(_ context.Context, userID primitive.ObjectID, cart []models.CartItem) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	u, ok := fs.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.Cart = append([]models.CartItem(nil), cart...)
	return nil
}

func (fs *fakeAccountStore) CommitPurchase(_ context.Context, userID primitive.ObjectID, record models.PurchaseRecord) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.commitErr != nil {
		return fs.commitErr
	}
	u, ok := fs.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.PurchaseHistory = append(u.PurchaseHistory, record)
	u.Cart = []models.CartItem{}
	return nil
}

func (fs *fakeAccountStore) RewriteArchivedReferences(_ context.Context, productID, archivedID primitive.ObjectID) (int64, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var modified int64
	for _, u := range fs.users {
		touched := false
		for ri := range u.PurchaseHistory {
			for ii := range u.PurchaseHistory[ri].Products {
				item := &u.PurchaseHistory[ri].Products[ii]
				if item.ProductID == productID {
					item.ProductID = archivedID
					item.IsArchived = true
					touched = true
				}
			}
		}
		if touched {
			modified++
		}
	}
	return modified, nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu        sync.Mutex
	completed []*models.PurchaseCompletedEvent
	archived  []*models.ProductArchivedEvent

	publishErr error
}

func (fp *fakePublisher) PublishPurchaseCompleted(_ context.Context, event *models.PurchaseCompletedEvent) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	if fp.publishErr != nil {
		return fp.publishErr
	}
	fp.completed = append(fp.completed, event)
	return nil
}

func (fp *fakePublisher) PublishProductArchived(_ context.Context, event *models.ProductArchivedEvent) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	if fp.publishErr != nil {
		return fp.publishErr
	}
	fp.archived = append(fp.archived, event)
	return nil
}
