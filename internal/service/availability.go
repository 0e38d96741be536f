package service

import (
	"storefront-service/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupCartByProduct groups cart lines by product id so each product is
// fetched once at checkout.
func GroupCartByProduct(cart []models.CartItem) map[primitive.ObjectID][]models.CartItem {
	grouped := make(map[primitive.ObjectID][]models.CartItem)
	for _, line := range cart {
		grouped[line.ProductID] = append(grouped[line.ProductID], line)
	}
	return grouped
}

// CheckAvailability computes which requested lines cannot be fulfilled from
// the given inventory snapshot. A missing product or missing size bucket
// counts as zero available. An empty result means the cart is fully
// satisfiable against this snapshot; the snapshot can still go stale before
// the decrement, which is why the commit path re-checks per bucket.
func CheckAvailability(grouped map[primitive.ObjectID][]models.CartItem, products map[primitive.ObjectID]*models.Product) []models.UnavailablePurchase {
	var unavailable []models.UnavailablePurchase

	for productID, lines := range grouped {
		product := products[productID]

		for _, line := range lines {
			available := 0
			if product != nil {
				if bucket := product.Size(line.SizeName); bucket != nil {
					available = bucket.Count
				}
			}

			if available < line.Quantity {
				unavailable = append(unavailable, models.UnavailablePurchase{
					ProductID: productID,
					SizeName:  line.SizeName,
					Requested: line.Quantity,
					Available: available,
				})
			}
		}
	}

	return unavailable
}
