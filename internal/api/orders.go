package api

import (
	"fmt"
	"math"
	"time"

	"github.com/amira2200/pfe2025/internal/models"
)

// orderNumberPrefixes maps each order type to its mandatory number prefix.
var orderNumberPrefixes = map[string]string{
	models.OrderTypeSale:        "S-",
	models.OrderTypeReturn:      "RET",
	models.OrderTypeReplacement: "REP",
}

// validateOrder checks an incoming order document against the intake rules
// and returns the first violation found.
func validateOrder(doc *models.OrderDocument) error {
	prefix, ok := orderNumberPrefixes[doc.OrderType]
	if !ok {
		return fmt.Errorf("orderType must be one of sale, return, replacement")
	}
	if doc.OrderNumber == "" {
		return fmt.Errorf("orderNumber is required")
	}
	if len(doc.OrderNumber) < len(prefix) || doc.OrderNumber[:len(prefix)] != prefix {
		return fmt.Errorf("orderNumber for %s orders must start with %q", doc.OrderType, prefix)
	}
	if doc.OrderDate == "" {
		return fmt.Errorf("orderDate is required")
	}
	if _, err := time.Parse("2006-01-02", doc.OrderDate); err != nil {
		return fmt.Errorf("orderDate must be YYYY-MM-DD")
	}
	if doc.Email == "" {
		return fmt.Errorf("email is required")
	}
	if doc.FirstName == "" || doc.LastName == "" {
		return fmt.Errorf("firstName and lastName are required")
	}
	if len(doc.Items) == 0 {
		return fmt.Errorf("at least one item is required")
	}

	var sum float64
	var plus, minus bool
	for i, item := range doc.Items {
		if item.SKU == "" {
			return fmt.Errorf("items[%d]: sku is required", i)
		}
		if item.Quantity == nil && item.LegacyQty == nil {
			return fmt.Errorf("items[%d]: quantity is required", i)
		}
		qty := item.Count()
		if item.OriginalPrice <= 0 {
			return fmt.Errorf("items[%d]: originalPrice must be positive", i)
		}
		if item.FinalPrice < 0 {
			return fmt.Errorf("items[%d]: finalPrice must not be negative", i)
		}
		if item.FinalPrice < item.OriginalPrice && item.PromotionID == nil {
			return fmt.Errorf("items[%d]: discounted price requires a promotionId", i)
		}
		switch doc.OrderType {
		case models.OrderTypeReturn:
			if qty != 1 {
				return fmt.Errorf("items[%d]: return items must have quantity 1", i)
			}
		case models.OrderTypeReplacement:
			switch qty {
			case 1:
				plus = true
			case -1:
				minus = true
			default:
				return fmt.Errorf("items[%d]: replacement items must have quantity 1 or -1", i)
			}
		default:
			if qty <= 0 {
				return fmt.Errorf("items[%d]: quantity must be positive", i)
			}
		}
		sum += item.FinalPrice * qty
	}

	if doc.OrderType == models.OrderTypeReplacement && !(plus && minus) {
		return fmt.Errorf("replacement orders need one added and one returned item")
	}

	if round2(sum) != round2(doc.TotalAmount) {
		return fmt.Errorf("totalAmount %.2f does not match item total %.2f",
			doc.TotalAmount, round2(sum))
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
