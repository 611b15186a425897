package analysis

// Candidate topic labels for product reviews.
var ProductCategories = []string{
	"customization", "quality", "price", "features", "look and feel",
	"durability", "efficiency", "reliability", "safety",
}

// Candidate topic labels for restaurant reviews.
var RestaurantCategories = []string{
	"atmosphere", "food", "service", "price", "other",
}

// Price-related aspects whose magnitude opinions read backwards on a
// generic sentiment model: "high price" scores positive, "low price"
// negative. Pairs matching both vocabularies get their ordinal value
// inverted.
var priceAspects = map[string]struct{}{
	"cost":    {},
	"payment": {},
	"price":   {},
}

var priceMagnitudes = map[string]struct{}{
	"high":   {},
	"low":    {},
	"little": {},
	"big":    {},
}

// InvertOrdinal mirrors a 1-5 ordinal sentiment value around the
// neutral midpoint. It is an involution: 1<->5, 2<->4, 3 fixed.
func InvertOrdinal(value int) int {
	switch value {
	case 1:
		return 5
	case 2:
		return 4
	case 4:
		return 2
	case 5:
		return 1
	default:
		return value
	}
}

func isPriceCorrected(aspect, opinion string) bool {
	if _, ok := priceAspects[aspect]; !ok {
		return false
	}
	_, ok := priceMagnitudes[opinion]
	return ok
}
