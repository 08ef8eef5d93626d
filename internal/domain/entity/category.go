package entity

// Category labels used to classify expenses
const (
	CategoryFood          = "Food"
	CategoryTransport     = "Transport"
	CategoryEntertainment = "Entertainment"
	CategoryShopping      = "Shopping"
	CategoryUtilities     = "Utilities"
	CategoryHousing       = "Housing"
	CategoryOther         = "Other"
)

// Categories is the fixed, ordered label set. The first entry is the draft default.
var Categories = []string{
	CategoryFood,
	CategoryTransport,
	CategoryEntertainment,
	CategoryShopping,
	CategoryUtilities,
	CategoryHousing,
	CategoryOther,
}

var categoryIcons = map[string]string{
	CategoryFood:          "🍔",
	CategoryTransport:     "🚗",
	CategoryEntertainment: "🎬",
	CategoryShopping:      "🛍️",
	CategoryUtilities:     "💡",
	CategoryHousing:       "🏠",
	CategoryOther:         "✨",
}

// IsKnownCategory reports whether category is one of the fixed labels
func IsKnownCategory(category string) bool {
	_, ok := categoryIcons[category]
	return ok
}

// DisplayCategory returns the label used for iconography.
// Unrecognized values are shown as Other.
func DisplayCategory(category string) string {
	if IsKnownCategory(category) {
		return category
	}
	return CategoryOther
}

// CategoryIcon returns the display glyph for a category
func CategoryIcon(category string) string {
	return categoryIcons[DisplayCategory(category)]
}
