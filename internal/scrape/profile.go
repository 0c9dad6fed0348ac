package scrape

import "shelfwatch-product-harvester/internal/merchant"

// Profile is a cascade of selectors per field, tried in order. Every profile
// ends in the generic fallbacks: the first h1 for the title and the first
// element of any tag carrying itemprop="price" for the price.
type Profile struct {
	TitleSelectors []string
	PriceSelectors []string
}

func DefaultProfile() Profile {
	return Profile{
		TitleSelectors: []string{"h1"},
		PriceSelectors: []string{`[itemprop="price"]`},
	}
}

// ForMerchant returns the selector profile for a storefront. Unknown
// merchants get the generic profile.
func ForMerchant(m merchant.Merchant) Profile {
	switch m {
	case merchant.Amazon:
		return Profile{
			TitleSelectors: []string{"#productTitle", "h1"},
			PriceSelectors: []string{".a-price .a-offscreen", `[itemprop="price"]`},
		}
	case merchant.EBay:
		return Profile{
			TitleSelectors: []string{".x-item-title__mainTitle", "h1"},
			PriceSelectors: []string{".x-price-primary", `[itemprop="price"]`},
		}
	default:
		return DefaultProfile()
	}
}
