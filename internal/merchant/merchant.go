package merchant

import (
	"fmt"
	"net/url"
	"strings"
)

// Merchant labels the storefront a product URL belongs to. Well-known
// marketplaces get stable labels; everything else is labeled by host.
type Merchant string

const (
	Amazon Merchant = "amazon"
	EBay   Merchant = "ebay"
	Etsy   Merchant = "etsy"
)

func Detect(rawURL string) (Merchant, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid URL (must be http(s)): %q", rawURL)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid URL (missing host): %q", rawURL)
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case host == "amazon.com" || strings.HasSuffix(host, ".amazon.com") || strings.HasPrefix(host, "amazon."):
		return Amazon, nil
	case host == "ebay.com" || strings.HasSuffix(host, ".ebay.com") || strings.HasPrefix(host, "ebay."):
		return EBay, nil
	case host == "etsy.com" || strings.HasSuffix(host, ".etsy.com"):
		return Etsy, nil
	default:
		return Merchant(host), nil
	}
}
