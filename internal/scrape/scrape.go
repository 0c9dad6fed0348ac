package scrape

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	ErrNoTitle = errors.New("no title element in document")
	ErrNoPrice = errors.New("no price element in document")
)

// Product is one extracted record. Both fields are always populated; a page
// missing either never yields a Product.
type Product struct {
	Title string `json:"title"`
	Price string `json:"price"`
}

// FirstMatch returns the trimmed text of the first element in document order
// matching the selector, and whether such an element exists.
func FirstMatch(doc *goquery.Document, selector string) (string, bool) {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(sel.Text()), true
}

// ExtractProduct parses the body as HTML and reads the product fields
// through the profile's selector cascades.
func ExtractProduct(body io.Reader, p Profile) (Product, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return Product{}, fmt.Errorf("parse html: %w", err)
	}

	title, ok := firstOf(doc, p.TitleSelectors)
	if !ok {
		return Product{}, ErrNoTitle
	}

	price, ok := firstOf(doc, p.PriceSelectors)
	if !ok {
		return Product{}, ErrNoPrice
	}

	return Product{Title: title, Price: price}, nil
}

func firstOf(doc *goquery.Document, selectors []string) (string, bool) {
	for _, selector := range selectors {
		if text, ok := FirstMatch(doc, selector); ok && text != "" {
			return text, true
		}
	}
	return "", false
}
