package hyvee

import (
	"net/url"
	"strings"
)

const (
	baseURL    = "https://www.hy-vee.com"
	addPrefix  = "Add to cart"
	addDivider = "Add to cart, "
)

// BuildSearchURL returns the aisles-online search URL for a query.
// Spaces become plus signs, matching what the site itself produces.
func BuildSearchURL(query string) string {
	escaped := url.QueryEscape(strings.TrimSpace(query))
	return baseURL + "/aisles-online/search?search=" + escaped
}

// ParseAddLabel splits an add-to-cart button aria-label into product name
// and price. Labels look like "Add to cart, Hy-Vee Large Eggs $2.99",
// though the price part is not always present.
func ParseAddLabel(label string) (name, price string) {
	info := strings.TrimPrefix(label, addDivider)
	info = strings.TrimPrefix(info, addPrefix)
	info = strings.TrimSpace(strings.TrimPrefix(info, ","))

	name = info
	if before, after, ok := strings.Cut(info, "$"); ok {
		name = strings.TrimSpace(before)
		fields := strings.Fields(after)
		if len(fields) > 0 {
			price = "$" + fields[0]
		}
	}
	return name, price
}

// ProductIDFromURL extracts the product identifier from a product page
// URL. Hy-Vee product URLs carry the ID in the path segment after "/p/".
func ProductIDFromURL(u string) string {
	_, after, ok := strings.Cut(u, "/p/")
	if !ok {
		return ""
	}
	id, _, _ := strings.Cut(after, "/")
	id, _, _ = strings.Cut(id, "?")
	return id
}

// absoluteURL resolves a scraped href against the store origin.
func absoluteURL(href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return baseURL + href
}

// cssEscape makes a string safe inside a double-quoted CSS attribute
// selector value.
func cssEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
