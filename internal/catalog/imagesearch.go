package catalog

import (
	"net/url"
	"strings"
)

// ImageSearchURL builds a Google Images search URL for finding a bottle
// photo by hand. Pure construction, no network call; an empty or blank
// name yields an empty URL.
func ImageSearchURL(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	q := url.QueryEscape(name + " whisky bottle")
	return "https://www.google.com/search?q=" + q + "&tbm=isch"
}
