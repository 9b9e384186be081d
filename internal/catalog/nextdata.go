package catalog

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// The catalog is a Next.js app: the search page embeds its full state as
// JSON inside a <script id="__NEXT_DATA__"> element.
const nextDataID = "__NEXT_DATA__"

var errNoNextData = errors.New("no __NEXT_DATA__ script in page")

type nextData struct {
	Props struct {
		PageProps struct {
			SearchResults struct {
				Products []productPayload `json:"products"`
			} `json:"searchResults"`
		} `json:"pageProps"`
	} `json:"props"`
}

type productPayload struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Price struct {
		Current *float64 `json:"current"`
	} `json:"price"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

// parseSearchPage extracts the product list from a catalog search page.
func parseSearchPage(r io.Reader) ([]Product, error) {
	raw, err := extractNextData(r)
	if err != nil {
		if errors.Is(err, errNoNextData) {
			// Script-free page: the catalog decided we are not a browser.
			return nil, nil
		}
		return nil, err
	}

	var data nextData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, err
	}

	payloads := data.Props.PageProps.SearchResults.Products
	products := make([]Product, 0, len(payloads))
	for _, p := range payloads {
		product := Product{
			Name:  strings.TrimSpace(p.Name),
			URL:   p.URL,
			Price: p.Price.Current,
		}
		if len(p.Images) > 0 {
			product.ImageURL = p.Images[0].URL
		}
		products = append(products, product)
	}
	return products, nil
}

// extractNextData walks the HTML token stream looking for the state script.
func extractNextData(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	inNextData := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return "", errNoNextData
			}
			return "", z.Err()
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "script" {
				continue
			}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == "id" && string(val) == nextDataID {
					inNextData = true
				}
			}
		case html.TextToken:
			if inNextData {
				return string(z.Text()), nil
			}
		case html.EndTagToken:
			inNextData = false
		}
	}
}
