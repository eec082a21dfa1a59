package model

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultProductStatus restricts every listing to published products.
const DefaultProductStatus = "publish"

// ProductQuery is a product listing request in the platform's parameter
// vocabulary. Zero values are omitted from the encoded query.
type ProductQuery struct {
	Page     int
	PerPage  int
	Category string // numeric id, or the raw slug under the passthrough policy
	Search   string
	MinPrice string
	MaxPrice string
	OnSale   bool
	Featured bool
	OrderBy  string
	Order    string
	Exclude  []int
	Slug     string
	Status   string
}

// Values encodes the query as platform URL parameters.
func (q ProductQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.MinPrice != "" {
		v.Set("min_price", q.MinPrice)
	}
	if q.MaxPrice != "" {
		v.Set("max_price", q.MaxPrice)
	}
	if q.OnSale {
		v.Set("on_sale", "true")
	}
	if q.Featured {
		v.Set("featured", "true")
	}
	if q.OrderBy != "" {
		v.Set("orderby", q.OrderBy)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	if len(q.Exclude) > 0 {
		ids := make([]string, len(q.Exclude))
		for i, id := range q.Exclude {
			ids[i] = strconv.Itoa(id)
		}
		v.Set("exclude", strings.Join(ids, ","))
	}
	if q.Slug != "" {
		v.Set("slug", q.Slug)
	}

	status := q.Status
	if status == "" {
		status = DefaultProductStatus
	}
	v.Set("status", status)
	return v
}
