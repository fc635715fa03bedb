// Package involve talks to the affiliate network's partner API: it obtains
// bearer tokens and fetches paginated product listings.
package involve

// ProductListing is one upstream shop offer.
type ProductListing struct {
	ShopID          int64    `json:"shop_id" validate:"required"`
	ShopName        string   `json:"shop_name" validate:"required"`
	ShopType        string   `json:"shop_type" validate:"required"`
	ShopLink        string   `json:"shop_link" validate:"required"`
	ShopImage       string   `json:"shop_image" validate:"required"`
	ShopBanner      []string `json:"shop_banner" validate:"required"`
	OfferName       string   `json:"offer_name" validate:"required"`
	Country         string   `json:"country" validate:"required"`
	PeriodStartTime string   `json:"period_start_time" validate:"required"`
	PeriodEndTime   *string  `json:"period_end_time"`
	CommissionRate  string   `json:"commission_rate" validate:"required"`
	TrackingLink    string   `json:"tracking_link" validate:"required"`
}

// ProductPage is the paginated envelope around a batch of listings.
type ProductPage struct {
	Page     int              `json:"page" validate:"gte=1"`
	Limit    int              `json:"limit" validate:"gte=0"`
	Count    int              `json:"count" validate:"gte=0"`
	NextPage int              `json:"nextPage" validate:"gte=0"`
	Listings []ProductListing `json:"data" validate:"dive"`
}

// HasNext reports whether the upstream announced a further page.
func (p ProductPage) HasNext() bool {
	return p.NextPage > 0
}

// ProductPageResponse is the body of the products endpoint.
type ProductPageResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Data    *ProductPage `json:"data" validate:"required"`
}

// Credentials authenticate the application against the partner API.
type Credentials struct {
	Key    string `json:"key"`
	Secret string `json:"secret"`
}

// authResponse is the body of the authenticate endpoint.
type authResponse struct {
	Data *struct {
		Token string `json:"token"`
	} `json:"data"`
}
