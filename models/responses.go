package models

// --- API Request/Response Structs ---

// ListResponse is the list envelope returned by GET /<resource>.
// Total is a pointer so a missing count can be told apart from zero.
type ListResponse struct {
	Data  []Record `json:"data"`
	Total *int     `json:"total,omitempty"`
}

// ToPage converts the envelope to a Page, applying the defaults for missing data:
// no data is an empty page and the total never drops below the number of items returned.
func (r ListResponse) ToPage() *Page {
	items := r.Data
	if items == nil {
		items = []Record{}
	}
	total := len(items)
	if r.Total != nil && *r.Total > total {
		total = *r.Total
	}
	return &Page{Items: items, TotalCount: total}
}

// LoginRequest defines the body for POST /auth/login.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// LoginResponse is returned by POST /auth/login and POST /auth/refresh.
type LoginResponse struct {
	Token string `json:"token"`
	User  Record `json:"user"`
}

// UploadResponse is returned by the upload endpoint.
type UploadResponse struct {
	URL string `json:"url"`
}

// StatsResponse is returned by GET /dashboard/stats.
type StatsResponse struct {
	Counts map[string]int `json:"counts"`
}

// ErrorResponse is the error envelope used by the API.
type ErrorResponse struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message"`
}
