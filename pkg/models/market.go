package models

// PagedResponse is the envelope the upstream market-data source wraps
// every paginated dataset in.
type PagedResponse[T any] struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalPages int  `json:"total_pages"`
	TotalItems int  `json:"total_items"`
	Items      []T  `json:"items"`
	HasMore    bool `json:"has_more"`
}

// SpotQuote is one real-time equity quote row.
type SpotQuote struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
	Volume    int64   `json:"volume"`
	Turnover  float64 `json:"turnover"`
}

// ETFQuote is one exchange-traded-fund quote row.
type ETFQuote struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	NetValue float64 `json:"net_value"`
	Price    float64 `json:"price"`
	Premium  float64 `json:"premium"`
	Volume   int64   `json:"volume"`
}

// HistoryBar is one daily OHLCV bar for a symbol.
type HistoryBar struct {
	Symbol string  `json:"symbol"`
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}
