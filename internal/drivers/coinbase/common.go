package coinbase

const (
	WSURL   = "wss://ws-feed.exchange.coinbase.com"
	RESTURL = "https://api.exchange.coinbase.com"
	venueID = "coinbase"
)

type subscribeMessage struct {
	Type       string   `json:"type"`
	ProductIDs []string `json:"product_ids"`
	Channels   []string `json:"channels"`
}

// feedMessage covers the ticker fields plus the type/message of
// subscriptions and error frames.
type feedMessage struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	ProductID string `json:"product_id"`
	Price     string `json:"price"`
	BestBid   string `json:"best_bid"`
	BestAsk   string `json:"best_ask"`
	Volume24h string `json:"volume_24h"`
	High24h   string `json:"high_24h"`
	Low24h    string `json:"low_24h"`
	Time      string `json:"time"`
}

type restTicker struct {
	Bid    string `json:"bid"`
	Ask    string `json:"ask"`
	Price  string `json:"price"`
	Volume string `json:"volume"`
	Time   string `json:"time"`
}
