package binance

const (
	WSURL   = "wss://stream.binance.com:9443/stream"
	RESTURL = "https://api.binance.com"
	venueID = "binance"
)

// combinedMessage wraps every frame of a combined stream.
type combinedMessage struct {
	Stream string      `json:"stream"`
	Data   tickerEvent `json:"data"`
}

// tickerEvent is the 24hr rolling window ticker.
type tickerEvent struct {
	Event     string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	Bid       string `json:"b"`
	Ask       string `json:"a"`
	Last      string `json:"c"`
	Volume    string `json:"v"`
	High      string `json:"h"`
	Low       string `json:"l"`
}

type restTicker struct {
	Symbol    string `json:"symbol"`
	Bid       string `json:"bidPrice"`
	Ask       string `json:"askPrice"`
	Last      string `json:"lastPrice"`
	Volume    string `json:"volume"`
	High      string `json:"highPrice"`
	Low       string `json:"lowPrice"`
	CloseTime int64  `json:"closeTime"`
}
