package model

import "time"

type Tick struct {
	TickID     string    `gorm:"column:tick_id;primaryKey" json:"tick_id"`
	Source     string    `gorm:"column:source" json:"source"`
	Symbol     string    `gorm:"column:symbol" json:"symbol"`
	Bid        float64   `gorm:"column:bid;type:Float64" json:"bid"`
	Ask        float64   `gorm:"column:ask;type:Float64" json:"ask"`
	Last       float64   `gorm:"column:last;type:Float64" json:"last"`
	Volume24h  float64   `gorm:"column:volume_24h;type:Float64" json:"volume_24h"`
	High24h    float64   `gorm:"column:high_24h;type:Float64" json:"high_24h"`
	Low24h     float64   `gorm:"column:low_24h;type:Float64" json:"low_24h"`
	EventTime  time.Time `gorm:"column:event_time;type:DateTime64(6, 'UTC')" json:"event_time"`
	InsertedAt time.Time `gorm:"column:inserted_at;type:DateTime64(3, 'UTC')" json:"inserted_at"`
}

func (Tick) TableName() string {
	return "quote_tick"
}
