package dto

// SizingRequest meminta ukuran posisi untuk satu instrumen.
// Tanpa StopLoss, stop dihitung dari ATR.
type SizingRequest struct {
	Ticker   string   `json:"ticker" validate:"required"`
	StopLoss *float64 `json:"stop_loss" validate:"omitempty,gt=0"`
	Broker   string   `json:"broker"`
	Capital  float64  `json:"capital" validate:"gte=0"`
}

// How the stop price was obtained.
const (
	StopTypeManual = "manual"
	StopTypeATR    = "atr"
)

// Which budget bounded the share count.
const (
	SizingLimitRisk    = "risk"
	SizingLimitNominal = "nominal"
)

// SizingResult is a position sized so that hitting the stop loses at most the
// risk budget. Prices and amounts are in the base currency.
type SizingResult struct {
	Ticker         string   `json:"ticker"`
	Broker         string   `json:"broker"`
	Currency       string   `json:"currency"`
	FXRate         float64  `json:"fx_rate"`
	Price          float64  `json:"price"`
	StopLoss       float64  `json:"stop_loss"`
	StopType       string   `json:"stop_type"`
	ATR            *float64 `json:"atr,omitempty"`
	Distance       float64  `json:"distance"`
	DistancePct    float64  `json:"distance_pct"`
	Capital        float64  `json:"capital"`
	MaxRisk        float64  `json:"max_risk"`
	Shares         int      `json:"shares"`
	LimitedBy      string   `json:"limited_by"`
	Nominal        float64  `json:"nominal"`
	PortfolioPct   float64  `json:"portfolio_pct"`
	BuyCommission  float64  `json:"buy_commission"`
	SellCommission float64  `json:"sell_commission"`
	ActualRisk     float64  `json:"actual_risk"`
	Warnings       []string `json:"warnings,omitempty"`
}
