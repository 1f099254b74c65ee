package common

// Cache keys.
const (
	KEY_PRICE_HISTORY = "price_history:%s:%s:%s"
)
