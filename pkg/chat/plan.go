package chat

// Plan is a credit package clients can buy
type Plan struct {
	ID       ID       `json:"id"`
	Name     string   `json:"name"`
	Amount   string   `json:"amount"`
	Credit   int      `json:"credit"`
	Features []string `json:"features,omitempty"`
}
