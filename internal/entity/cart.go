package entity

import "github.com/shopspring/decimal"

// CartLine is one (user, product, quantity) row of the cart ledger.
type CartLine struct {
	ID        int             `json:"id"`
	UserID    int             `json:"user_id"`
	ProductID int             `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Product   Product         `json:"product"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// CartView is the priced content of a user's cart.
type CartView struct {
	Lines    []CartLine      `json:"lines"`
	Total    decimal.Decimal `json:"total"`
	Quantity int             `json:"quantity"`
}

// PriceLines fills LineTotal on every line and sums the cart.
func PriceLines(lines []CartLine) CartView {
	view := CartView{Lines: lines, Total: decimal.Zero}
	for i := range view.Lines {
		line := &view.Lines[i]
		line.LineTotal = line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		view.Total = view.Total.Add(line.LineTotal)
		view.Quantity += line.Quantity
	}
	if view.Lines == nil {
		view.Lines = []CartLine{}
	}
	return view
}
