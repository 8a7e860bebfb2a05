package service

// Charge is one free-form line of a check-out bill.
type Charge struct {
	Description string
	Amount      float64
}

// Receipt is a bill with tax applied to the subtotal.
type Receipt struct {
	Charges  []Charge
	Subtotal float64
	TaxRate  float64
	Tax      float64
	Total    float64
}

// BuildReceipt totals charges at full precision and adds tax at taxRate.
func BuildReceipt(charges []Charge, taxRate float64) Receipt {
	receipt := Receipt{
		Charges: charges,
		TaxRate: taxRate,
	}
	for _, charge := range charges {
		receipt.Subtotal += charge.Amount
	}
	receipt.Tax = receipt.Subtotal * taxRate
	receipt.Total = receipt.Subtotal + receipt.Tax

	return receipt
}
