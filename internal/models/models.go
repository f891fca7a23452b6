package models

// All lists every table owned or read by the marketplace, in migration order.
func All() []any {
	return []any{
		&User{},
		&Vendor{},
		&Product{},
		&ProductVariant{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&VendorEarning{},
		&EarningEntry{},
		&WithdrawalRequest{},
	}
}
