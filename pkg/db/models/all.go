package models

// All lists every persisted model in dependency order. Used by AutoMigrate
// in dev and by tests.
func All() []any {
	return []any{
		&Category{},
		&Product{},
		&ProductVariant{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderLine{},
		&Wallet{},
		&WalletTransaction{},
		&Coupon{},
		&CouponCategory{},
		&CouponUsage{},
		&SalesReportEntry{},
		&SalesReportProduct{},
		&Offer{},
		&Banner{},
		&OTP{},
		&OutboxEvent{},
		&OutboxDLQ{},
	}
}
