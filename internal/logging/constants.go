package logging

// Field names shared by all components so log output stays filterable.
const (
	FieldEscrowAccount = "escrow_account"
	FieldOwnership     = "ownership"
	FieldOwnerID       = "owner_id"
	FieldRunID         = "run_id"
	FieldReason        = "reason"
	FieldCount         = "count"
	FieldBalance       = "balance"
	FieldTotalFixed    = "total_fixed"
	FieldDisbursed     = "disbursed_this_month"
	FieldRent          = "rent"
	FieldSource        = "source"
	FieldFormat        = "format"
	FieldOutputFile    = "output_file"
	FieldLocation      = "location"
	FieldDuration      = "duration_ms"
	FieldThreshold     = "monthly_threshold"
	FieldRentRatio     = "rent_ratio"
	FieldTaxRate       = "tax_rate"
	FieldExempt        = "exempt_ownerships"
)
