package usecase

const (
	// DefaultPageLimit is the page size used when the caller gives none.
	DefaultPageLimit = 100

	// Operation kinds reported to the Recorder.
	OperationCashIn   = "cash_in"
	OperationWithdraw = "withdraw"
	OperationTransfer = "transfer"
	OperationDelete   = "delete"
)
