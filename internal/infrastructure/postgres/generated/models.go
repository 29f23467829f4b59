package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Account struct {
	Number   string `json:"number"`
	Currency string `json:"currency"`
}

type Operation struct {
	ID      int64              `json:"id"`
	Account string             `json:"account"`
	Debit   pgtype.Numeric     `json:"debit"`
	Credit  pgtype.Numeric     `json:"credit"`
	Created pgtype.Timestamptz `json:"created"`
}

type Transfer struct {
	ID      int64              `json:"id"`
	Created pgtype.Timestamptz `json:"created"`
}

type TransferOperation struct {
	TransferID  int64 `json:"transfer_id"`
	OperationID int64 `json:"operation_id"`
	Position    int16 `json:"position"`
}
