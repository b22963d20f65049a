package amqp

import (
	"encoding/json"
	"time"
)

// TransactionCreatedMessage announces a new ledger entry. It carries only the
// id; consumers fetch the full row from the store. The export worker uses it
// to append the entry to the spreadsheet, and the watch client treats it as a
// refresh signal.
type TransactionCreatedMessage struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"accountId"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionCreatedMessage(id, accountID int64) *TransactionCreatedMessage {
	return &TransactionCreatedMessage{
		ID:        id,
		AccountID: accountID,
		Timestamp: time.Now(),
	}
}

func (m *TransactionCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionCreatedMessageFromJSON(data []byte) (*TransactionCreatedMessage, error) {
	var msg TransactionCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
