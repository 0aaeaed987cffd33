package model

// Operator is a panel staff account authenticated against /v1/auth/login.
type Operator struct {
	OperatorID  string `json:"operator_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

func NewOperator(id, email, displayName string) *Operator {
	return &Operator{OperatorID: id, Email: email, DisplayName: displayName}
}
