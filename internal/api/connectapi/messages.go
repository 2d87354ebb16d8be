package connectapi

// Amounts on this API are integer cents.

type GetSettlementsRequest struct {
	GroupID string `json:"groupId"`
	// Month and Year scope the computation; zero means unset.
	Month int `json:"month,omitempty"`
	Year  int `json:"year,omitempty"`
}

type Period struct {
	Month int `json:"month,omitempty"`
	Year  int `json:"year,omitempty"`
}

type Party struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type UserBalance struct {
	Party
	Email        string `json:"email"`
	PaidCents    int64  `json:"paidCents"`
	ShareCents   int64  `json:"shareCents"`
	BalanceCents int64  `json:"balanceCents"`
}

type Transfer struct {
	From        Party `json:"from"`
	To          Party `json:"to"`
	AmountCents int64 `json:"amountCents"`
}

type Summary struct {
	TotalExpenseCents int64 `json:"totalExpenseCents"`
	TotalIncomeCents  int64 `json:"totalIncomeCents"`
	NetAmountCents    int64 `json:"netAmountCents"`
	Count             int   `json:"count"`
}

type GetSettlementsResponse struct {
	GroupID      string        `json:"groupId"`
	Period       Period        `json:"period"`
	UserBalances []UserBalance `json:"userBalances"`
	Settlements  []Transfer    `json:"settlements"`
	Summary      Summary       `json:"summary"`
}

type GetMonthlySummaryRequest struct {
	GroupID string `json:"groupId"`
	Month   int    `json:"month,omitempty"`
	Year    int    `json:"year,omitempty"`
}

type GetMonthlySummaryResponse struct {
	GroupID string  `json:"groupId"`
	Period  Period  `json:"period"`
	Summary Summary `json:"summary"`
}
