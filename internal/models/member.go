package models

// Member is a gym customer. Members are referenced by signups and never renamed.
type Member struct {
	ID             string   `db:"member_id" json:"member_id"`
	Username       string   `db:"username" json:"username"`
	Email          string   `db:"email" json:"email"`
	Password       string   `db:"password" json:"-"`
	Role           string   `db:"role" json:"role"`
	MembershipPlan *string  `db:"membership_plan" json:"membership_plan,omitempty"`
	Price          *float64 `db:"price" json:"price,omitempty"`
}

// MemberFilter captures filtering options for listing members.
type MemberFilter struct {
	Search   string
	Page     int
	PageSize int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
