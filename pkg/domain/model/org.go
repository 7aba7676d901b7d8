package model

import "strconv"

// Organization is a groupware organization the user belongs to
type Organization struct {
	OrgID int64  `json:"orgId"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
}

// Member is the user's profile within one organization
type Member struct {
	MemberID int64  `json:"memberId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Position string `json:"position,omitempty"`
	Dept     string `json:"deptName,omitempty"`
}

// FormatID renders a numeric ID for URL paths
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
