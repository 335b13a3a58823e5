package dto

// ── Approval module DTOs ──

// ProfileListRequest admin dashboard filters
type ProfileListRequest struct {
	Status  string `form:"status"  binding:"omitempty,oneof=all pending approved rejected"`
	Keyword string `form:"keyword" binding:"omitempty,max=100"`
}

// SetApprovalRequest approve or reject a profile.
// A pointer so that an explicit false is distinguishable from a missing field.
type SetApprovalRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}
