// Package policy holds the authorization rules for complaints. Every
// function is a pure decision over an explicit principal.
package policy

import (
	"github.com/ticketdesk/complain-service/internal/domain"
	apperrors "github.com/ticketdesk/complain-service/pkg/util/errorutil"
)

// CanListAll reports whether the principal sees every complaint.
// Other principals are scoped to their own complaints, not rejected.
func CanListAll(principal *domain.User) bool {
	return principal.IsAdmin()
}

// CanView returns a ForbiddenError unless the principal is an admin or owns the complaint.
func CanView(principal *domain.User, complaint *domain.Complaint) error {
	if owns(principal, complaint) {
		return nil
	}
	return apperrors.NewForbidden("You are not allowed to access this complaint")
}

// CanReply follows the same rule as CanView.
func CanReply(principal *domain.User, complaint *domain.Complaint) error {
	if owns(principal, complaint) {
		return nil
	}
	return apperrors.NewForbidden("You are not allowed to reply to this complaint")
}

// CanSetStatus reports whether the principal's replies carry a status change.
func CanSetStatus(principal *domain.User) bool {
	return principal.IsAdmin()
}

func owns(principal *domain.User, complaint *domain.Complaint) bool {
	if principal == nil || complaint == nil {
		return false
	}
	return principal.IsAdmin() || principal.ID == complaint.UserID
}
