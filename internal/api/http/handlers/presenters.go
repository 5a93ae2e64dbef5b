package handlers

import (
	"github.com/ticketdesk/complain-service/internal/api/dto"
	"github.com/ticketdesk/complain-service/internal/domain"
	"github.com/ticketdesk/complain-service/internal/service"
)

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func optionalUser(user *domain.User) *dto.UserResponse {
	if user == nil {
		return nil
	}
	resp := userResponse(user)
	return &resp
}

func authResponse(result *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      userResponse(result.User),
	}
}

func complaintResponse(complaint *domain.Complaint) dto.ComplaintResponse {
	resp := dto.ComplaintResponse{
		ID:          complaint.ID,
		User:        optionalUser(complaint.User),
		Code:        complaint.Code,
		Title:       complaint.Title,
		Description: complaint.Description,
		Status:      complaint.Status,
		Priority:    complaint.Priority,
		CreatedAt:   complaint.CreatedAt,
		UpdatedAt:   complaint.UpdatedAt,
		CompletedAt: complaint.CompletedAt,
	}
	if complaint.Replies != nil {
		resp.Replies = make([]dto.ReplyResponse, 0, len(complaint.Replies))
		for i := range complaint.Replies {
			reply := &complaint.Replies[i]
			resp.Replies = append(resp.Replies, dto.ReplyResponse{
				ID:        reply.ID,
				User:      optionalUser(reply.User),
				Content:   reply.Content,
				CreatedAt: reply.CreatedAt,
				UpdatedAt: reply.UpdatedAt,
			})
		}
	}
	return resp
}
