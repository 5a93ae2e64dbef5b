package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketdesk/complain-service/internal/api/dto"
	apperrors "github.com/ticketdesk/complain-service/pkg/util/errorutil"
)

func fieldsOf(t *testing.T, err error) map[string][]string {
	t.Helper()
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	require.Equal(t, apperrors.CodeValidation, de.Code)
	return de.Fields
}

func TestRegisterRequestRules(t *testing.T) {
	v := New()

	fields := fieldsOf(t, v.Struct(dto.RegisterRequest{
		Email:                "not-an-email",
		Password:             "short",
		PasswordConfirmation: "different",
	}))
	assert.Equal(t, []string{"The name field is required."}, fields["name"])
	assert.Equal(t, []string{"The email field must be a valid email address."}, fields["email"])
	assert.Equal(t, []string{"The password field must be at least 8 characters."}, fields["password"])
	assert.Equal(t, []string{"The password confirmation field must match password."}, fields["password_confirmation"])

	assert.NoError(t, v.Struct(dto.RegisterRequest{
		Name:                 "Ann",
		Email:                "ann@example.com",
		Password:             "secret123",
		PasswordConfirmation: "secret123",
	}))
}

func TestReplyRequestVariants(t *testing.T) {
	v := New()
	content := strings.Repeat("a", 20)

	assert.NoError(t, v.Struct(dto.UserReplyRequest{Content: content}))

	fields := fieldsOf(t, v.Struct(dto.UserReplyRequest{Content: "too short"}))
	assert.Contains(t, fields, "content")

	fields = fieldsOf(t, v.Struct(dto.UserReplyRequest{Content: strings.Repeat("a", 1001)}))
	assert.Equal(t, []string{"The content field must not be greater than 1000 characters."}, fields["content"])

	fields = fieldsOf(t, v.Struct(dto.AdminReplyRequest{Content: content}))
	assert.Equal(t, []string{"The status field is required."}, fields["status"])

	fields = fieldsOf(t, v.Struct(dto.AdminReplyRequest{Content: content, Status: "closed"}))
	assert.Equal(t, []string{"The selected status is invalid."}, fields["status"])

	assert.NoError(t, v.Struct(dto.AdminReplyRequest{Content: content, Status: "onprogres"}))
}

func TestCreateComplaintRules(t *testing.T) {
	v := New()

	fields := fieldsOf(t, v.Struct(dto.CreateComplaintRequest{Title: "t", Description: "d", Priority: "urgent"}))
	assert.Equal(t, []string{"The selected priority is invalid."}, fields["priority"])
	assert.NotContains(t, fields, "title")

	assert.NoError(t, v.Struct(dto.CreateComplaintRequest{Title: "t", Description: "d", Priority: "high"}))
}
