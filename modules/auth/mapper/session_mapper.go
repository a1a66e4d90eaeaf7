package mapper

import (
	"eventsync/core/constants"
	"eventsync/modules/auth/dto"
	"eventsync/modules/auth/entity"
)

// ToSessionResponse never exposes the tokens themselves.
func ToSessionResponse(cred *entity.Credential) *dto.SessionResponse {
	if cred == nil {
		return &dto.SessionResponse{SignedIn: false}
	}

	resp := &dto.SessionResponse{
		SignedIn:           true,
		Provider:           constants.ProviderGoogle,
		Email:              cred.Email,
		Scopes:             cred.Scopes,
		CalendarWriteScope: cred.HasCalendarWriteScope(),
		CanRefresh:         cred.RefreshToken != "",
	}
	if !cred.ExpiresAt.IsZero() {
		expiresAt := cred.ExpiresAt
		resp.ExpiresAt = &expiresAt
	}
	return resp
}
