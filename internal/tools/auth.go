// ABOUTME: get_auth_token tool
// ABOUTME: Forces a fresh client-credentials token for the request's credentials

package tools

import "context"

type authTokenArgs struct{}

type authTokenOutput struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

func (h *handlers) getAuthTokenTool() (*Tool, error) {
	return newTool("get_auth_token",
		"Authenticate and obtain access token for Rently API using OAuth2 client credentials",
		authTokenArgs{},
		h.getAuthToken,
	)
}

func (h *handlers) getAuthToken(ctx context.Context, _ authTokenArgs) *Result {
	up, err := h.upstream(ctx, "")
	if err != nil {
		return errorText(err)
	}
	token, err := up.RefreshToken(ctx)
	if err != nil {
		h.logger.Warn("token refresh failed", "error", err)
		return errorText(err)
	}
	return jsonResult(authTokenOutput{
		Success: true,
		Token:   token,
		Message: "Token obtained successfully using client_credentials grant",
	})
}
