package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"

	"go.uber.org/zap"

	"jira_bridge/internal/logger"
)

var emailPattern = regexp.MustCompile(`(?i)^[a-z0-9]+[._]?[a-z0-9]+@\w+[.]\w+$`)

// UserInfo looks up a user by account ID.
func (c *Client) UserInfo(ctx context.Context, accountID string) (UserResult, int, error) {
	query := url.Values{}
	query.Set("accountId", accountID)
	body, code, err := c.do(ctx, http.MethodGet, "api/3/user", query, nil)
	if err != nil {
		logger.GetLogger().Error("failed to retrieve user info",
			zap.String("account_id", accountID),
			zap.Int("status_code", StatusUserInfoFailed),
			zap.Error(err))
		return UserResult{}, StatusUserInfoFailed, err
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		logger.GetLogger().Error("failed to parse user info",
			zap.String("account_id", accountID),
			zap.Int("status_code", StatusUserInfoFailed),
			zap.Error(err))
		return UserResult{}, StatusUserInfoFailed, err
	}
	if user.AccountID == "" {
		logger.GetLogger().Warn("user not found", zap.String("account_id", accountID))
		return UserResult{}, code, nil
	}
	logger.GetLogger().Debug("user info",
		zap.String("account_id", accountID),
		zap.Int("status_code", code),
		zap.String("display_name", user.DisplayName))
	return UserResult{Found: true, User: user}, code, nil
}

// UserByEmail looks up a user by email address. A syntactically invalid
// address short-circuits with StatusInvalidEmail before any network call.
func (c *Client) UserByEmail(ctx context.Context, email string) (UserResult, int, error) {
	if !emailPattern.MatchString(email) {
		logger.GetLogger().Warn("invalid email address",
			zap.String("email", email),
			zap.Int("status_code", StatusInvalidEmail))
		return UserResult{}, StatusInvalidEmail, fmt.Errorf("invalid email address: %s", email)
	}

	query := url.Values{}
	query.Set("query", email)
	body, code, err := c.do(ctx, http.MethodGet, "api/3/user/search", query, nil)
	if err != nil {
		logger.GetLogger().Error("failed to retrieve user by email",
			zap.String("email", email),
			zap.Int("status_code", StatusUserByEmailFailed),
			zap.Error(err))
		return UserResult{}, StatusUserByEmailFailed, err
	}

	var users []User
	if err := json.Unmarshal(body, &users); err != nil {
		logger.GetLogger().Error("failed to parse user search response",
			zap.String("email", email),
			zap.Int("status_code", StatusUserByEmailFailed),
			zap.Error(err))
		return UserResult{}, StatusUserByEmailFailed, err
	}
	if len(users) == 0 {
		logger.GetLogger().Warn("user not found", zap.String("email", email))
		return UserResult{}, code, nil
	}
	logger.GetLogger().Debug("user by email",
		zap.String("email", email),
		zap.Int("status_code", code),
		zap.String("account_id", users[0].AccountID))
	return UserResult{Found: true, User: users[0]}, code, nil
}
