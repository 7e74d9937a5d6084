package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"jira_bridge/internal/logger"
)

func rolePath(projectID string, roleID int) string {
	return "api/3/project/" + url.PathEscape(projectID) + "/role/" + strconv.Itoa(roleID)
}

// RoleAddUser adds a user to a project role. An empty projectID falls back
// to the client's cached default project.
func (c *Client) RoleAddUser(ctx context.Context, roleID int, accountID, projectID string) (int, error) {
	if projectID == "" {
		projectID = c.ProjectID
	}
	payload := map[string]any{"user": []string{accountID}}
	_, code, err := c.do(ctx, http.MethodPost, rolePath(projectID, roleID), nil, payload)
	if err != nil {
		logger.GetLogger().Error("failed to add user to role",
			zap.Int("role_id", roleID),
			zap.String("account_id", accountID),
			zap.String("project_id", projectID),
			zap.Int("status_code", StatusRoleAddFailed),
			zap.Error(err))
		return StatusRoleAddFailed, err
	}
	logger.GetLogger().Info("role user added",
		zap.Int("role_id", roleID),
		zap.String("account_id", accountID),
		zap.String("project_id", projectID),
		zap.Int("status_code", code))
	return code, nil
}

// RoleUsers retrieves a project role and enriches each member with the
// user's email address via a per-actor lookup.
func (c *Client) RoleUsers(ctx context.Context, roleID int, projectID string) (Role, int, error) {
	if projectID == "" {
		projectID = c.ProjectID
	}
	body, code, err := c.do(ctx, http.MethodGet, rolePath(projectID, roleID), nil, nil)
	if err != nil {
		logger.GetLogger().Error("failed to retrieve role users",
			zap.Int("role_id", roleID),
			zap.String("project_id", projectID),
			zap.Int("status_code", StatusRoleUsersFailed),
			zap.Error(err))
		return Role{}, StatusRoleUsersFailed, err
	}
	var role Role
	if err := json.Unmarshal(body, &role); err != nil {
		logger.GetLogger().Error("failed to parse role response",
			zap.Int("role_id", roleID),
			zap.String("project_id", projectID),
			zap.Int("status_code", StatusRoleUsersFailed),
			zap.Error(err))
		return Role{}, StatusRoleUsersFailed, err
	}

	for i, actor := range role.Actors {
		if actor.ActorUser.AccountID == "" {
			continue
		}
		result, _, err := c.UserInfo(ctx, actor.ActorUser.AccountID)
		if err != nil || !result.Found {
			continue
		}
		role.Actors[i].Email = result.User.EmailAddress
	}

	logger.GetLogger().Debug("role users",
		zap.Int("role_id", roleID),
		zap.String("project_id", projectID),
		zap.Int("status_code", code),
		zap.Int("actors", len(role.Actors)))
	return role, code, nil
}

// RoleInfo retrieves a project role without the email enrichment of
// RoleUsers.
func (c *Client) RoleInfo(ctx context.Context, roleID int, projectID string) (Role, int, error) {
	if projectID == "" {
		projectID = c.ProjectID
	}
	body, code, err := c.do(ctx, http.MethodGet, rolePath(projectID, roleID), nil, nil)
	if err != nil {
		logger.GetLogger().Error("failed to retrieve role info",
			zap.Int("role_id", roleID),
			zap.String("project_id", projectID),
			zap.Int("status_code", StatusRoleInfoFailed),
			zap.Error(err))
		return Role{}, StatusRoleInfoFailed, err
	}
	var role Role
	if err := json.Unmarshal(body, &role); err != nil {
		logger.GetLogger().Error("failed to parse role info",
			zap.Int("role_id", roleID),
			zap.String("project_id", projectID),
			zap.Int("status_code", StatusRoleInfoFailed),
			zap.Error(err))
		return Role{}, StatusRoleInfoFailed, err
	}
	logger.GetLogger().Debug("role info",
		zap.Int("role_id", roleID),
		zap.String("project_id", projectID),
		zap.Int("status_code", code))
	return role, code, nil
}
