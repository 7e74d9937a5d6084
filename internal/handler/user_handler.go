package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jira_bridge/internal/logger"
)

// HandleUserLookup handles GET /users?account_id= or GET /users?email=
func (b *Bridge) HandleUserLookup(c *gin.Context) {
	accountID := c.Query("account_id")
	email := c.Query("email")

	switch {
	case accountID != "":
		result, code, err := b.jira.UserInfo(c.Request.Context(), accountID)
		if err != nil {
			failure(c, code, err)
			return
		}
		if !result.Found {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(code, result.User)

	case email != "":
		result, code, err := b.jira.UserByEmail(c.Request.Context(), email)
		if err != nil {
			failure(c, code, err)
			return
		}
		if !result.Found {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(code, result.User)

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "account_id or email query parameter required"})
	}
}

// RoleAddUserRequest is the body of POST /roles/:roleID/users.
type RoleAddUserRequest struct {
	AccountID string `json:"account_id" binding:"required"`
	ProjectID string `json:"project_id"`
}

// HandleRoleAddUser handles POST /roles/:roleID/users
func (b *Bridge) HandleRoleAddUser(c *gin.Context) {
	roleID, err := roleIDParam(c)
	if err != nil {
		return
	}
	var req RoleAddUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	code, err := b.jira.RoleAddUser(c.Request.Context(), roleID, req.AccountID, req.ProjectID)
	if err != nil {
		failure(c, code, err)
		return
	}
	c.JSON(code, gin.H{"status_code": code})
}

// HandleRoleUsers handles GET /roles/:roleID/users, with email enrichment.
func (b *Bridge) HandleRoleUsers(c *gin.Context) {
	roleID, err := roleIDParam(c)
	if err != nil {
		return
	}
	role, code, err := b.jira.RoleUsers(c.Request.Context(), roleID, c.Query("project_id"))
	if err != nil {
		failure(c, code, err)
		return
	}

	type member struct {
		AccountID   string `json:"account_id"`
		DisplayName string `json:"display_name"`
		Email       string `json:"email"`
	}
	members := make([]member, 0, len(role.Actors))
	for _, actor := range role.Actors {
		members = append(members, member{
			AccountID:   actor.ActorUser.AccountID,
			DisplayName: actor.DisplayName,
			Email:       actor.Email,
		})
	}
	c.JSON(code, gin.H{"role": role.Name, "members": members})
}

// HandleRoleInfo handles GET /roles/:roleID
func (b *Bridge) HandleRoleInfo(c *gin.Context) {
	roleID, err := roleIDParam(c)
	if err != nil {
		return
	}
	role, code, err := b.jira.RoleInfo(c.Request.Context(), roleID, c.Query("project_id"))
	if err != nil {
		failure(c, code, err)
		return
	}
	c.JSON(code, role)
}

// roleIDParam parses the numeric role ID path parameter, writing the error
// response itself so callers just return on failure.
func roleIDParam(c *gin.Context) (int, error) {
	roleID, err := strconv.Atoi(c.Param("roleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role ID"})
		return 0, err
	}
	return roleID, nil
}
