package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"company-workspace-backend/pkg/middleware"
	"company-workspace-backend/pkg/models"
	"company-workspace-backend/pkg/services"
	"company-workspace-backend/pkg/utils"
)

// AddUserRequest is the body of POST /api/company/users
type AddUserRequest struct {
	Email           string      `json:"email" validate:"required,email"`
	FullName        string      `json:"full_name" validate:"required"`
	Role            models.Role `json:"role" validate:"omitempty,oneof=admin user"`
	CanViewAllTasks *bool       `json:"can_view_all_tasks"`
}

// toCandidate applies the add-user form defaults: a missing visibility flag
// means true, and admins always see every task.
func (req AddUserRequest) toCandidate() services.NewCompanyUser {
	canViewAll := true
	if req.CanViewAllTasks != nil {
		canViewAll = *req.CanViewAllTasks
	}
	if req.Role == models.RoleAdmin {
		canViewAll = true
	}
	return services.NewCompanyUser{
		Email:           req.Email,
		FullName:        req.FullName,
		Role:            req.Role,
		CanViewAllTasks: canViewAll,
	}
}

// UpdateRoleRequest is the body of PATCH /api/company/users/{userID}
type UpdateRoleRequest struct {
	Role            *models.Role `json:"role" validate:"omitempty,oneof=admin user"`
	CanViewAllTasks *bool        `json:"can_view_all_tasks"`
}

// UpdateCollaboratorsRequest is the body of PUT /api/tasks/{taskID}/collaborators
type UpdateCollaboratorsRequest struct {
	Collaborators []string `json:"collaborators" validate:"required"`
}

type CompanyHandler struct {
	companyService services.CompanyService
}

func NewCompanyHandler(companyService services.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// GET /api/company/users
func (h *CompanyHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.companyService.GetCompanyUsers(r.Context(), middleware.GetIdentityFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err, "Failed to load company users")
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"users": users,
		"count": len(users),
	})
}

// POST /api/company/users
func (h *CompanyHandler) AddUser(w http.ResponseWriter, r *http.Request) {
	var req AddUserRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		writeInvalidInput(w, "invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if err := utils.ValidateStruct(req); err != nil {
		writeInvalidInput(w, err.Error())
		return
	}

	candidate := req.toCandidate()
	if err := h.companyService.AddCompanyUser(r.Context(), middleware.GetIdentityFromContext(r.Context()), candidate); err != nil {
		writeServiceError(w, err, "")
		return
	}
	utils.WriteCreatedResponse(w, map[string]interface{}{
		"email":              candidate.Email,
		"status":             models.MembershipPending,
		"can_view_all_tasks": candidate.CanViewAllTasks,
	})
}

// PATCH /api/company/users/{userID}
func (h *CompanyHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	var req UpdateRoleRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		writeInvalidInput(w, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		writeInvalidInput(w, err.Error())
		return
	}

	userID := chi.URLParam(r, "userID")
	patch := models.MembershipPatch{Role: req.Role, CanViewAllTasks: req.CanViewAllTasks}
	if err := h.companyService.UpdateUserRole(r.Context(), middleware.GetIdentityFromContext(r.Context()), userID, patch); err != nil {
		writeServiceError(w, err, "Failed to update user role")
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{"user_id": userID, "updated": true})
}

// PUT /api/tasks/{taskID}/collaborators
func (h *CompanyHandler) UpdateTaskCollaborators(w http.ResponseWriter, r *http.Request) {
	var req UpdateCollaboratorsRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		writeInvalidInput(w, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		writeInvalidInput(w, err.Error())
		return
	}

	taskID := chi.URLParam(r, "taskID")
	if err := h.companyService.UpdateTaskCollaborators(r.Context(), middleware.GetIdentityFromContext(r.Context()), taskID, req.Collaborators); err != nil {
		writeServiceError(w, err, "Failed to update collaborators")
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{"task_id": taskID, "updated": true})
}
