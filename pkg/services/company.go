package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"company-workspace-backend/pkg/database"
	"company-workspace-backend/pkg/logger"
	"company-workspace-backend/pkg/models"
)

// NewCompanyUser is the candidate submitted to AddCompanyUser
type NewCompanyUser struct {
	Email           string
	FullName        string
	Role            models.Role
	CanViewAllTasks bool
}

type CompanyService interface {
	// AddCompanyUser invites a user into the caller's company. Failures are
	// *InvitationError values whose Kind is one of the package error kinds.
	AddCompanyUser(ctx context.Context, caller *models.Identity, candidate NewCompanyUser) error
	GetCompanyUsers(ctx context.Context, caller *models.Identity) ([]models.MembershipSummary, error)
	UpdateUserRole(ctx context.Context, caller *models.Identity, userID string, update models.MembershipPatch) error
	UpdateTaskCollaborators(ctx context.Context, caller *models.Identity, taskID string, collaborators []string) error
}

type companyService struct {
	db database.DatabaseInterface
}

func NewCompanyService(db database.DatabaseInterface) CompanyService {
	return &companyService{db: db}
}

func (s *companyService) AddCompanyUser(ctx context.Context, caller *models.Identity, candidate NewCompanyUser) error {
	log := logger.Invitations()
	if caller == nil || caller.ID == "" {
		log.Warn("add user rejected: no authenticated caller")
		return newInvitationError(ErrUnauthenticated, nil)
	}

	email := strings.ToLower(strings.TrimSpace(candidate.Email))
	fullName := strings.TrimSpace(candidate.FullName)
	log = log.WithFields(logrus.Fields{"caller_id": caller.ID, "email": email})

	if email == "" || fullName == "" {
		log.Warn("add user rejected: email and full name are required")
		return newInvitationError(ErrInvalidInput, nil)
	}
	role := candidate.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Invitable() {
		log.WithField("role", role).Warn("add user rejected: role cannot be granted by invitation")
		return newInvitationError(ErrInvalidInput, nil)
	}

	company, err := s.companyOf(ctx, caller.ID)
	if err != nil {
		if err == ErrCompanyNotConfigured {
			log.Warn("add user rejected: company not configured")
			return newInvitationError(ErrCompanyNotConfigured, nil)
		}
		log.WithError(err).Error("add user failed: could not read company settings")
		return newInvitationError(ErrUnexpected, err)
	}
	log = log.WithField("company", company)

	if err := s.requireAdmin(ctx, log, caller.ID, company); err != nil {
		return err
	}

	existing, err := s.db.FindMembershipByEmail(ctx, email, company)
	if err != nil {
		log.WithError(err).Error("add user failed: could not look up existing membership")
		return newInvitationError(ErrUnexpected, err)
	}
	if existing != nil {
		log = log.WithField("status", existing.Status)
		if existing.Status == models.MembershipActive {
			log.Warn("add user rejected: already a member")
			return newInvitationError(ErrAlreadyMember, nil)
		}
		log.Warn("add user rejected: invitation already pending")
		return newInvitationError(ErrInvitationPending, nil)
	}

	invitedBy := caller.ID
	membership := &models.CompanyMembership{
		Email:           email,
		FullName:        fullName,
		CompanyName:     company,
		Role:            role,
		CanViewAllTasks: candidate.CanViewAllTasks,
		Status:          models.MembershipPending,
		InvitedBy:       &invitedBy,
	}
	if err := s.db.CreateMembership(ctx, membership); err != nil {
		// The unique (email, company_name) index is the authoritative guard
		// against two concurrent invitations.
		if database.IsUniqueViolation(err) {
			log.WithError(err).Warn("add user rejected: concurrent invitation won the insert")
			return newInvitationError(ErrInvitationPending, err)
		}
		log.WithError(err).Error("add user failed: could not create membership")
		return newInvitationError(ErrUnexpected, err)
	}

	log.WithFields(logrus.Fields{"role": role, "membership_id": membership.ID}).Info("company user invited")
	return nil
}

func (s *companyService) GetCompanyUsers(ctx context.Context, caller *models.Identity) ([]models.MembershipSummary, error) {
	if caller == nil || caller.ID == "" {
		return nil, ErrUnauthenticated
	}
	log := logger.Directory().WithField("caller_id", caller.ID)

	company, err := s.companyOf(ctx, caller.ID)
	if err != nil {
		if err == ErrCompanyNotConfigured {
			return nil, err
		}
		log.WithError(err).Error("failed to get company settings")
		return nil, fmt.Errorf("failed to get company settings: %w", err)
	}

	users, err := s.db.ListMembershipsByCompany(ctx, company)
	if err != nil {
		log.WithError(err).WithField("company", company).Error("failed to list company users")
		return nil, err
	}
	return users, nil
}

// UpdateUserRole changes the role and/or task visibility of a member of the
// caller's company. Owners cannot be changed this way.
func (s *companyService) UpdateUserRole(ctx context.Context, caller *models.Identity, userID string, update models.MembershipPatch) error {
	if caller == nil || caller.ID == "" {
		return ErrUnauthenticated
	}
	userID = strings.TrimSpace(userID)
	if userID == "" || update.Empty() {
		return ErrInvalidInput
	}
	if update.Role != nil && !update.Role.Invitable() {
		return ErrInvalidInput
	}

	log := logger.Directory().WithFields(logrus.Fields{"caller_id": caller.ID, "target_id": userID})
	company, err := s.companyOf(ctx, caller.ID)
	if err != nil {
		if err == ErrCompanyNotConfigured {
			return err
		}
		log.WithError(err).Error("failed to get company settings")
		return fmt.Errorf("failed to get company settings: %w", err)
	}
	log = log.WithField("company", company)

	if err := s.requireAdmin(ctx, log, caller.ID, company); err != nil {
		return err
	}

	target, err := s.db.GetMembership(ctx, userID, company)
	if err != nil {
		log.WithError(err).Error("failed to load target membership")
		return err
	}
	if target != nil && target.Role == models.RoleOwner {
		log.Warn("role update rejected: target is the company owner")
		return newInvitationError(ErrNotAuthorized, nil)
	}

	if err := s.db.UpdateMembership(ctx, userID, company, update); err != nil {
		log.WithError(err).Error("failed to update user role")
		return err
	}
	log.Info("user role updated")
	return nil
}

// UpdateTaskCollaborators replaces a task's collaborator list. Ids are
// trimmed and de-duplicated, keeping first-seen order.
func (s *companyService) UpdateTaskCollaborators(ctx context.Context, caller *models.Identity, taskID string, collaborators []string) error {
	if caller == nil || caller.ID == "" {
		return ErrUnauthenticated
	}
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return ErrInvalidInput
	}

	seen := make(map[string]struct{}, len(collaborators))
	ids := make([]string, 0, len(collaborators))
	for _, id := range collaborators {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if err := s.db.UpdateTaskCollaborators(ctx, taskID, ids); err != nil {
		logger.Directory().WithError(err).WithFields(logrus.Fields{
			"caller_id": caller.ID,
			"task_id":   taskID,
		}).Error("failed to update task collaborators")
		return err
	}
	return nil
}

// companyOf resolves the company named in the user's settings. It returns
// ErrCompanyNotConfigured when there is no settings row or the name is empty,
// and the store error for any other failure.
func (s *companyService) companyOf(ctx context.Context, userID string) (string, error) {
	settings, err := s.db.GetUserSettings(ctx, userID)
	if err != nil {
		if database.IsNoRows(err) {
			return "", ErrCompanyNotConfigured
		}
		return "", err
	}
	// memberships store the name exactly as settings do
	if strings.TrimSpace(settings.CompanyName) == "" {
		return "", ErrCompanyNotConfigured
	}
	return settings.CompanyName, nil
}

// requireAdmin checks that userID holds an active admin or owner membership
// in company. The three rejection reasons are only distinguished in logs.
func (s *companyService) requireAdmin(ctx context.Context, log *logrus.Entry, userID, company string) error {
	membership, err := s.db.GetMembership(ctx, userID, company)
	if err != nil {
		log.WithError(err).Error("could not verify admin permissions")
		return newInvitationError(ErrUnexpected, err)
	}

	var reason string
	switch {
	case membership == nil:
		reason = "no_membership"
	case membership.Status != models.MembershipActive:
		reason = "inactive"
	case !membership.Role.CanInvite():
		reason = "wrong_role"
	}
	if reason != "" {
		entry := log.WithField("reason", reason)
		if membership != nil {
			entry = entry.WithFields(logrus.Fields{"role": membership.Role, "status": membership.Status})
		}
		entry.Warn("caller is not an active company admin")
		return newInvitationError(ErrNotAuthorized, nil)
	}
	return nil
}
