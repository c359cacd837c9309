package service

import (
	"context"
	"fmt"

	"tipster/models"

	log "github.com/sirupsen/logrus"
)

type adminService struct {
	uowFactory UnitOfWorkFactory
}

// NewAdminService creates a new admin service
func NewAdminService(uowFactory UnitOfWorkFactory) AdminService {
	return &adminService{
		uowFactory: uowFactory,
	}
}

// EnsureSuperAdmins registers the configured super admin IDs at startup
func (s *adminService) EnsureSuperAdmins(ctx context.Context, userIDs []int64) error {
	if len(userIDs) == 0 {
		return nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	for _, userID := range userIDs {
		admin := &models.Admin{
			UserID:       userID,
			IsSuperAdmin: true,
			IsActive:     true,
		}
		if err := uow.AdminRepository().Upsert(ctx, admin); err != nil {
			return fmt.Errorf("failed to ensure super admin %d: %w", userID, err)
		}
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"count": len(userIDs),
	}).Info("Ensured super admins")

	return nil
}

// AddAdmin grants admin rights; only super admins may grant
func (s *adminService) AddAdmin(ctx context.Context, grantorID int64, admin *models.Admin) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	grantor, err := uow.AdminRepository().GetByUserID(ctx, grantorID)
	if err != nil {
		return fmt.Errorf("failed to get grantor: %w", err)
	}
	if grantor == nil || !grantor.IsSuperAdmin {
		return ErrNotSuperAdmin
	}

	admin.AddedBy = &grantorID
	admin.IsActive = true
	if err := uow.AdminRepository().Upsert(ctx, admin); err != nil {
		return fmt.Errorf("failed to add admin: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":    admin.UserID,
		"grantorID": grantorID,
	}).Info("Added admin")

	return nil
}

// RemoveAdmin revokes admin rights; only super admins may revoke
func (s *adminService) RemoveAdmin(ctx context.Context, grantorID, userID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	grantor, err := uow.AdminRepository().GetByUserID(ctx, grantorID)
	if err != nil {
		return fmt.Errorf("failed to get grantor: %w", err)
	}
	if grantor == nil || !grantor.IsSuperAdmin {
		return ErrNotSuperAdmin
	}

	target, err := uow.AdminRepository().GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get admin: %w", err)
	}
	if target == nil {
		return ErrAdminNotFound
	}
	// Super admins come from configuration and cannot be demoted at runtime.
	if target.IsSuperAdmin {
		return ErrNotSuperAdmin
	}

	removed, err := uow.AdminRepository().Deactivate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to remove admin: %w", err)
	}
	if !removed {
		return ErrAdminNotFound
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":    userID,
		"grantorID": grantorID,
	}).Info("Removed admin")

	return nil
}

// IsAdmin reports whether a user is an active admin
func (s *adminService) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	admin, err := s.getAdmin(ctx, userID)
	if err != nil {
		return false, err
	}
	return admin != nil, nil
}

// IsSuperAdmin reports whether a user is an active super admin
func (s *adminService) IsSuperAdmin(ctx context.Context, userID int64) (bool, error) {
	admin, err := s.getAdmin(ctx, userID)
	if err != nil {
		return false, err
	}
	return admin != nil && admin.IsSuperAdmin, nil
}

func (s *adminService) getAdmin(ctx context.Context, userID int64) (*models.Admin, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	admin, err := uow.AdminRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return admin, nil
}

// ListAdmins returns active admins, super admins first
func (s *adminService) ListAdmins(ctx context.Context) ([]*models.Admin, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	admins, err := uow.AdminRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}

	return admins, nil
}
