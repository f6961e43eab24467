package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/notify"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/store"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/idx"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/slogx"
)

var (
	ErrContractNotFound   = errors.New("contract not found")
	ErrLinkNotEstablished = errors.New("contracts require a linked relationship")
	ErrContractFrozen     = errors.New("contract has signatures and is no longer editable")
	ErrAlreadySigned      = errors.New("signature already recorded")
	ErrNotSignatory       = errors.New("actor is not a signatory of this contract")
)

// ContractService drives the multi-party contract lifecycle: creation
// against a LINKED link, quorum enforcement, the signature-derived
// editability gate, and the append-only activity trail.
type ContractService struct {
	Store      store.Store
	Dispatcher *notify.Dispatcher
}

// ContractFields are the operator-settable document attributes.
type ContractFields struct {
	Name        string
	Description string
	File        string
}

// MemberInput proposes one contract member at creation.
type MemberInput struct {
	UserID string
	Role   domain.ContractMemberRole
}

// ContractDetail is a contract with its members and employees loaded.
type ContractDetail struct {
	Contract  domain.Contract
	Members   []domain.ContractMember
	Employees []domain.ContractEmployee
}

func validateContractFields(fields ContractFields) error {
	if strings.TrimSpace(fields.Name) == "" {
		return validationErr("name", "contract name is required")
	}
	if strings.TrimSpace(fields.Description) == "" {
		return validationErr("description", "contract description is required")
	}
	if strings.TrimSpace(fields.File) == "" {
		return validationErr("file", "contract document is required")
	}
	return nil
}

// monthStart returns the first instant of t's calendar month in UTC.
// Monthly contract quotas reset on this boundary.
func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// CreateContract persists the contract, its members, its employee
// references and the CREATED activity entry in one transaction, then
// notifies every participant. The link must be LINKED, the tenant must
// have monthly quota left, and the member set must carry at least
// MinSignatories signatories.
func (s *ContractService) CreateContract(ctx context.Context, rc ResolvedContext, linkID string, fields ContractFields, members []MemberInput, employeeIDs []string) (domain.Contract, error) {
	log := slogx.FromContext(ctx)

	if !rc.HasWorkspace() {
		return domain.Contract{}, ErrUnauthorized
	}
	if err := validateContractFields(fields); err != nil {
		return domain.Contract{}, err
	}

	// 1. Signatory quorum.
	signatories := 0
	for _, m := range members {
		if m.Role == domain.ContractSignatory {
			signatories++
		}
	}
	if signatories < domain.MinSignatories {
		return domain.Contract{}, validationErrf("members", "at least %d signatories are required", domain.MinSignatories)
	}

	// 2. The link must exist, involve the actor's workspace and be LINKED.
	link, err := s.Store.Links().GetLinkByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Contract{}, ErrLinkNotFound
		}
		return domain.Contract{}, err
	}
	if !link.Involves(rc.Workspace.ID) {
		return domain.Contract{}, ErrUnauthorized
	}
	if link.Status != domain.LinkLinked {
		return domain.Contract{}, ErrLinkNotEstablished
	}

	// 3. Monthly per-tenant quota over the current calendar month.
	// Check-then-act; two concurrent creations near the boundary can both
	// pass (see the concurrency notes in DESIGN.md).
	now := time.Now().UTC()
	count, err := s.Store.Contracts().CountContractsForTenantSince(ctx, rc.Tenant.ID, monthStart(now))
	if err != nil {
		return domain.Contract{}, err
	}
	if !quotaAllows(rc.Entitlement, count, domain.QuotaMonthlyContracts) {
		return domain.Contract{}, ErrQuotaExceeded
	}

	contract := domain.Contract{
		ID:                   idx.New().String(),
		LinkID:               linkID,
		CreatedByWorkspaceID: rc.Workspace.ID,
		Name:                 strings.TrimSpace(fields.Name),
		Description:          fields.Description,
		File:                 fields.File,
		Status:               domain.ContractPending,
	}

	var (
		recipients     []string
		employeeEmails []string
	)

	// 4. Contract, members, employees and the CREATED activity land in one
	// transaction so partial creation is never observable.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Contracts().CreateContract(ctx, contract); err != nil {
			return err
		}
		for _, m := range members {
			if _, err := tx.Users().GetUserByID(ctx, m.UserID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return validationErrf("members", "user %s does not exist", m.UserID)
				}
				return err
			}
			cm := domain.ContractMember{
				ID:         idx.New().String(),
				ContractID: contract.ID,
				UserID:     m.UserID,
				Role:       m.Role,
			}
			if err := tx.Contracts().CreateContractMember(ctx, cm); err != nil {
				return err
			}
			recipients = append(recipients, m.UserID)
		}
		for _, empID := range employeeIDs {
			emp, err := tx.Employees().GetEmployeeByID(ctx, empID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return validationErrf("employees", "employee %s does not exist", empID)
				}
				return err
			}
			ce := domain.ContractEmployee{
				ID:         idx.New().String(),
				ContractID: contract.ID,
				EmployeeID: empID,
			}
			if err := tx.Contracts().CreateContractEmployee(ctx, ce); err != nil {
				return err
			}
			employeeEmails = append(employeeEmails, emp.Email)
		}
		return tx.Contracts().AppendActivity(ctx, domain.ContractActivity{
			ID:         idx.New().String(),
			ContractID: contract.ID,
			ActorID:    rc.User.ID,
			Type:       domain.ActivityCreated,
		})
	})
	if err != nil {
		return domain.Contract{}, err
	}

	// 5. One notification per participant, members and referenced
	// employees alike, post-commit and best effort.
	s.Dispatcher.Enqueue(notify.Event{
		Kind:           "contract.created",
		RecipientIDs:   recipients,
		EmployeeEmails: employeeEmails,
		Subject:        contract.ID,
		ActorID:        rc.User.ID,
		Message:        fmt.Sprintf("contract %q was created and awaits signatures", contract.Name),
		Attachment:     contract.File,
	})

	log.Info("contract created",
		slog.String("contract_id", contract.ID),
		slog.String("link_id", linkID),
		slog.Int("signatories", signatories),
	)

	return contract, nil
}

// UpdateContract mutates the document fields while no signatory has
// signed, appending an UPDATED activity entry in the same transaction.
func (s *ContractService) UpdateContract(ctx context.Context, rc ResolvedContext, contractID string, fields ContractFields) error {
	if err := validateContractFields(fields); err != nil {
		return err
	}

	detail, err := s.getParticipantContract(ctx, rc, contractID)
	if err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Re-read members inside the tx; a signature landing between the
		// gate check and the write must still freeze the document.
		members, err := tx.Contracts().ListContractMembers(ctx, detail.Contract.ID)
		if err != nil {
			return err
		}
		if !canEditContract(members) {
			return ErrContractFrozen
		}
		if err := tx.Contracts().UpdateContractFields(ctx, contractID, strings.TrimSpace(fields.Name), fields.Description, fields.File); err != nil {
			return err
		}
		return tx.Contracts().AppendActivity(ctx, domain.ContractActivity{
			ID:         idx.New().String(),
			ContractID: contractID,
			ActorID:    rc.User.ID,
			Type:       domain.ActivityUpdated,
		})
	})
}

// UpdateContractStatus sets the operator-facing status. The status is
// metadata; it is never auto-derived from signatures, and changing it is
// still gated by editability like the other fields.
func (s *ContractService) UpdateContractStatus(ctx context.Context, rc ResolvedContext, contractID string, status domain.ContractStatus) error {
	switch status {
	case domain.ContractPending, domain.ContractSigned, domain.ContractArchived:
	default:
		return validationErr("status", "unknown contract status")
	}

	if _, err := s.getParticipantContract(ctx, rc, contractID); err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		members, err := tx.Contracts().ListContractMembers(ctx, contractID)
		if err != nil {
			return err
		}
		if !canEditContract(members) {
			return ErrContractFrozen
		}
		return tx.Contracts().UpdateContractStatus(ctx, contractID, status)
	})
}

// DeleteContract removes the contract; members, employees and activity
// cascade. Owner/admins of either linked workspace may delete.
func (s *ContractService) DeleteContract(ctx context.Context, rc ResolvedContext, contractID string) error {
	detail, err := s.getParticipantContract(ctx, rc, contractID)
	if err != nil {
		return err
	}

	link, err := s.Store.Links().GetLinkByID(ctx, detail.Contract.LinkID)
	if err != nil {
		return err
	}
	if !rc.HasWorkspace() || !canActOnLink(rc.Workspace.ID, rc.Membership.Role, link, LinkActionDelete) {
		return ErrUnauthorized
	}

	return s.Store.Contracts().DeleteContract(ctx, contractID)
}

// SendContract re-dispatches the document to every member and employee.
// No state change.
func (s *ContractService) SendContract(ctx context.Context, rc ResolvedContext, contractID string) error {
	detail, err := s.getParticipantContract(ctx, rc, contractID)
	if err != nil {
		return err
	}

	recipients := make([]string, 0, len(detail.Members))
	for _, m := range detail.Members {
		recipients = append(recipients, m.UserID)
	}

	employeeEmails := make([]string, 0, len(detail.Employees))
	for _, ce := range detail.Employees {
		emp, err := s.Store.Employees().GetEmployeeByID(ctx, ce.EmployeeID)
		if err != nil {
			return err
		}
		employeeEmails = append(employeeEmails, emp.Email)
	}

	s.Dispatcher.Enqueue(notify.Event{
		Kind:           "contract.sent",
		RecipientIDs:   recipients,
		EmployeeEmails: employeeEmails,
		Subject:        detail.Contract.ID,
		ActorID:        rc.User.ID,
		Message:        fmt.Sprintf("contract %q was sent to you", detail.Contract.Name),
		Attachment:     detail.Contract.File,
	})
	return nil
}

// RecordSignature stamps the actor's signatory row with the current time.
// The conditional update makes a signature land at most once. The status
// field is deliberately left alone.
func (s *ContractService) RecordSignature(ctx context.Context, rc ResolvedContext, contractID string) error {
	log := slogx.FromContext(ctx)

	detail, err := s.getParticipantContract(ctx, rc, contractID)
	if err != nil {
		return err
	}

	isSignatory := false
	for _, m := range detail.Members {
		if m.UserID == rc.User.ID && m.Role == domain.ContractSignatory {
			isSignatory = true
			break
		}
	}
	if !isSignatory {
		return ErrNotSignatory
	}

	if err := s.Store.Contracts().SetMemberSignDate(ctx, contractID, rc.User.ID, time.Now().UTC()); err != nil {
		if errors.Is(err, store.ErrStale) {
			return ErrAlreadySigned
		}
		return err
	}

	log.Info("contract signed",
		slog.String("contract_id", contractID),
		slog.String("user_id", rc.User.ID),
	)
	return nil
}

// GetContract loads a contract with members and employees, provided the
// actor's workspace is a side of its link.
func (s *ContractService) GetContract(ctx context.Context, rc ResolvedContext, contractID string) (ContractDetail, error) {
	return s.getParticipantContract(ctx, rc, contractID)
}

// ListActivity returns the audit trail, chronological ascending with
// insertion order breaking ties.
func (s *ContractService) ListActivity(ctx context.Context, rc ResolvedContext, contractID string) ([]domain.ContractActivity, error) {
	if _, err := s.getParticipantContract(ctx, rc, contractID); err != nil {
		return nil, err
	}
	return s.Store.Contracts().ListActivity(ctx, contractID)
}

// ListForWorkspace returns contracts attached to any of the workspace's
// links.
func (s *ContractService) ListForWorkspace(ctx context.Context, rc ResolvedContext) ([]domain.Contract, error) {
	if !rc.HasWorkspace() {
		return nil, ErrUnauthorized
	}
	return s.Store.Contracts().ListContractsForWorkspace(ctx, rc.Workspace.ID)
}

// getParticipantContract fetches the contract and verifies the actor's
// workspace sits on one side of its link.
func (s *ContractService) getParticipantContract(ctx context.Context, rc ResolvedContext, contractID string) (ContractDetail, error) {
	contract, err := s.Store.Contracts().GetContractByID(ctx, contractID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ContractDetail{}, ErrContractNotFound
		}
		return ContractDetail{}, err
	}

	link, err := s.Store.Links().GetLinkByID(ctx, contract.LinkID)
	if err != nil {
		return ContractDetail{}, err
	}
	if !rc.HasWorkspace() || !link.Involves(rc.Workspace.ID) {
		return ContractDetail{}, ErrContractNotFound
	}

	members, err := s.Store.Contracts().ListContractMembers(ctx, contractID)
	if err != nil {
		return ContractDetail{}, err
	}
	employees, err := s.Store.Contracts().ListContractEmployees(ctx, contractID)
	if err != nil {
		return ContractDetail{}, err
	}

	return ContractDetail{Contract: contract, Members: members, Employees: employees}, nil
}
