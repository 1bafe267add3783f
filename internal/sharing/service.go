package sharing

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brennuck/sprout/internal/audit"
	"github.com/brennuck/sprout/internal/domain"
	"github.com/brennuck/sprout/internal/ledger"
)

// invitations stay acceptable for a week.
const invitationTTL = 7 * 24 * time.Hour

// Service owns the invitation lifecycle and the dashboard-share relation.
// Reads of a shared dashboard go through here so the permission check cannot
// be skipped.
type Service struct {
	Pool   ledger.Pool
	Repo   Repo
	Ledger *ledger.Service
}

func NewService(pool *pgxpool.Pool, led *ledger.Service) *Service {
	return &Service{Pool: pool, Ledger: led}
}

// SendInvitation creates a PENDING invitation to email. Self-invites,
// existing shares and duplicate pending invitations are rejected.
func (s *Service) SendInvitation(ctx context.Context, actor, email string, permission domain.SharePermission) (domain.Invitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.Invitation{}, fmt.Errorf("%w: please enter a valid email", ledger.ErrValidation)
	}
	if !domain.ValidSharePermission(string(permission)) {
		return domain.Invitation{}, fmt.Errorf("%w: permission must be VIEW or EDIT", ledger.ErrValidation)
	}

	sender, err := s.Repo.GetUser(ctx, s.Pool, actor)
	if err != nil {
		return domain.Invitation{}, err
	}
	if strings.EqualFold(email, sender.Email) {
		return domain.Invitation{}, fmt.Errorf("%w: you cannot invite yourself", ledger.ErrValidation)
	}

	recipient, err := s.Repo.FindUserByEmail(ctx, s.Pool, email)
	if err != nil {
		return domain.Invitation{}, err
	}

	var recipientID *string
	if recipient != nil {
		shared, err := s.Repo.HasShare(ctx, s.Pool, actor, recipient.ID)
		if err != nil {
			return domain.Invitation{}, err
		}
		if shared {
			return domain.Invitation{}, fmt.Errorf("%w: already sharing with this user", ledger.ErrConflict)
		}
		recipientID = &recipient.ID
	}

	pending, err := s.Repo.HasPendingInvitation(ctx, s.Pool, actor, email)
	if err != nil {
		return domain.Invitation{}, err
	}
	if pending {
		return domain.Invitation{}, fmt.Errorf("%w: invitation already sent to this email", ledger.ErrConflict)
	}

	inv, err := s.Repo.InsertInvitation(ctx, s.Pool, actor, recipientID, email, permission, time.Now().UTC().Add(invitationTTL))
	if err != nil {
		return domain.Invitation{}, err
	}

	s.record(ctx, actor, "invitation.send", "invitation", inv.ID)
	return inv, nil
}

// AcceptInvitation creates the share and marks the invitation ACCEPTED in one
// atomic unit. A PENDING invitation observed past its expiry is flipped to
// EXPIRED and the accept fails.
func (s *Service) AcceptInvitation(ctx context.Context, actor, invitationID string) error {
	invitationID, err := parseID(invitationID)
	if err != nil {
		return err
	}
	acceptor, err := s.Repo.GetUser(ctx, s.Pool, actor)
	if err != nil {
		return err
	}

	inv, err := s.Repo.GetPendingFor(ctx, s.Pool, invitationID, actor, acceptor.Email)
	if err != nil {
		return err
	}

	if time.Now().After(inv.ExpiresAt) {
		// The flip persists even though the accept fails.
		if err := s.Repo.SetStatus(ctx, s.Pool, inv.ID, domain.InvitationExpired, nil); err != nil {
			return err
		}
		return ledger.ErrExpired
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := s.Repo.InsertShare(ctx, tx, inv.SenderID, actor, inv.Permission); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: already sharing with this user", ledger.ErrConflict)
		}
		return err
	}
	if err := s.Repo.SetStatus(ctx, tx, inv.ID, domain.InvitationAccepted, &actor); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.record(ctx, actor, "invitation.accept", "invitation", inv.ID)
	return nil
}

// DeclineInvitation marks the invitation DECLINED and binds the recipient.
func (s *Service) DeclineInvitation(ctx context.Context, actor, invitationID string) error {
	invitationID, err := parseID(invitationID)
	if err != nil {
		return err
	}
	decliner, err := s.Repo.GetUser(ctx, s.Pool, actor)
	if err != nil {
		return err
	}

	inv, err := s.Repo.GetPendingFor(ctx, s.Pool, invitationID, actor, decliner.Email)
	if err != nil {
		return err
	}

	if time.Now().After(inv.ExpiresAt) {
		// Same observation semantics as accept: the flip persists.
		if err := s.Repo.SetStatus(ctx, s.Pool, inv.ID, domain.InvitationExpired, nil); err != nil {
			return err
		}
		return ledger.ErrExpired
	}

	if err := s.Repo.SetStatus(ctx, s.Pool, inv.ID, domain.InvitationDeclined, &actor); err != nil {
		return err
	}

	s.record(ctx, actor, "invitation.decline", "invitation", inv.ID)
	return nil
}

// CancelInvitation lets the sender withdraw a PENDING invitation.
func (s *Service) CancelInvitation(ctx context.Context, actor, invitationID string) error {
	invitationID, err := parseID(invitationID)
	if err != nil {
		return err
	}
	if err := s.Repo.DeletePendingFromSender(ctx, s.Pool, invitationID, actor); err != nil {
		return err
	}

	s.record(ctx, actor, "invitation.cancel", "invitation", invitationID)
	return nil
}

// RevokeOrLeaveShare deletes the share when the caller is its owner (revoke)
// or its viewer (leave).
func (s *Service) RevokeOrLeaveShare(ctx context.Context, actor, shareID string) error {
	shareID, err := parseID(shareID)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteShareForParty(ctx, s.Pool, shareID, actor); err != nil {
		return err
	}

	s.record(ctx, actor, "share.delete", "share", shareID)
	return nil
}

// Overview is the sharing read-model for the caller's settings screen.
type Overview struct {
	SentInvitations     []domain.Invitation     `json:"sent_invitations"`
	ReceivedInvitations []domain.Invitation     `json:"received_invitations"`
	SharedWithMe        []domain.DashboardShare `json:"shared_with_me"`
	SharedByMe          []domain.DashboardShare `json:"shared_by_me"`
}

func (s *Service) GetOverview(ctx context.Context, actor string) (Overview, error) {
	user, err := s.Repo.GetUser(ctx, s.Pool, actor)
	if err != nil {
		return Overview{}, err
	}

	var ov Overview
	if ov.SentInvitations, err = s.Repo.ListSent(ctx, s.Pool, actor); err != nil {
		return Overview{}, err
	}
	if ov.ReceivedInvitations, err = s.Repo.ListReceived(ctx, s.Pool, actor, user.Email); err != nil {
		return Overview{}, err
	}
	if ov.SharedWithMe, err = s.Repo.ListSharedWithMe(ctx, s.Pool, actor); err != nil {
		return Overview{}, err
	}
	if ov.SharedByMe, err = s.Repo.ListSharedByMe(ctx, s.Pool, actor); err != nil {
		return Overview{}, err
	}
	return ov, nil
}

// SharedAccounts returns ownerID's accounts to a viewer holding a share.
// Only the owner's own data is exposed, exactly as the owner's dashboard
// would show it; there is no transitive sharing.
func (s *Service) SharedAccounts(ctx context.Context, actor, ownerID string) ([]domain.Account, error) {
	ownerID, err := parseID(ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.requireShare(ctx, ownerID, actor); err != nil {
		return nil, err
	}
	return s.Ledger.ListAccounts(ctx, ownerID)
}

// SharedTransactions is the transaction-log side of SharedAccounts.
func (s *Service) SharedTransactions(ctx context.Context, actor, ownerID string, limit int) ([]domain.Transaction, error) {
	ownerID, err := parseID(ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.requireShare(ctx, ownerID, actor); err != nil {
		return nil, err
	}
	return s.Ledger.ListTransactions(ctx, ownerID, limit)
}

func (s *Service) requireShare(ctx context.Context, ownerID, viewerID string) error {
	ok, err := s.Repo.HasShare(ctx, s.Pool, ownerID, viewerID)
	if err != nil {
		return err
	}
	if !ok {
		return ledger.ErrNotFound
	}
	return nil
}

func (s *Service) record(ctx context.Context, actor, action, entityType, entityID string) {
	id := entityID
	_ = audit.Write(ctx, s.Pool, audit.Entry{
		UserID:     &actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   &id,
	})
}

// parseID mirrors the ledger's id handling: a malformed id gets the same
// answer as a missing row.
func parseID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return "", ledger.ErrNotFound
	}
	return id, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
