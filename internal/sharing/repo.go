package sharing

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/brennuck/sprout/internal/domain"
	"github.com/brennuck/sprout/internal/ledger"
)

// Repo holds the invitation and dashboard-share queries.
type Repo struct{}

const invitationColumns = `id::text, sender_id::text, recipient_id::text, email, permission, status, expires_at, created_at`

func scanInvitation(row pgx.Row) (domain.Invitation, error) {
	var (
		inv        domain.Invitation
		permission string
		status     string
	)
	if err := row.Scan(&inv.ID, &inv.SenderID, &inv.RecipientID, &inv.Email, &permission, &status, &inv.ExpiresAt, &inv.CreatedAt); err != nil {
		return domain.Invitation{}, err
	}
	inv.Permission = domain.SharePermission(permission)
	inv.Status = domain.InvitationStatus(status)
	return inv, nil
}

func (Repo) InsertInvitation(ctx context.Context, db ledger.DB, senderID string, recipientID *string, email string, permission domain.SharePermission, expiresAt time.Time) (domain.Invitation, error) {
	row := db.QueryRow(ctx, `
		INSERT INTO invitations (sender_id, recipient_id, email, permission, expires_at)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5)
		RETURNING `+invitationColumns,
		senderID, recipientID, email, string(permission), expiresAt,
	)
	return scanInvitation(row)
}

// GetPendingFor loads a PENDING invitation addressed to the user, matched by
// bound recipient id or by email.
func (Repo) GetPendingFor(ctx context.Context, db ledger.DB, invitationID, userID, userEmail string) (domain.Invitation, error) {
	row := db.QueryRow(ctx, `
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE id = $1::uuid
		  AND status = 'PENDING'
		  AND (recipient_id = $2::uuid OR lower(email) = lower($3))`,
		invitationID, userID, userEmail,
	)
	inv, err := scanInvitation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Invitation{}, ledger.ErrNotFound
	}
	return inv, err
}

// SetStatus moves the invitation to a terminal state, binding the recipient
// when one is known.
func (Repo) SetStatus(ctx context.Context, db ledger.DB, invitationID string, status domain.InvitationStatus, recipientID *string) error {
	_, err := db.Exec(ctx, `
		UPDATE invitations
		SET status = $2, recipient_id = COALESCE($3::uuid, recipient_id)
		WHERE id = $1::uuid`,
		invitationID, string(status), recipientID,
	)
	return err
}

// DeletePendingFromSender removes a PENDING invitation the sender wants to
// cancel.
func (Repo) DeletePendingFromSender(ctx context.Context, db ledger.DB, invitationID, senderID string) error {
	ct, err := db.Exec(ctx, `
		DELETE FROM invitations
		WHERE id = $1::uuid AND sender_id = $2::uuid AND status = 'PENDING'`,
		invitationID, senderID,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (Repo) HasPendingInvitation(ctx context.Context, db ledger.DB, senderID, email string) (bool, error) {
	var ok bool
	err := db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM invitations
			WHERE sender_id = $1::uuid AND lower(email) = lower($2) AND status = 'PENDING'
		)`,
		senderID, email,
	).Scan(&ok)
	return ok, err
}

func (Repo) ListSent(ctx context.Context, db ledger.DB, senderID string) ([]domain.Invitation, error) {
	return listInvitations(ctx, db, `
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE sender_id = $1::uuid
		ORDER BY created_at DESC`, senderID)
}

// ListReceived returns PENDING invitations addressed to the user.
func (Repo) ListReceived(ctx context.Context, db ledger.DB, userID, userEmail string) ([]domain.Invitation, error) {
	return listInvitations(ctx, db, `
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE status = 'PENDING'
		  AND (recipient_id = $1::uuid OR lower(email) = lower($2))
		ORDER BY created_at DESC`, userID, userEmail)
}

func listInvitations(ctx context.Context, db ledger.DB, sql string, args ...any) ([]domain.Invitation, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

const shareColumns = `id::text, owner_id::text, viewer_id::text, permission, created_at`

func scanShare(row pgx.Row) (domain.DashboardShare, error) {
	var (
		sh         domain.DashboardShare
		permission string
	)
	if err := row.Scan(&sh.ID, &sh.OwnerID, &sh.ViewerID, &permission, &sh.CreatedAt); err != nil {
		return domain.DashboardShare{}, err
	}
	sh.Permission = domain.SharePermission(permission)
	return sh, nil
}

func (Repo) InsertShare(ctx context.Context, db ledger.DB, ownerID, viewerID string, permission domain.SharePermission) (domain.DashboardShare, error) {
	row := db.QueryRow(ctx, `
		INSERT INTO dashboard_shares (owner_id, viewer_id, permission)
		VALUES ($1::uuid, $2::uuid, $3)
		RETURNING `+shareColumns,
		ownerID, viewerID, string(permission),
	)
	return scanShare(row)
}

func (Repo) HasShare(ctx context.Context, db ledger.DB, ownerID, viewerID string) (bool, error) {
	var ok bool
	err := db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM dashboard_shares
			WHERE owner_id = $1::uuid AND viewer_id = $2::uuid
		)`,
		ownerID, viewerID,
	).Scan(&ok)
	return ok, err
}

// DeleteShareForParty deletes the share when the caller is either side of it.
// Owner revoke and viewer leave are the same operation.
func (Repo) DeleteShareForParty(ctx context.Context, db ledger.DB, shareID, userID string) error {
	ct, err := db.Exec(ctx, `
		DELETE FROM dashboard_shares
		WHERE id = $1::uuid AND (owner_id = $2::uuid OR viewer_id = $2::uuid)`,
		shareID, userID,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (Repo) ListSharedWithMe(ctx context.Context, db ledger.DB, viewerID string) ([]domain.DashboardShare, error) {
	return listShares(ctx, db, `
		SELECT `+shareColumns+`
		FROM dashboard_shares
		WHERE viewer_id = $1::uuid
		ORDER BY created_at DESC`, viewerID)
}

func (Repo) ListSharedByMe(ctx context.Context, db ledger.DB, ownerID string) ([]domain.DashboardShare, error) {
	return listShares(ctx, db, `
		SELECT `+shareColumns+`
		FROM dashboard_shares
		WHERE owner_id = $1::uuid
		ORDER BY created_at DESC`, ownerID)
}

func listShares(ctx context.Context, db ledger.DB, sql string, args ...any) ([]domain.DashboardShare, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DashboardShare
	for rows.Next() {
		sh, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

// GetUser loads the caller's user row; invitation addressing needs the email.
func (Repo) GetUser(ctx context.Context, db ledger.DB, userID string) (domain.User, error) {
	var u domain.User
	err := db.QueryRow(ctx, `
		SELECT id::text, email, full_name, created_at
		FROM users
		WHERE id = $1::uuid`,
		userID,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ledger.ErrNotFound
	}
	return u, err
}

// FindUserByEmail returns nil when no user has that email yet.
func (Repo) FindUserByEmail(ctx context.Context, db ledger.DB, email string) (*domain.User, error) {
	var u domain.User
	err := db.QueryRow(ctx, `
		SELECT id::text, email, full_name, created_at
		FROM users
		WHERE lower(email) = lower($1)`,
		email,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
