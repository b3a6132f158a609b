package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/danielagrograos-wq/senior/internal/models"
	"github.com/danielagrograos-wq/senior/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrShareLimitExceeded = errors.New("total share cannot exceed 100%")

type userFinder interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// FamilyShareService splits a booking's cost across invited family members.
// A booking only becomes paid once every non-declined share is settled; that
// promotion runs inside one transaction so concurrent payers cannot both
// trigger it.
type FamilyShareService struct {
	db          *pgxpool.Pool
	shareRepo   *repository.FamilyShareRepository
	bookingRepo *repository.BookingRepository
	userRepo    userFinder
	notifier    Notifier
}

func NewFamilyShareService(
	db *pgxpool.Pool,
	shareRepo *repository.FamilyShareRepository,
	bookingRepo *repository.BookingRepository,
	userRepo userFinder,
	notifier Notifier,
) *FamilyShareService {
	return &FamilyShareService{
		db:          db,
		shareRepo:   shareRepo,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

type InviteShareInput struct {
	BookingID    int64
	Email        string
	SharePercent int
}

func (s *FamilyShareService) Invite(
	ctx context.Context,
	actorID int64,
	input InviteShareInput,
) (*models.FamilyShare, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.SharePercent <= 0 || input.SharePercent > 100 {
		return nil, ErrInvalidInput
	}

	booking, err := s.bookingRepo.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.ClientID != actorID {
		return nil, ErrForbidden
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txShareRepo := repository.NewFamilyShareRepository(tx)

	// Serialize invites per booking so two concurrent invites cannot both
	// pass the 100% check.
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", booking.ID); err != nil {
		return nil, err
	}

	totalShared, err := txShareRepo.SumPercentForBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	if totalShared+input.SharePercent > 100 {
		return nil, ErrShareLimitExceeded
	}

	amountCents := booking.TotalCents * int64(input.SharePercent) / 100

	share, err := txShareRepo.Create(ctx, booking.ID, actorID, email, input.SharePercent, amountCents)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	// The invitee only gets an in-app notification when the email already
	// belongs to an account.
	if invitee, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		s.notifier.Notify(invitee.ID, "family_share_invite",
			"Convite Family Share",
			fmt.Sprintf("%s convidou você para dividir os custos de um cuidado (R$ %.2f)", share.InviterName, float64(amountCents)/100),
			map[string]any{"share_id": share.ID, "booking_id": booking.ID})
	}

	return share, nil
}

// Breakdown lists a booking's shares plus the derived owner remainder.
func (s *FamilyShareService) Breakdown(
	ctx context.Context,
	actorID int64,
	role string,
	bookingID int64,
) (*models.FamilyShareBreakdown, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if role != "admin" && booking.ClientID != actorID {
		return nil, ErrForbidden
	}

	shares, err := s.shareRepo.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	ownerPercent := 100
	for _, share := range shares {
		if share.Status != "declined" {
			ownerPercent -= share.SharePercent
		}
	}

	return &models.FamilyShareBreakdown{
		Shares:            shares,
		OwnerSharePercent: ownerPercent,
		OwnerAmountCents:  booking.TotalCents * int64(ownerPercent) / 100,
		TotalCents:        booking.TotalCents,
	}, nil
}

func (s *FamilyShareService) Accept(ctx context.Context, actorID int64, shareID int64) (*models.FamilyShare, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	share, err := s.shareRepo.GetByID(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(share.InviteeEmail, actor.Email) {
		return nil, ErrForbidden
	}

	accepted, err := s.shareRepo.AcceptIfPending(ctx, shareID, actorID, actor.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	s.notifier.Notify(accepted.InviterID, "family_share_accepted",
		"Convite aceito!",
		fmt.Sprintf("%s aceitou dividir o custo do cuidado", actor.Name),
		map[string]any{"share_id": accepted.ID})

	return accepted, nil
}

func (s *FamilyShareService) Decline(ctx context.Context, actorID int64, shareID int64) (*models.FamilyShare, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	share, err := s.shareRepo.GetByID(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(share.InviteeEmail, actor.Email) {
		return nil, ErrForbidden
	}

	declined, err := s.shareRepo.DeclineIfPending(ctx, shareID, actor.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	return declined, nil
}

// Pay settles the actor's accepted share. When it is the last unpaid share
// the booking flips to paid with escrow held, exactly once.
func (s *FamilyShareService) Pay(ctx context.Context, actorID int64, shareID int64) (*models.FamilyShare, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txShareRepo := repository.NewFamilyShareRepository(tx)
	txBookingRepo := repository.NewBookingRepository(tx)

	share, err := txShareRepo.GetByIDForUpdate(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if share.InviteeID == nil || *share.InviteeID != actorID {
		return nil, ErrForbidden
	}
	if share.Paid {
		return nil, ErrConflict
	}

	paid, err := txShareRepo.MarkPaidIfUnpaid(ctx, shareID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	unpaid, err := txShareRepo.CountUnpaid(ctx, share.BookingID)
	if err != nil {
		return nil, err
	}

	var bookingPaid bool
	if unpaid == 0 {
		if _, err := txBookingRepo.MarkPaidIfUnpaid(ctx, share.BookingID); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		} else if err == nil {
			bookingPaid = true
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if bookingPaid {
		s.notifier.Notify(share.InviterID, "booking_paid",
			"Pagamento completo",
			"Todos os participantes pagaram a sua parte do cuidado",
			map[string]any{"booking_id": share.BookingID})
	}

	return paid, nil
}

// ListInvitations returns open invitations addressed to the actor's email.
func (s *FamilyShareService) ListInvitations(ctx context.Context, actorID int64) ([]models.FamilyShare, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.shareRepo.ListPendingForEmail(ctx, actor.Email)
}
