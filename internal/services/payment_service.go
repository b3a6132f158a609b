package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/danielagrograos-wq/senior/internal/models"
	"github.com/danielagrograos-wq/senior/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrAlreadyPaid = errors.New("booking already paid")

// PaymentService runs the checkout flow against a mock payment processor:
// intents are minted locally and always confirm. The escrow ledger on the
// booking row is real, only the card charge is simulated.
type PaymentService struct {
	db            *pgxpool.Pool
	paymentRepo   *repository.PaymentRepository
	payoutRepo    *repository.PayoutRepository
	bookingRepo   *repository.BookingRepository
	caregiverRepo caregiverProfileReader
	publicKey     string
	secretKey     string
	notifier      Notifier
}

func NewPaymentService(
	db *pgxpool.Pool,
	paymentRepo *repository.PaymentRepository,
	payoutRepo *repository.PayoutRepository,
	bookingRepo *repository.BookingRepository,
	caregiverRepo caregiverProfileReader,
	publicKey, secretKey string,
	notifier Notifier,
) *PaymentService {
	return &PaymentService{
		db:            db,
		paymentRepo:   paymentRepo,
		payoutRepo:    payoutRepo,
		bookingRepo:   bookingRepo,
		caregiverRepo: caregiverRepo,
		publicKey:     publicKey,
		secretKey:     secretKey,
		notifier:      notifier,
	}
}

type PaymentIntent struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
	AmountCents     int64  `json:"amount_cents"`
	PublishableKey  string `json:"publishable_key"`
	LiveMode        bool   `json:"livemode"`
}

// liveMode mirrors how Stripe keys encode the environment: anything that is
// not an sk_test_ key is treated as live.
func (s *PaymentService) liveMode() bool {
	return s.secretKey != "" && !strings.HasPrefix(s.secretKey, "sk_test_")
}

func (s *PaymentService) CreateIntent(ctx context.Context, actorID int64, bookingID int64) (*PaymentIntent, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.ClientID != actorID {
		return nil, ErrForbidden
	}
	if booking.Paid {
		return nil, ErrAlreadyPaid
	}

	intentID := "pi_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
	clientSecret := fmt.Sprintf("%s_secret_%s", intentID, strings.ReplaceAll(uuid.NewString(), "-", "")[:12])

	if _, err := s.paymentRepo.Create(ctx, intentID, booking.ID, actorID, booking.TotalCents, "brl"); err != nil {
		return nil, err
	}

	return &PaymentIntent{
		PaymentIntentID: intentID,
		ClientSecret:    clientSecret,
		AmountCents:     booking.TotalCents,
		PublishableKey:  s.publicKey,
		LiveMode:        s.liveMode(),
	}, nil
}

// Confirm settles the intent and holds the money in escrow on the booking.
func (s *PaymentService) Confirm(ctx context.Context, actorID int64, bookingID int64, intentID string) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.ClientID != actorID {
		return nil, ErrForbidden
	}

	payment, err := s.paymentRepo.GetByIntentID(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if payment.BookingID != booking.ID {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txPaymentRepo := repository.NewPaymentRepository(tx)
	txBookingRepo := repository.NewBookingRepository(tx)

	if _, err := txPaymentRepo.ConfirmIfPending(ctx, intentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConflict
		}
		return nil, err
	}

	updated, err := txBookingRepo.MarkPaidIfUnpaid(ctx, booking.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlreadyPaid
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.notifier.Notify(booking.CaregiverUserID, "payment_received",
		"Pagamento recebido!",
		fmt.Sprintf("O pagamento para o atendimento de %s foi confirmado", booking.ElderName),
		map[string]any{"booking_id": booking.ID})

	return updated, nil
}

type EscrowRelease struct {
	PayoutCents int64 `json:"payout_cents"`
}

// ReleaseEscrow pays the caregiver their price (the platform keeps the fee)
// once the booking is completed. The conditional update makes a double
// release impossible.
func (s *PaymentService) ReleaseEscrow(ctx context.Context, actorID int64, role string, bookingID int64) (*EscrowRelease, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if role != "admin" && booking.ClientID != actorID {
		return nil, ErrForbidden
	}
	if booking.Status != models.BookingCompleted {
		return nil, ErrInvalidStateTransition
	}
	if booking.EscrowStatus != models.EscrowHeld {
		return nil, ErrInvalidStateTransition
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txBookingRepo := repository.NewBookingRepository(tx)
	txPayoutRepo := repository.NewPayoutRepository(tx)

	if _, err := txBookingRepo.ReleaseEscrowIfHeld(ctx, booking.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	if _, err := txPayoutRepo.Create(ctx, booking.ID, booking.CaregiverID, booking.PriceCents); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.notifier.Notify(booking.CaregiverUserID, "payout_completed",
		"Pagamento liberado!",
		fmt.Sprintf("R$ %.2f foi transferido para sua conta", float64(booking.PriceCents)/100),
		map[string]any{"booking_id": booking.ID, "amount_cents": booking.PriceCents})

	return &EscrowRelease{PayoutCents: booking.PriceCents}, nil
}

// History returns payments for clients and payouts for caregivers.
func (s *PaymentService) History(ctx context.Context, actorID int64, role string) (any, error) {
	switch role {
	case "client":
		return s.paymentRepo.ListByClient(ctx, actorID)
	case "caregiver":
		profile, err := s.caregiverRepo.GetByUserID(ctx, actorID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return []models.Payout{}, nil
			}
			return nil, err
		}
		return s.payoutRepo.ListByCaregiver(ctx, profile.ID)
	default:
		return nil, ErrForbidden
	}
}
