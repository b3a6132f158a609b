package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/danielagrograos-wq/senior/internal/models"
	"github.com/danielagrograos-wq/senior/internal/repository"
	"github.com/jackc/pgx/v5"
)

var ErrContactInfoBlocked = errors.New("external contact info blocked until booking confirmation")

// contactInfoPatterns catch attempts to move the conversation off-platform
// before a booking is confirmed: Brazilian phone numbers, email addresses
// and the usual messenger names.
var contactInfoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{2}[\s-]?\d{4,5}[\s-]?\d{4}`),
	regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
	regexp.MustCompile(`(?i)whatsapp`),
	regexp.MustCompile(`(?i)telegram`),
	regexp.MustCompile(`(?i)instagram`),
}

var validMessageTypes = map[string]struct{}{
	"text":        {},
	"image":       {},
	"care_update": {},
	"system":      {},
}

type ChatService struct {
	chatRepo    *repository.ChatRepository
	bookingRepo bookingReader
	userRepo    userReader
	notifier    Notifier
	realtime    RealtimeSender
}

func NewChatService(
	chatRepo *repository.ChatRepository,
	bookingRepo bookingReader,
	userRepo userReader,
	notifier Notifier,
	realtime RealtimeSender,
) *ChatService {
	return &ChatService{
		chatRepo:    chatRepo,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		realtime:    realtime,
	}
}

// OpenRoom returns the room between the actor and the other participant,
// creating it on first contact. The client/caregiver orientation of the room
// follows the actor's role.
func (s *ChatService) OpenRoom(
	ctx context.Context,
	actorID int64,
	role string,
	participantID int64,
	bookingID *int64,
) (*models.ChatRoom, error) {
	if participantID <= 0 || participantID == actorID {
		return nil, ErrInvalidInput
	}
	if _, err := s.userRepo.GetByID(ctx, participantID); err != nil {
		return nil, err
	}

	clientID, caregiverUserID := actorID, participantID
	if role == "caregiver" {
		clientID, caregiverUserID = participantID, actorID
	}

	return s.chatRepo.GetOrCreateRoom(ctx, clientID, caregiverUserID, bookingID)
}

func (s *ChatService) ListRooms(ctx context.Context, actorID int64) ([]models.ChatRoomSummary, error) {
	return s.chatRepo.ListRoomsForUser(ctx, actorID)
}

// ListMessages returns a room's history oldest-first and marks the other
// side's messages as read.
func (s *ChatService) ListMessages(
	ctx context.Context,
	actorID int64,
	roomID int64,
	limit int,
) ([]models.ChatMessage, error) {
	room, err := s.chatRepo.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.ClientID != actorID && room.CaregiverID != actorID {
		return nil, ErrForbidden
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	messages, err := s.chatRepo.ListMessages(ctx, roomID, limit)
	if err != nil {
		return nil, err
	}
	if err := s.chatRepo.MarkMessagesRead(ctx, roomID, actorID); err != nil {
		return nil, err
	}
	return messages, nil
}

type SendMessageInput struct {
	RoomID      int64
	Message     string
	MessageType string
}

func (s *ChatService) SendMessage(
	ctx context.Context,
	actorID int64,
	input SendMessageInput,
) (*models.ChatMessage, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, ErrInvalidInput
	}
	if input.MessageType == "" {
		input.MessageType = "text"
	}
	if _, ok := validMessageTypes[input.MessageType]; !ok {
		return nil, ErrInvalidInput
	}

	room, err := s.chatRepo.GetRoomByID(ctx, input.RoomID)
	if err != nil {
		return nil, err
	}
	if room.ClientID != actorID && room.CaregiverID != actorID {
		return nil, ErrForbidden
	}

	if err := s.checkContactInfo(ctx, room, input.Message); err != nil {
		return nil, err
	}

	sender, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	message, err := s.chatRepo.CreateMessage(ctx, room.ID, actorID, input.Message, input.MessageType)
	if err != nil {
		return nil, err
	}
	message.SenderName = sender.Name

	if err := s.chatRepo.TouchRoom(ctx, room.ID, truncate(input.Message, 50)); err != nil {
		return nil, err
	}

	recipientID := room.ClientID
	if recipientID == actorID {
		recipientID = room.CaregiverID
	}

	if s.realtime != nil {
		s.realtime.SendToUser(recipientID, message)
	}

	preview := truncate(input.Message, 50)
	if len([]rune(input.Message)) > 50 {
		preview += "..."
	}
	s.notifier.Notify(recipientID, "chat_message",
		fmt.Sprintf("Nova mensagem de %s", sender.Name),
		preview,
		map[string]any{"room_id": room.ID, "message_id": message.ID})

	return message, nil
}

// checkContactInfo blocks phone numbers, emails and messenger handles while
// the room's booking is still pending, so the match cannot be taken
// off-platform before the marketplace is committed.
func (s *ChatService) checkContactInfo(ctx context.Context, room *models.ChatRoom, message string) error {
	if room.BookingID == nil {
		return nil
	}
	booking, err := s.bookingRepo.GetByID(ctx, *room.BookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	if booking.Status != models.BookingPending {
		return nil
	}
	if ContainsContactInfo(message) {
		return ErrContactInfoBlocked
	}
	return nil
}

// ContainsContactInfo reports whether the message carries phone, email or
// messenger references.
func ContainsContactInfo(message string) bool {
	for _, pattern := range contactInfoPatterns {
		if pattern.MatchString(message) {
			return true
		}
	}
	return false
}
