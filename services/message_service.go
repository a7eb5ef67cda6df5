package services

import (
	"context"
	"errors"
	"strings"

	"supply-service/models"
	"supply-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MessageService manages the per-request conversation threads.
type MessageService interface {
	Send(ctx context.Context, requestID, authorID uuid.UUID, body string) (*models.SupplyRequestMessage, *ServiceError)
	List(ctx context.Context, requestID uuid.UUID) ([]models.SupplyRequestMessage, *ServiceError)
	MarkRead(ctx context.Context, requestID, readerID uuid.UUID) (int64, *ServiceError)
	// CleanupTerminal bulk-deletes the thread of a terminal request. This
	// is a maintenance operation, not an automatic trigger.
	CleanupTerminal(ctx context.Context, requestID uuid.UUID) (int64, *ServiceError)
}

type messageServiceImpl struct {
	messages repository.MessageRepository
	requests repository.SupplyRequestRepository
	logger   *zap.Logger
}

// NewMessageService creates a new MessageService.
func NewMessageService(messages repository.MessageRepository, requests repository.SupplyRequestRepository, logger *zap.Logger) MessageService {
	return &messageServiceImpl{messages: messages, requests: requests, logger: logger}
}

func (s *messageServiceImpl) Send(ctx context.Context, requestID, authorID uuid.UUID, body string) (*models.SupplyRequestMessage, *ServiceError) {
	if strings.TrimSpace(body) == "" {
		return nil, validationError("message body is required")
	}
	if _, svcErr := s.loadRequest(ctx, requestID); svcErr != nil {
		return nil, svcErr
	}

	msg := &models.SupplyRequestMessage{
		SupplyRequestID: requestID,
		AuthorID:        authorID,
		Body:            body,
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		s.logger.Error("failed to append message", zap.String("request_id", requestID.String()), zap.Error(err))
		return nil, internalError("Failed to send message")
	}
	return msg, nil
}

func (s *messageServiceImpl) List(ctx context.Context, requestID uuid.UUID) ([]models.SupplyRequestMessage, *ServiceError) {
	if _, svcErr := s.loadRequest(ctx, requestID); svcErr != nil {
		return nil, svcErr
	}
	msgs, err := s.messages.ListByRequest(ctx, requestID)
	if err != nil {
		s.logger.Error("failed to list messages", zap.Error(err))
		return nil, internalError("Failed to fetch messages")
	}
	return msgs, nil
}

func (s *messageServiceImpl) MarkRead(ctx context.Context, requestID, readerID uuid.UUID) (int64, *ServiceError) {
	if _, svcErr := s.loadRequest(ctx, requestID); svcErr != nil {
		return 0, svcErr
	}
	flipped, err := s.messages.MarkRead(ctx, requestID, readerID)
	if err != nil {
		s.logger.Error("failed to mark messages read", zap.Error(err))
		return 0, internalError("Failed to mark messages read")
	}
	return flipped, nil
}

func (s *messageServiceImpl) CleanupTerminal(ctx context.Context, requestID uuid.UUID) (int64, *ServiceError) {
	request, svcErr := s.loadRequest(ctx, requestID)
	if svcErr != nil {
		return 0, svcErr
	}
	if !request.IsTerminal() {
		return 0, invalidStateError(request.Status,
			models.StatusFulfilled, models.StatusRejected, models.StatusCancelled)
	}
	deleted, err := s.messages.DeleteByRequest(ctx, requestID)
	if err != nil {
		s.logger.Error("failed to delete thread", zap.String("request_id", requestID.String()), zap.Error(err))
		return 0, internalError("Failed to delete messages")
	}
	return deleted, nil
}

func (s *messageServiceImpl) loadRequest(ctx context.Context, requestID uuid.UUID) (*models.SupplyRequest, *ServiceError) {
	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("Supply request")
		}
		return nil, internalError("Failed to load supply request")
	}
	return request, nil
}
