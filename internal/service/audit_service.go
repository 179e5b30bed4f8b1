package service

import (
	"context"
	"encoding/json"
	"log"

	"storeadmin/internal/model"
	"storeadmin/internal/repository"

	"github.com/google/uuid"
)

type AuditLogResponse struct {
	ID         string `json:"id"`
	AdminID    string `json:"admin_id"`
	AdminEmail string `json:"admin_email"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

// AuditService exposes the persisted audit trail and records new entries.
// Recording is best-effort: a failed append never fails the guarded operation.
type AuditService interface {
	GetAuditLogs(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error)
	Record(ctx context.Context, actorID string, action, entityID, entityName string, details interface{})
}

type auditService struct {
	repo repository.AuditRepository
	hub  interface{ GetBroadcast() chan []byte } // optional websocket hub
}

// NewAuditService creates a new AuditService instance. hub may be nil.
func NewAuditService(repo repository.AuditRepository, hub interface{ GetBroadcast() chan []byte }) AuditService {
	return &auditService{repo: repo, hub: hub}
}

// GetAuditLogs retrieves strictly paginated records with admin rows pre-loaded
func (s *auditService) GetAuditLogs(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error) {
	logs, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		adminEmail := "System"
		adminID := ""
		if l.Admin != nil {
			adminEmail = l.Admin.Email
		}
		if l.AdminID != nil {
			adminID = l.AdminID.String()
		}

		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			AdminID:    adminID,
			AdminEmail: adminEmail,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return res, total, nil
}

// Record appends an audit entry and fans it out to connected admin clients.
// Failures are logged and swallowed so the primary operation never aborts.
func (s *auditService) Record(ctx context.Context, actorID string, action, entityID, entityName string, details interface{}) {
	detailsJSON, _ := json.Marshal(details)

	record := model.AuditLog{
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(detailsJSON),
	}

	if actorID != "" {
		parsed, err := uuid.Parse(actorID)
		if err == nil {
			record.AdminID = &parsed
		}
	}

	if err := s.repo.Append(ctx, &record); err != nil {
		log.Printf("audit append failed (action=%s entity=%s): %v", action, entityID, err)
		return
	}

	if s.hub != nil {
		payload, err := json.Marshal(record)
		if err != nil {
			return
		}
		// Non-blocking: a stalled hub must not hold up the request
		select {
		case s.hub.GetBroadcast() <- payload:
		default:
		}
	}
}
