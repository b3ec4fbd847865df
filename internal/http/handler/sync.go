package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"etasync/internal/eta"
	"etasync/internal/http/middleware"
	"etasync/internal/model"
	"etasync/internal/service"
)

type syncRequest struct {
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	ReceiverID string `json:"receiverId"`
}

type syncResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	*model.SyncStats
}

// interruptedResponse carries whatever a cancelled run managed to do.
type interruptedResponse struct {
	errorPayload
	Stats *model.SyncStats `json:"stats,omitempty"`
}

// SyncInvoices runs one synchronization pass and answers with its statistics.
// The body is optional; missing dates default to the last 30 days.
func SyncInvoices(svc service.InvoiceSyncService, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body syncRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
			}
		}

		start, err := parseDate(body.StartDate, loc)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_START_DATE", "invalid startDate")
		}
		end, err := parseDate(body.EndDate, loc)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_END_DATE", "invalid endDate")
		}

		stats, err := svc.Sync(c.UserContext(), service.SyncRequest{
			StartDate:  start,
			EndDate:    end,
			ReceiverID: body.ReceiverID,
		})
		switch {
		case err == nil:
		case errors.Is(err, service.ErrInvalidRange):
			return writeError(c, fiber.StatusBadRequest, "INVALID_RANGE", "startDate must be before endDate")
		case errors.Is(err, service.ErrSyncInProgress):
			return writeError(c, fiber.StatusConflict, "SYNC_IN_PROGRESS", "a sync for this filter is already running")
		case errors.Is(err, eta.ErrAuthentication):
			return writeError(c, fiber.StatusBadGateway, "ETA_AUTH_FAILED", "tax authority authentication failed")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			entry := requestLog(c).WithError(err)
			if stats != nil {
				entry = entry.WithFields(logrus.Fields{
					"run_id":        stats.RunID,
					"total_fetched": stats.TotalFetched,
					"total_valid":   stats.TotalValid,
				})
			}
			entry.Warn("eta sync interrupted")
			return c.Status(fiber.StatusServiceUnavailable).JSON(interruptedResponse{
				errorPayload: errorPayload{
					RequestID: middleware.RequestIDFrom(c),
					Error:     errorEnvelope{Code: "SYNC_INTERRUPTED", Message: "sync interrupted before completion"},
				},
				Stats: stats,
			})
		default:
			requestLog(c).WithError(err).Error("eta sync failed")
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		return c.JSON(syncResponse{
			Success:   true,
			Message:   "Invoice fetch completed",
			SyncStats: stats,
		})
	}
}
