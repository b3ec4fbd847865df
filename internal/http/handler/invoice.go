package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"etasync/internal/service"
)

// ListInvoices lists stored invoices with limit & offset and optional
// receiverId, startDate and endDate filters on the issue date.
func ListInvoices(svc service.InvoiceService, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}
		from, err := parseDate(c.Query("startDate"), loc)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_START_DATE", "invalid startDate")
		}
		to, err := parseDate(c.Query("endDate"), loc)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_END_DATE", "invalid endDate")
		}

		res, err := svc.List(c.UserContext(), service.InvoiceQuery{
			ReceiverID: c.Query("receiverId"),
			From:       from,
			To:         to,
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			requestLog(c).WithError(err).Error("list invoices failed")
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetInvoice returns one stored invoice with its full document.
func GetInvoice(svc service.InvoiceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		inv, err := svc.Get(c.UserContext(), c.Params("uuid"))
		if err != nil {
			return invoiceError(c, err)
		}
		return c.JSON(inv)
	}
}

// GetInvoiceRaw streams the archived raw payload, or with ?link=true answers
// with a presigned download URL.
func GetInvoiceRaw(svc service.InvoiceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("uuid")

		if c.QueryBool("link") {
			u, err := svc.RawLink(c.UserContext(), id)
			if err != nil {
				return invoiceError(c, err)
			}
			return c.JSON(fiber.Map{"url": u})
		}

		rc, info, err := svc.OpenRaw(c.UserContext(), id)
		if err != nil {
			return invoiceError(c, err)
		}
		ct := info.ContentType
		if ct == "" {
			ct = fiber.MIMEApplicationJSON
		}
		c.Set(fiber.HeaderContentType, ct)
		size := -1
		if info.Size > 0 {
			size = int(info.Size)
		}
		// fasthttp closes rc once the body is written.
		return c.SendStream(rc, size)
	}
}

func invoiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "uuid is required")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "invoice not found")
	case errors.Is(err, service.ErrNotArchived):
		return writeError(c, fiber.StatusNotFound, "NOT_ARCHIVED", "invoice has no archived raw document")
	case errors.Is(err, service.ErrArchiveDisabled):
		return writeError(c, fiber.StatusNotImplemented, "ARCHIVE_DISABLED", "raw document archive is not configured")
	default:
		requestLog(c).WithError(err).Error("invoice lookup failed")
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
