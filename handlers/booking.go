package handlers

import (
	"net/http"

	"companionhub/middleware"
	"companionhub/models"
	"companionhub/services/booking"
	"companionhub/services/payment"
	"companionhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	BookingService booking.BookingService
	Logger         *zap.Logger
}

func NewBookingHandler(svc booking.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{BookingService: svc, Logger: logger}
}

// Create handles POST /api/bookings.
func (h *BookingHandler) Create(c *gin.Context) {
	var in booking.CreateInput
	if err := utils.BindJSON(c, &in); err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	b, err := h.BookingService.Create(c.Request.Context(), middleware.CurrentUser(c), in)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, "Booking created successfully", b)
}

// List handles GET /api/bookings.
func (h *BookingHandler) List(c *gin.Context) {
	q, err := bindListQuery(c)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	page, err := h.BookingService.ListForUser(c.Request.Context(), middleware.CurrentUser(c), booking.ListQuery{
		Page:   q.Page,
		Limit:  q.Limit,
		Status: models.BookingStatus(q.Status),
		Scope:  q.Scope,
	})
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", page)
}

// Get handles GET /api/bookings/:id.
func (h *BookingHandler) Get(c *gin.Context) {
	b, err := h.BookingService.Get(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", b)
}

// UpdateDetails handles PATCH /api/bookings/:id.
func (h *BookingHandler) UpdateDetails(c *gin.Context) {
	var in booking.DetailsUpdate
	if err := utils.BindStrictJSON(c, &in); err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	b, err := h.BookingService.UpdateDetails(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), in)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Booking updated", b)
}

// UpdateStatus handles PATCH /api/bookings/:id/status.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var in booking.TransitionInput
	if err := utils.BindJSON(c, &in); err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	b, err := h.BookingService.Transition(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), in)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Booking status updated", b)
}

// Rate handles POST /api/bookings/:id/rating.
func (h *BookingHandler) Rate(c *gin.Context) {
	var in booking.RatingInput
	if err := utils.BindJSON(c, &in); err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	b, err := h.BookingService.Rate(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), in)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Rating submitted", b)
}

type PaymentHandler struct {
	PaymentService payment.PaymentService
	Logger         *zap.Logger
}

func NewPaymentHandler(svc payment.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{PaymentService: svc, Logger: logger}
}

// Initiate handles POST /api/bookings/:id/payment.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	var in payment.InitiateInput
	if err := utils.BindJSON(c, &in); err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	checkout, err := h.PaymentService.Initiate(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), in)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, "Payment initiated", checkout)
}

// Confirm handles POST /api/payments/:id/confirm.
func (h *PaymentHandler) Confirm(c *gin.Context) {
	p, err := h.PaymentService.Confirm(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Payment "+string(p.Status), p)
}

// Refund handles POST /api/bookings/:id/refund.
func (h *PaymentHandler) Refund(c *gin.Context) {
	b, err := h.PaymentService.Refund(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Booking refunded", b)
}
