package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/exhibit-hub/booking-api/internal/core/domain"
	"github.com/exhibit-hub/booking-api/internal/core/ports"
)

// BookingHandler handles HTTP requests for the booking ledger.
type BookingHandler struct {
	service ports.BookingService
}

func NewBookingHandler(service ports.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// Create handles POST /bookings.
//
// @Summary      Book tickets
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        Idempotency-Key  header    string          false  "Replays the original booking when reused"
// @Param        body             body      bookingRequest  true   "Booking details; ticketType, visitDate, totalPrice and quantity are accepted as aliases"
// @Success      201              {object}  bookingResponse
// @Success      200              {object}  bookingResponse  "Idempotent replay"
// @Failure      400              {object}  map[string]string
// @Failure      401              {object}  map[string]string
// @Failure      500              {object}  map[string]string
// @Router       /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}

	var req bookingRequest
	if err := c.Bind(&req); err != nil {
		return invalidInput("invalid payload")
	}
	in, err := req.toCreateInput(c.Request().Header.Get("Idempotency-Key"))
	if err != nil {
		return err
	}

	result, err := h.service.Create(c.Request().Context(), user, in)
	if err != nil {
		return err
	}

	if result.Replayed {
		return c.JSON(http.StatusOK, bookingResponse{Message: "Booking already created", Booking: result.Booking})
	}
	return c.JSON(http.StatusCreated, bookingResponse{Message: "Booking created", Booking: result.Booking})
}

// List handles GET /bookings.
//
// @Summary      List my bookings
// @Tags         bookings
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  bookingListResponse
// @Failure      401  {object}  map[string]string
// @Router       /bookings [get]
func (h *BookingHandler) List(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}

	items, err := h.service.ListForOwner(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookingListResponse{Bookings: nonNilBookings(items)})
}

// Update handles PUT /bookings/:id.
//
// @Summary      Update a booking
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      string          true  "Booking id"
// @Param        body  body      bookingRequest  true  "Fields to change"
// @Success      200   {object}  bookingResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /bookings/{id} [put]
func (h *BookingHandler) Update(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}

	var req bookingRequest
	if err := c.Bind(&req); err != nil {
		return invalidInput("invalid payload")
	}
	in, err := req.toUpdateInput()
	if err != nil {
		return err
	}

	booking, err := h.service.Update(c.Request().Context(), user, c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookingResponse{Message: "Booking updated", Booking: booking})
}

// Delete handles DELETE /bookings/:id.
//
// @Summary      Delete a booking
// @Tags         bookings
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "Booking id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /bookings/{id} [delete]
func (h *BookingHandler) Delete(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), user, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Booking deleted"})
}

// ListAll handles GET /admin/bookings.
//
// @Summary      List all bookings
// @Tags         admin
// @Produce      json
// @Security     CookieAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Page size (default 50, max 100)"
// @Success      200    {object}  ownedBookingPageResponse
// @Failure      401    {object}  map[string]string
// @Failure      403    {object}  map[string]string
// @Router       /admin/bookings [get]
func (h *BookingHandler) ListAll(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	page, err := pageParams(c)
	if err != nil {
		return err
	}

	out, err := h.service.ListAll(c.Request().Context(), user, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ownedBookingPageResponse{
		Bookings: withOwners(out.Items, out.Owners),
		Total:    out.Total,
		Page:     out.Page,
		Limit:    out.Limit,
	})
}

// TicketTypes handles GET /ticket-types.
//
// @Summary      Ticket catalog
// @Tags         bookings
// @Produce      json
// @Success      200  {array}  domain.TicketType
// @Router       /ticket-types [get]
func (h *BookingHandler) TicketTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.TicketTypes)
}
