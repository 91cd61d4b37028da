package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/gofiber/fiber/v2"

	"github.com/realestate-agents/lead_wizard/internal/api"
	"github.com/realestate-agents/lead_wizard/internal/location"
	"github.com/realestate-agents/lead_wizard/internal/pricing"
	"github.com/realestate-agents/lead_wizard/internal/wizard"
)

// Handler exposes wizard sessions over HTTP.
type Handler struct {
	service *Service
}

// NewHandler builds a session HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type response struct {
	ID      string         `json:"id"`
	Error   string         `json:"error,omitempty"`
	Results []api.Location `json:"results,omitempty"`
	wizard.View
}

type createRequest struct {
	Flow string `json:"flow"`
}

type keyRequest struct {
	Key    string `json:"key"`
	Target string `json:"target"`
}

type priceRequest struct {
	Delta *int `json:"delta"`
	Index *int `json:"index"`
}

type otpRequest struct {
	Op    string `json:"op"`
	Index int    `json:"index"`
	Value string `json:"value"`
}

// Create starts a wizard session.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}
	if req.Flow == "" {
		req.Flow = wizard.FlowBuy
	}
	id, view, err := h.service.Create(c.UserContext(), req.Flow)
	if errors.Is(err, wizard.ErrUnknownFlow) {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(response{ID: id, View: view})
}

// Get renders a session.
func (h *Handler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	view, err := h.service.Get(c.UserContext(), id)
	return h.render(c, id, view, err)
}

// Close discards a session and returns a fresh one.
func (h *Handler) Close(c *fiber.Ctx) error {
	id, view, err := h.service.Close(c.UserContext(), c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(response{ID: id, View: view})
}

// UpdateForm applies {field: value} pairs to the form.
func (h *Handler) UpdateForm(c *fiber.Ctx) error {
	var fields map[string]any
	if err := json.Unmarshal(c.Body(), &fields); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	return h.do(c, func(w *wizard.Controller) error {
		for _, name := range names {
			if err := w.Update(name, fields[name]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Next advances the wizard.
func (h *Handler) Next(c *fiber.Ctx) error {
	return h.do(c, func(w *wizard.Controller) error { return w.Next(c.UserContext()) })
}

// Back steps the wizard back.
func (h *Handler) Back(c *fiber.Ctx) error {
	return h.do(c, func(w *wizard.Controller) error {
		w.Back()
		return nil
	})
}

// Key forwards a keyboard event.
func (h *Handler) Key(c *fiber.Ctx) error {
	var req keyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return h.do(c, func(w *wizard.Controller) error {
		return w.HandleKey(c.UserContext(), req.Key, req.Target)
	})
}

// Locations runs a debounced address search. A superseded request answers
// 204 without a body.
func (h *Handler) Locations(c *fiber.Ctx) error {
	id := c.Params("id")
	results, view, err := h.service.Search(c.UserContext(), id, c.Query("query"))
	if errors.Is(err, location.ErrSuperseded) {
		return c.SendStatus(http.StatusNoContent)
	}
	if err != nil {
		return h.render(c, id, view, err)
	}
	return c.Status(http.StatusOK).JSON(response{ID: id, Results: results, View: view})
}

// SelectLocation commits a candidate and advances.
func (h *Handler) SelectLocation(c *fiber.Ctx) error {
	var loc api.Location
	if err := c.BodyParser(&loc); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return h.do(c, func(w *wizard.Controller) error {
		return w.SelectLocation(c.UserContext(), loc)
	})
}

// Price moves or sets the price selection of the current step.
func (h *Handler) Price(c *fiber.Ctx) error {
	var req priceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	field := c.Params("field")
	return h.do(c, func(w *wizard.Controller) error {
		if w.Current().Kind != wizard.KindPrice || w.Current().Field != field {
			return wizard.ErrWrongStep
		}
		switch {
		case req.Index != nil:
			return w.SetPriceIndex(*req.Index)
		case req.Delta != nil:
			return w.AdjustPrice(*req.Delta)
		default:
			return fiber.NewError(http.StatusBadRequest, "delta or index is required")
		}
	})
}

// OTP edits the code entry cells.
func (h *Handler) OTP(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return h.do(c, func(w *wizard.Controller) error {
		switch req.Op {
		case "input":
			return w.OTPInput(req.Index, req.Value)
		case "backspace":
			return w.OTPBackspace(req.Index)
		case "paste":
			_, err := w.OTPPaste(req.Value)
			return err
		default:
			return fiber.NewError(http.StatusBadRequest, "op must be input, backspace or paste")
		}
	})
}

// SendCode sends the verification code from the phone step, or sends a new
// one from the code entry step.
func (h *Handler) SendCode(c *fiber.Ctx) error {
	return h.do(c, func(w *wizard.Controller) error {
		switch w.Current().Kind {
		case wizard.KindPhone:
			return w.Next(c.UserContext())
		case wizard.KindOTP:
			return w.ResendCode(c.UserContext())
		default:
			return wizard.ErrWrongStep
		}
	})
}

// Submit verifies the entered code and posts the lead.
func (h *Handler) Submit(c *fiber.Ctx) error {
	return h.do(c, func(w *wizard.Controller) error { return w.Submit(c.UserContext()) })
}

func (h *Handler) do(c *fiber.Ctx, fn func(w *wizard.Controller) error) error {
	id := c.Params("id")
	view, err := h.service.Do(c.UserContext(), id, fn)
	return h.render(c, id, view, err)
}

func (h *Handler) render(c *fiber.Ctx, id string, view wizard.View, err error) error {
	if err == nil {
		return c.Status(http.StatusOK).JSON(response{ID: id, View: view})
	}
	var fe *fiber.Error
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.As(err, &fe):
		return fe
	case view.Flow == "":
		return err
	}
	return c.Status(statusFor(err)).JSON(response{ID: id, Error: err.Error(), View: view})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, wizard.ErrGuardFailed),
		errors.Is(err, wizard.ErrPhoneRequired),
		errors.Is(err, wizard.ErrPhoneInvalid),
		errors.Is(err, wizard.ErrIncompleteCode),
		errors.Is(err, wizard.ErrNoCode),
		errors.Is(err, wizard.ErrCodeExpired),
		errors.Is(err, wizard.ErrInvalidCode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, wizard.ErrWrongStep),
		errors.Is(err, wizard.ErrBusy),
		errors.Is(err, wizard.ErrFinished):
		return http.StatusConflict
	case errors.Is(err, wizard.ErrUnknownField),
		errors.Is(err, pricing.ErrUnknownPricePoint):
		return http.StatusBadRequest
	case errors.Is(err, wizard.ErrOTPNotSent),
		errors.Is(err, wizard.ErrSubmitFailed):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}
