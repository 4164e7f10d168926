package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"dorax/utils"

	"github.com/julienschmidt/httprouter"
)

// Handlers exposes the order-adapter endpoints over HTTP.
type Handlers struct {
	Client *Client
}

func NewHandlers(client *Client) *Handlers {
	return &Handlers{Client: client}
}

// CreateOrder handles POST /api/payment/create-order.
func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	receipt := fmt.Sprintf("booking_%d", time.Now().UnixMilli())
	order, err := h.Client.CreateOrder(r.Context(), body.Amount, receipt)
	if err != nil {
		if errors.Is(err, ErrInvalidAmount) {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid amount")
			return
		}
		// Upstream detail stays in the server log; clients get a generic error.
		log.Printf("[payment] create order failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create order")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":  true,
		"orderId":  order.ID,
		"amount":   order.Amount,
		"currency": order.Currency,
		"key_id":   h.Client.KeyID(),
	})
}

// GetPaymentDetails handles GET /api/payment/:paymentId.
func (h *Handlers) GetPaymentDetails(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	paymentID := ps.ByName("paymentId")
	if paymentID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Payment ID is required")
		return
	}

	p, err := h.Client.FetchPayment(r.Context(), paymentID)
	if err != nil {
		log.Printf("[payment] fetch payment %s failed: %v", paymentID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch payment details")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"payment": p,
	})
}
