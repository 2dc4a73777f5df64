package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	paymentdomain "github.com/smallbiznis/rosterly/internal/payment/domain"
)

type recordPaymentRequest struct {
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	PaymentType   string `json:"payment_type"`
	Notes         string `json:"notes"`
}

func (s *Server) RecordPayment(c *gin.Context) {
	registrationID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.Pay(c.Request.Context(), registrationID, paymentdomain.PayRequest{
		Amount:        req.Amount,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		PaymentType:   paymentdomain.Type(strings.TrimSpace(req.PaymentType)),
		Notes:         req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type redeemCreditRequest struct {
	CreditID string `json:"credit_id"`
	Amount   int64  `json:"amount"`
}

func (s *Server) RedeemCredit(c *gin.Context) {
	registrationID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req redeemCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	creditID, err := parseID(req.CreditID, "credit_id", true)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.paymentSvc.RedeemCredit(c.Request.Context(), registrationID, creditID, req.Amount)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type refundPaymentRequest struct {
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes"`
	Online        bool   `json:"online"`
	MarkCancelled bool   `json:"mark_cancelled"`
}

func (s *Server) RefundPayment(c *gin.Context) {
	paymentID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req refundPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.Refund(c.Request.Context(), paymentID, paymentdomain.RefundRequest{
		Amount:        req.Amount,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		Notes:         req.Notes,
		Online:        req.Online,
		MarkCancelled: req.MarkCancelled,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type creditBackRequest struct {
	Amount int64  `json:"amount"`
	Notes  string `json:"notes"`
}

func (s *Server) CreditBackPayment(c *gin.Context) {
	paymentID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req creditBackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.CreditBack(c.Request.Context(), paymentID, paymentdomain.CreditBackRequest{
		Amount: req.Amount,
		Notes:  req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type transferPaymentRequest struct {
	ToRegistrationID string `json:"to_registration_id"`
	Amount           int64  `json:"amount"`
	Notes            string `json:"notes"`
}

func (s *Server) TransferPayment(c *gin.Context) {
	paymentID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req transferPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	toRegistrationID, err := parseID(req.ToRegistrationID, "to_registration_id", true)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.paymentSvc.Transfer(c.Request.Context(), paymentID, paymentdomain.TransferRequest{
		ToRegistrationID: toRegistrationID,
		Amount:           req.Amount,
		Notes:            req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type gatewayReturnRequest struct {
	Success         bool                   `json:"success"`
	OrderID         string                 `json:"order_id"`
	TransactionID   string                 `json:"transaction_id"`
	Amount          int64                  `json:"amount"`
	RegistrationIDs []string               `json:"registration_ids"`
	Payload         map[string]interface{} `json:"payload"`
}

func (s *Server) HandleGatewayReturn(c *gin.Context) {
	provider := strings.ToLower(strings.TrimSpace(c.Param("provider")))
	if provider == "" {
		AbortWithError(c, newValidationError("provider", "invalid_provider", "missing provider"))
		return
	}

	var req gatewayReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	registrationIDs := make([]snowflake.ID, 0, len(req.RegistrationIDs))
	for _, raw := range req.RegistrationIDs {
		id, err := parseID(raw, "registration_ids", true)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		registrationIDs = append(registrationIDs, id)
	}

	resp, err := s.paymentSvc.ProcessGatewayReturn(c.Request.Context(), paymentdomain.GatewayReturn{
		Success:         req.Success,
		Provider:        provider,
		OrderID:         req.OrderID,
		TransactionID:   req.TransactionID,
		Amount:          req.Amount,
		RegistrationIDs: registrationIDs,
		Payload:         req.Payload,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func parseID(raw, field string, required bool) (snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if required {
			return 0, newValidationError(field, "invalid_"+field, "missing identifier")
		}
		return 0, nil
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, newValidationError(field, "invalid_"+field, "invalid identifier")
	}
	return id, nil
}
