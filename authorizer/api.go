package authorizer

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/roberto5g/mini-authorizer/authorizer/models"
	"github.com/roberto5g/mini-authorizer/internal/cardnum"
)

// API is the HTTP surface of the authorizer service.
type API struct {
	svc *Service
}

func NewAPI(svc *Service) *API {
	return &API{svc: svc}
}

func (a *API) AppendRoutes(r chi.Router) {
	r.Route("/cards", func(r chi.Router) {
		r.Post("/", a.createCard)
		r.Get("/{cardNumber}/balance", a.getBalance)
	})
	r.Post("/transactions", a.authorize)
}

type createCardRequest struct {
	CardNumber string `json:"card_number"`
	Password   string `json:"password"`
}

type cardResponse struct {
	CardNumber string `json:"card_number"`
	Password   string `json:"password"`
}

type transactionRequest struct {
	CardNumber   string       `json:"card_number"`
	CardPassword string       `json:"card_password"`
	Amount       models.Money `json:"amount"`
}

func (a *API) createCard(w http.ResponseWriter, r *http.Request) {
	req := createCardRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if fieldErrors := validateCreateCard(req); len(fieldErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldErrors)
		return
	}

	card, err := a.svc.CreateCard(r.Context(), req.CardNumber, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrDuplicateCardNumber):
			// conflict responses echo the attempted card
			writeJSON(w, http.StatusUnprocessableEntity, cardResponse{
				CardNumber: req.CardNumber,
				Password:   req.Password,
			})
		case errors.Is(err, models.ErrInvalidCardNumber), errors.Is(err, models.ErrInvalidCredential):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, cardResponse{
		CardNumber: card.Number,
		Password:   req.Password,
	})
}

func (a *API) getBalance(w http.ResponseWriter, r *http.Request) {
	cardNumber := chi.URLParam(r, "cardNumber")

	balance, err := a.svc.GetBalance(r.Context(), cardNumber)
	if err != nil {
		if errors.Is(err, models.ErrCardNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, balance)
}

func (a *API) authorize(w http.ResponseWriter, r *http.Request) {
	req := transactionRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// construction is the validation gate: a malformed request never
	// reaches the orchestrator
	transaction, err := models.NewTransaction(req.CardNumber, req.CardPassword, req.Amount)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := a.svc.Authorize(r.Context(), transaction); err != nil {
		switch {
		case errors.Is(err, models.ErrCardNotFound),
			errors.Is(err, models.ErrInvalidCredential),
			errors.Is(err, models.ErrInsufficientBalance),
			errors.Is(err, models.ErrInvalidAmount):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
	w.Write([]byte("OK"))
}

func validateCreateCard(req createCardRequest) map[string]string {
	fieldErrors := map[string]string{}
	if !cardnum.IsValid(req.CardNumber) {
		fieldErrors["card_number"] = "must contain exactly 16 numeric digits"
	}
	if strings.TrimSpace(req.Password) == "" || len(req.Password) < 4 {
		fieldErrors["password"] = "must contain at least 4 characters"
	}
	return fieldErrors
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
