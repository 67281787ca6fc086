package main

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/samber/lo"

	"github.com/kofiasare/momo-sms-importer/pkg/common"
	"github.com/kofiasare/momo-sms-importer/pkg/database"
	"github.com/kofiasare/momo-sms-importer/pkg/normalizer"
)

type Handler struct {
	store TransactionStore
	index Lookup
}

func NewHandler(store TransactionStore, index Lookup) *Handler {
	return &Handler{
		store: store,
		index: index,
	}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/transactions", h.List).Methods(http.MethodGet)
	r.HandleFunc("/transactions", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/transactions/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/transactions/{id}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/transactions/{id}", h.Delete).Methods(http.MethodDelete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.store.ListTransactions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, lo.Map(transactions,
		func(tx *database.Transaction, _ int) transactionJSON { return toJSON(tx) }))
}

// Get serves point lookups from the in-memory index and only falls back to
// the store when the index has not seen the identifier.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if tx, ok := h.index.Get(id); ok {
		writeJSON(w, http.StatusOK, toJSON(tx))
		return
	}

	tx, err := h.store.GetTransaction(r.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toJSON(tx))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var payload transactionJSON

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON: "+err.Error())
		return
	}

	tx, category, err := fromJSON(payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err = h.store.UpsertTransaction(r.Context(), tx, category); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	created, err := h.store.GetTransaction(r.Context(), tx.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.index.Insert(created)
	writeJSON(w, http.StatusCreated, toJSON(created))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var payload transactionPatch

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON: "+err.Error())
		return
	}

	patch, err := buildPatch(payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.store.UpdateTransaction(r.Context(), id, patch)
	if errors.Is(err, common.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.index.Insert(updated)
	writeJSON(w, http.StatusOK, toJSON(updated))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	err := h.store.DeleteTransaction(r.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.index.Remove(id)
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func fromJSON(payload transactionJSON) (*database.Transaction, database.Category, error) {
	if payload.Amount.IsNegative() {
		return nil, "", errors.New("amount must not be negative")
	}

	if payload.Timestamp == "" {
		return nil, "", errors.New("timestamp is required")
	}

	date, err := parseTimestamp(payload.Timestamp)
	if err != nil {
		return nil, "", errors.Newf("unparsable timestamp %q", payload.Timestamp)
	}

	tx := &database.Transaction{
		ID:              payload.ID,
		TransactionDate: date,
		Amount:          payload.Amount,
		TransactionType: payload.Type,
		Status:          database.StatusCompleted,
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	if payload.Sender != "" {
		phone, phoneErr := normalizer.NormalizePhone(payload.Sender)
		if phoneErr != nil {
			return nil, "", phoneErr
		}
		tx.Sender = &database.User{PhoneNumber: phone}
	}

	if payload.Receiver != "" {
		phone, phoneErr := normalizer.NormalizePhone(payload.Receiver)
		if phoneErr != nil {
			return nil, "", phoneErr
		}
		tx.Receiver = &database.User{PhoneNumber: phone}
	}

	category := database.Category(payload.Type)
	if !lo.Contains(database.Categories(), category) {
		category = database.CategoryOther
	}

	return tx, category, nil
}

func buildPatch(payload transactionPatch) (map[string]any, error) {
	patch := map[string]any{}

	if payload.Amount != nil {
		if payload.Amount.IsNegative() {
			return nil, errors.New("amount must not be negative")
		}
		patch["amount"] = *payload.Amount
	}

	if payload.Type != nil {
		patch["transaction_type"] = *payload.Type
	}

	if payload.Status != nil {
		status := database.TransactionStatus(*payload.Status)
		valid := []database.TransactionStatus{
			database.StatusCompleted, database.StatusPending,
			database.StatusFailed, database.StatusReversed,
		}
		if !lo.Contains(valid, status) {
			return nil, errors.Newf("invalid status %q", *payload.Status)
		}
		patch["status"] = status
	}

	if payload.Timestamp != nil {
		date, err := parseTimestamp(*payload.Timestamp)
		if err != nil {
			return nil, errors.Newf("unparsable timestamp %q", *payload.Timestamp)
		}
		patch["transaction_date"] = date
	}

	for key, value := range map[string]*string{
		"sender_phone":   payload.Sender,
		"receiver_phone": payload.Receiver,
	} {
		if value == nil {
			continue
		}

		phone, err := normalizer.NormalizePhone(*value)
		if err != nil {
			return nil, err
		}
		patch[key] = phone
	}

	if len(patch) == 0 {
		return nil, errors.New("no updatable fields in request")
	}

	return patch, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorJSON{Error: message})
}
