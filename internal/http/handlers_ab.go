package httpx

import (
	"errors"
	"net/http"

	domainauth "github.com/deskops/console-api/internal/domain/auth"
	"github.com/deskops/console-api/internal/service"
)

// AddressBookHandlers provides HTTP handlers for the legacy single-blob
// address book. Reads and writes go through the core's write-back cache;
// nothing here touches the store directly.
type AddressBookHandlers struct {
	Core *service.Core
}

// AbGetReply is the address-book fetch response. The blob is opaque to the
// server; an empty book is returned as the literal "{}" so old clients can
// always parse the data field.
type AbGetReply struct {
	Error     *bool   `json:"error,omitempty"`
	UpdatedAt *string `json:"updated_at,omitempty"`
	Data      string  `json:"data"`
}

// AbWriteRequest carries a full replacement of the caller's address book.
type AbWriteRequest struct {
	Data string `json:"data"`
}

// Get returns the caller's address book.
// GET /api/ab and POST /api/ab/get.
func (h *AddressBookHandlers) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentityFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	book := h.Core.ReadAddressBook(r.Context(), identity.UserID)
	data := book.AB
	if data == "" {
		data = "{}"
	}
	WriteJSON(w, http.StatusOK, AbGetReply{Data: data})
}

// Put replaces the caller's address book. The new value lands in the cache
// and is persisted by a later maintenance flush, so the response never waits
// on the database.
// POST /api/ab.
func (h *AddressBookHandlers) Put(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentityFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	var req AbWriteRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	h.Core.WriteAddressBook(identity.UserID, domainauth.AddressBook{AB: req.Data})
	WriteJSON(w, http.StatusOK, map[string]string{"data": "ok"})
}
