package relay

import (
	"errors"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/n-chekan/ialla-api/fault"
	"github.com/n-chekan/ialla-api/providers"
	"github.com/n-chekan/ialla-api/providers/email"
)

type emailRequest struct {
	EmailType email.Type     `json:"emailType"`
	To        string         `json:"to"`
	Data      map[string]any `json:"data,omitempty"`
}

var errEmailNotConfigured = errors.New("email provider not configured")

// handleEmail sends one transactional email. Accessible with a user
// token or the static service key, since backend jobs send mail too.
// Sends are never cached or de-duplicated: two identical requests are
// two emails.
func (s *Server) handleEmail(w http.ResponseWriter, r *http.Request) {
	c := s.begin(r, email.ProviderName)

	identity, err := s.authenticate(r, s.emailAuth)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	var req emailRequest
	if err := decodeValid(r, emailValidator, &req); err != nil {
		c.fail(w, r, err)
		return
	}
	c.describe(fmt.Sprintf("auth=%s type=%s", identity.Method, req.EmailType))

	if _, err := mail.ParseAddress(req.To); err != nil {
		c.fail(w, r, fault.Validation("recipient address is not valid", "to"))
		return
	}
	if missing := req.EmailType.MissingData(req.Data); len(missing) > 0 {
		c.fail(w, r, fault.Validation(
			fmt.Sprintf("email type %q requires additional data", req.EmailType), missing...))
		return
	}

	subject, body, err := req.EmailType.Render(req.Data)
	if err != nil {
		c.fail(w, r, fault.Validation(err.Error()))
		return
	}

	if s.email == nil {
		c.fail(w, r, providers.Fault(email.ProviderName, errEmailNotConfigured))
		return
	}

	receipt, err := s.email.Send(r.Context(), email.Message{
		To:      req.To,
		Subject: subject,
		HTML:    body,
	})
	if err != nil {
		c.fail(w, r, providers.Fault(email.ProviderName, err))
		return
	}

	c.finish(r, http.StatusOK, nil)
	writeJSON(w, http.StatusOK, successEnvelope{
		Success:   true,
		Data:      receipt,
		Message:   fmt.Sprintf("%s email sent", req.EmailType),
		Timestamp: timestamp(),
	})
}
