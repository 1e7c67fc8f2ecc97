// Package handlers implements the HTTP request handlers. Outbound
// collaborators (mail, image storage, OTP store) are injected as
// narrow interfaces so tests can substitute fakes.
package handlers

import (
	"io"

	"github.com/example/messmate/internal/services"
)

// Mailer sends transactional mail. Notification failures are logged by
// callers and never abort the triggering state transition; OTP
// delivery failures are surfaced to the user.
type Mailer interface {
	SendOtpEmail(email, code string) error
	SendApprovalEmail(email, name string) error
	SendRejectionEmail(email, name, reason string) error
}

// ImageStore stores uploaded images, one file per call.
type ImageStore interface {
	Store(filename string, file io.Reader) (services.Upload, error)
	Destroy(deleteToken string)
}
