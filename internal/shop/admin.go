package shop

import (
	"context"

	"github.com/gtera/thiwa/pkg/logger"

	"github.com/gtera/thiwa/internal/remote"
)

// IsAdmin reports the device-local admin-session flag.
func (s *Store) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isAdmin
}

// LoginAdmin checks the supplied credentials against the settings/admin
// singleton and, on a match, marks this device's session as admin.
//
// The comparison is a plain equality check on stored plaintext, exactly as
// the deployment works today. It is a cosmetic gate for the admin screens,
// not a security boundary; hardening it would change behaviour shared with
// other clients, so it stays as is.
func (s *Store) LoginAdmin(username, password string) error {
	// Until the settings snapshot lands the stored credentials are zero
	// values; an empty username must never match them.
	if username == "" {
		return ErrInvalidCredentials
	}
	s.mu.Lock()
	creds := s.settings.Admin
	if username != creds.Username || password != creds.Password {
		s.mu.Unlock()
		// One generic failure for both wrong-username and wrong-password.
		return ErrInvalidCredentials
	}
	s.isAdmin = true
	s.persistAdminFlagLocked()
	s.mu.Unlock()
	return nil
}

// LogoutAdmin clears the device-local session flag. Always succeeds.
func (s *Store) LogoutAdmin() {
	s.mu.Lock()
	s.isAdmin = false
	s.persistAdminFlagLocked()
	s.mu.Unlock()
}

func (s *Store) persistAdminFlagLocked() {
	if err := s.local.Save(keyIsAdmin, s.isAdmin); err != nil {
		logger.Error("shop: persist admin flag", "error", err)
	}
}

// UpdateAdminCredentials replaces the settings/admin singleton. The change
// reaches every device through the settings subscription; already-open admin
// sessions elsewhere stay open.
func (s *Store) UpdateAdminCredentials(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		fields := map[string]string{}
		if username == "" {
			fields["username"] = "username is required"
		}
		if password == "" {
			fields["password"] = "password is required"
		}
		return &ValidationError{Fields: fields}
	}

	s.mu.RLock()
	id := s.adminDocID
	s.mu.RUnlock()

	fields := map[string]any{"username": username, "password": password}
	if id == "" {
		// Singleton missing (first boot before seeding finished): create it.
		doc := map[string]any{"key": "admin"}
		for k, v := range fields {
			doc[k] = v
		}
		_, err := s.remote.Create(ctx, remote.Settings, doc)
		return err
	}
	return s.remote.Update(ctx, remote.Settings, id, fields)
}

// UpdatePaymentInstructions replaces the settings/payment singleton shown on
// the bank-transfer checkout path.
func (s *Store) UpdatePaymentInstructions(ctx context.Context, text string) error {
	s.mu.RLock()
	id := s.paymentDocID
	s.mu.RUnlock()

	if id == "" {
		_, err := s.remote.Create(ctx, remote.Settings, map[string]any{"key": "payment", "text": text})
		return err
	}
	return s.remote.Update(ctx, remote.Settings, id, map[string]any{"text": text})
}
