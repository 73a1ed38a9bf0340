package services

import (
	"errors"
	"strings"
)

func (m *Manager) validate(svc Service) error {
	if strings.TrimSpace(svc.Name) == "" {
		return errors.New("service name is required")
	}
	if svc.BasePrice.IsNegative() {
		return errors.New("base price cannot be negative")
	}
	if svc.Status != "" && svc.Status != StatusActive && svc.Status != StatusInactive {
		return errors.New("status must be Active or Inactive")
	}
	return nil
}
