package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/org-hierarchy-api/internal/domain"
)

func validationError(err error) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
}

func requireActor(actor domain.Actor) error {
	if actor.ID == uuid.Nil {
		return domain.ErrActorRequired
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// emptyToNil превращает пустую строку в отсутствие значения
func emptyToNil(s *string) *string {
	s = trimmed(s)
	if s == nil || *s == "" {
		return nil
	}
	return s
}
