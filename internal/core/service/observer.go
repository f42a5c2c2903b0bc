package service

import "github.com/quincy-permits/permit-portal/internal/core/domain"

// Observer receives lifecycle notifications after they are persisted.
// Implemented by the metrics package; services default to a no-op.
type Observer interface {
	ApplicationCreated(app *domain.Application)
	StatusChanged(app *domain.Application, from domain.ApplicationStatus)
	DocumentStored(doc *domain.Document)
	LoginAttempt(success bool)
}

type nopObserver struct{}

func (nopObserver) ApplicationCreated(*domain.Application)                      {}
func (nopObserver) StatusChanged(*domain.Application, domain.ApplicationStatus) {}
func (nopObserver) DocumentStored(*domain.Document)                             {}
func (nopObserver) LoginAttempt(bool)                                           {}
