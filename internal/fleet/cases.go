package fleet

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"gorm.io/gorm"

	"emergency-dispatch-backend/internal/model"
)

const caseSuffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newCaseNumber builds a case number of the form CASE-202608311430-X7Q2.
func newCaseNumber() string {
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = caseSuffixAlphabet[rand.Intn(len(caseSuffixAlphabet))]
	}
	return fmt.Sprintf("CASE-%s-%s", time.Now().Format("200601021504"), suffix)
}

// CreateCase opens a police incident record and assigns a case number.
func (r *Registry) CreateCase(ctx context.Context, crimeType string, lat, lon float64, description string) (*model.Case, error) {
	c := model.Case{
		CaseNumber:  newCaseNumber(),
		CrimeType:   crimeType,
		Description: description,
		Latitude:    lat,
		Longitude:   lon,
		Status:      model.CaseOpen,
	}
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, fmt.Errorf("create case: %w", err)
	}
	return &c, nil
}

// UpdateCaseStatus moves a case to a new status. Notes are appended to
// the case description so the incident history stays in one place.
func (r *Registry) UpdateCaseStatus(ctx context.Context, caseNumber, newStatus, notes string) (*model.Case, error) {
	if !model.ValidCaseStatus(newStatus) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, newStatus)
	}

	var c model.Case
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("case_number = ?", caseNumber).First(&c).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrCaseNotFound
			}
			return err
		}
		c.Status = newStatus
		if notes != "" {
			c.Description = c.Description + " | " + notes
		}
		return tx.Save(&c).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCase looks a case up by its case number.
func (r *Registry) GetCase(ctx context.Context, caseNumber string) (*model.Case, error) {
	var c model.Case
	if err := r.db.WithContext(ctx).Where("case_number = ?", caseNumber).First(&c).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}
	return &c, nil
}
