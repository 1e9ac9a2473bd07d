package model

import (
	"time"

	"github.com/google/uuid"
)

// PriceBreakdown holds the NOK amounts for a fragment, a session or a month.
// SubsidyNok is a positive magnitude that is already netted out of EnergyNok.
type PriceBreakdown struct {
	Kwh        float64    `json:"kwh"`
	EnergyNok  float64    `json:"energy_nok"`
	GridNok    float64    `json:"grid_nok"`
	SubsidyNok float64    `json:"subsidy_nok"`
	TotalNok   float64    `json:"total_nok"`
	PriceArea  PriceArea  `json:"price_area"`
	Policy     PolicyType `json:"policy"`
}

// Add accumulates o into b. Area and policy are taken from o when b has none.
func (b *PriceBreakdown) Add(o PriceBreakdown) {
	b.Kwh += o.Kwh
	b.EnergyNok += o.EnergyNok
	b.GridNok += o.GridNok
	b.SubsidyNok += o.SubsidyNok
	b.TotalNok += o.TotalNok
	if b.PriceArea == "" {
		b.PriceArea = o.PriceArea
	}
	if b.Policy == "" {
		b.Policy = o.Policy
	}
}

// ReimbursementID is the ledger row id of an employee's month. It is derived
// from both so a recalculation keeps the id of the stored row.
func ReimbursementID(employeeID uuid.UUID, month Month) uuid.UUID {
	return uuid.NewSHA1(employeeID, []byte(month.String()))
}

// Reimbursement is the ledger row for one employee and month.
type Reimbursement struct {
	ID             uuid.UUID `json:"id"`
	EmployeeID     uuid.UUID `json:"employee_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Month          Month     `json:"month"`
	PriceBreakdown
	SessionCount int       `json:"session_count"`
	CalculatedAt time.Time `json:"calculated_at"`
}
