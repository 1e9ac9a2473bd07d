package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/ev-reimbursement/internal/pkg/model"
)

type registerDevice struct {
	Name         string   `json:"name"`
	Identifiers  []string `json:"identifiers"`
	Model        string   `json:"model"`
	Manufacturer string   `json:"manufacturer"`
}

// registerMessage is a Home Assistant MQTT discovery payload.
type registerMessage struct {
	Tilda             string         `json:"~"`
	Name              string         `json:"name"`
	ID                string         `json:"unique_id"`
	StateTopic        string         `json:"state_topic"`
	ValueTemplate     string         `json:"value_template"`
	UnitOfMeasurement string         `json:"unit_of_measurement"`
	Device            registerDevice `json:"device"`
}

type reimbursementMessage struct {
	EmployeeID   string  `json:"employee_id"`
	Month        string  `json:"month"`
	Kwh          float64 `json:"kwh"`
	EnergyNok    float64 `json:"energy_nok"`
	GridNok      float64 `json:"grid_nok"`
	SubsidyNok   float64 `json:"subsidy_nok"`
	TotalNok     float64 `json:"total_nok"`
	PriceArea    string  `json:"price_area"`
	Policy       string  `json:"policy"`
	SessionCount int     `json:"session_count"`
	CalculatedAt string  `json:"calculated_at"`
}

func (s *service) stateTopic(employeeID string) string {
	return fmt.Sprintf("%s/reimbursement/%s", s.topicPrefix, employeeID)
}

// Publish sends the reimbursement as a retained message on the employee's state topic.
func (s *service) Publish(ctx context.Context, r model.Reimbursement) error {
	payload, err := json.Marshal(reimbursementMessage{
		EmployeeID:   r.EmployeeID.String(),
		Month:        r.Month.String(),
		Kwh:          r.Kwh,
		EnergyNok:    r.EnergyNok,
		GridNok:      r.GridNok,
		SubsidyNok:   r.SubsidyNok,
		TotalNok:     r.TotalNok,
		PriceArea:    string(r.PriceArea),
		Policy:       string(r.Policy),
		SessionCount: r.SessionCount,
		CalculatedAt: r.CalculatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	token := s.client.Publish(s.stateTopic(r.EmployeeID.String())+"/state", 1, true, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RegisterEmployee announces a total_nok sensor for the employee once per process.
func (s *service) RegisterEmployee(employee model.Employee) error {
	id := employee.ID.String()
	s.mu.Lock()
	_, exists := s.configuredEmployees[id]
	s.mu.Unlock()
	if exists {
		return nil
	}

	identifier := "ev_reimbursement_" + strings.ReplaceAll(id, "-", "")
	msg := registerMessage{
		Tilda:             s.stateTopic(id),
		Name:              fmt.Sprintf("EV reimbursement %s", employee.Name),
		ID:                identifier,
		StateTopic:        "~/state",
		ValueTemplate:     "{{ value_json.total_nok }}",
		UnitOfMeasurement: "NOK",
		Device: registerDevice{
			Name:         employee.Name,
			Identifiers:  []string{identifier},
			Model:        string(employee.PriceArea),
			Manufacturer: "ev-reimbursement",
		},
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	token := s.client.Publish(fmt.Sprintf("homeassistant/sensor/%s/config", identifier), 1, true, payload)
	if !token.WaitTimeout(s.timeout) {
		return fmt.Errorf("registering employee %s: publish timed out", id)
	}
	if err := token.Error(); err != nil {
		return err
	}
	s.mu.Lock()
	s.configuredEmployees[id] = struct{}{}
	s.mu.Unlock()
	s.logger.Info("registered employee sensor", zap.String("employee", id))
	return nil
}
