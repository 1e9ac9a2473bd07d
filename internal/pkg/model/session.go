package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidSessionWindow = errors.New("session end must be after start")
	ErrNegativeEnergy       = errors.New("session energy cannot be negative")
)

// ChargingSession is one charging event read from a charger usage export.
type ChargingSession struct {
	ID         uuid.UUID `json:"id"`
	EmployeeID uuid.UUID `json:"employee_id"`
	RFID       string    `json:"rfid"` // key/tag label used to start the session.
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Kwh        float64   `json:"kwh"`
}

// NewChargingSession validates the session window and energy before handing out a session.
func NewChargingSession(rfid string, start, end time.Time, kwh float64) (ChargingSession, error) {
	if !end.After(start) {
		return ChargingSession{}, ErrInvalidSessionWindow
	}
	if kwh < 0 {
		return ChargingSession{}, ErrNegativeEnergy
	}
	return ChargingSession{
		ID:    uuid.New(),
		RFID:  rfid,
		Start: start,
		End:   end,
		Kwh:   kwh,
	}, nil
}

func (s ChargingSession) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

type ChargingSessions []ChargingSession

// TimeFragment is the part of a session that falls within one local clock hour.
type TimeFragment struct {
	Hour            time.Time `json:"hour"`
	Kwh             float64   `json:"kwh"`
	Minutes         float64   `json:"minutes"`
	IsDSTTransition bool      `json:"is_dst_transition"`
}
