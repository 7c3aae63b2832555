package repository

import (
	"context"
	"errors"
	"time"

	"tripsync-service/internal/domain/entity"
	"tripsync-service/internal/domain/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormFlightRepository implements the FlightRepository interface
type GormFlightRepository struct {
	db *gorm.DB
}

// NewGormFlightRepository creates a new GORM flight repository
func NewGormFlightRepository(db *gorm.DB) repository.FlightRepository {
	return &GormFlightRepository{db: db}
}

// Flights GORM model for database mapping
type Flights struct {
	ID                 uint            `gorm:"primaryKey"`
	TripID             uint            `gorm:"column:trip_id;index"`
	NaturalKey         string          `gorm:"column:natural_key;size:200;uniqueIndex"`
	Airline            string          `gorm:"column:airline;size:100"`
	FlightNumber       string          `gorm:"column:flight_number;size:20"`
	ConfirmationNumber string          `gorm:"column:confirmation_number;size:100"`
	PassengerName      string          `gorm:"column:passenger_name;size:200"`
	DepartureAirport   string          `gorm:"column:departure_airport;size:10"`
	ArrivalAirport     string          `gorm:"column:arrival_airport;size:10"`
	DepartureTime      time.Time       `gorm:"column:departure_time;index"`
	ArrivalTime        time.Time       `gorm:"column:arrival_time"`
	DepartureTerminal  string          `gorm:"column:departure_terminal;size:10"`
	ArrivalTerminal    string          `gorm:"column:arrival_terminal;size:10"`
	DepartureGate      string          `gorm:"column:departure_gate;size:10"`
	ArrivalGate        string          `gorm:"column:arrival_gate;size:10"`
	SeatNumber         string          `gorm:"column:seat_number;size:10"`
	Cost               decimal.Decimal `gorm:"column:cost;type:numeric(12,2)"`
	DelayMinutes       int             `gorm:"column:delay_minutes"`
	Status             string          `gorm:"column:status;size:50"`
	Notes              string          `gorm:"column:notes;type:text"`
	LastAPIUpdate      *time.Time      `gorm:"column:last_api_update"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName overrides the default table name
func (Flights) TableName() string {
	return "flights"
}

func (m *Flights) toEntity() *entity.Flight {
	return &entity.Flight{
		ID:                 m.ID,
		TripID:             m.TripID,
		NaturalKey:         m.NaturalKey,
		Airline:            m.Airline,
		FlightNumber:       m.FlightNumber,
		ConfirmationNumber: m.ConfirmationNumber,
		PassengerName:      m.PassengerName,
		DepartureAirport:   m.DepartureAirport,
		ArrivalAirport:     m.ArrivalAirport,
		DepartureTime:      m.DepartureTime,
		ArrivalTime:        m.ArrivalTime,
		DepartureTerminal:  m.DepartureTerminal,
		ArrivalTerminal:    m.ArrivalTerminal,
		DepartureGate:      m.DepartureGate,
		ArrivalGate:        m.ArrivalGate,
		SeatNumber:         m.SeatNumber,
		Cost:               m.Cost,
		DelayMinutes:       m.DelayMinutes,
		Status:             m.Status,
		Notes:              m.Notes,
		LastAPIUpdate:      m.LastAPIUpdate,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func flightRow(f *entity.Flight) Flights {
	return Flights{
		ID:                 f.ID,
		TripID:             f.TripID,
		NaturalKey:         f.NaturalKey,
		Airline:            f.Airline,
		FlightNumber:       f.FlightNumber,
		ConfirmationNumber: f.ConfirmationNumber,
		PassengerName:      f.PassengerName,
		DepartureAirport:   f.DepartureAirport,
		ArrivalAirport:     f.ArrivalAirport,
		DepartureTime:      f.DepartureTime,
		ArrivalTime:        f.ArrivalTime,
		DepartureTerminal:  f.DepartureTerminal,
		ArrivalTerminal:    f.ArrivalTerminal,
		DepartureGate:      f.DepartureGate,
		ArrivalGate:        f.ArrivalGate,
		SeatNumber:         f.SeatNumber,
		Cost:               f.Cost,
		DelayMinutes:       f.DelayMinutes,
		Status:             f.Status,
		Notes:              f.Notes,
		LastAPIUpdate:      f.LastAPIUpdate,
	}
}

// FindByNaturalKey finds a flight by natural key, nil when absent
func (r *GormFlightRepository) FindByNaturalKey(ctx context.Context, key string) (*entity.Flight, error) {
	var flight Flights
	result := r.db.WithContext(ctx).Where("natural_key = ?", key).First(&flight)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return flight.toEntity(), nil
}

// Create persists a new flight and backfills the generated id
func (r *GormFlightRepository) Create(ctx context.Context, flight *entity.Flight) error {
	row := flightRow(flight)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	flight.ID = row.ID
	return nil
}

// Update saves the full flight row
func (r *GormFlightRepository) Update(ctx context.Context, flight *entity.Flight) error {
	row := flightRow(flight)
	return r.db.WithContext(ctx).Save(&row).Error
}

// ListDepartingBetween returns non-cancelled flights departing in [from, to)
func (r *GormFlightRepository) ListDepartingBetween(ctx context.Context, from, to time.Time) ([]*entity.Flight, error) {
	var flights []Flights
	result := r.db.WithContext(ctx).
		Where("departure_time >= ? AND departure_time < ? AND status <> ?", from, to, entity.FlightCancelled).
		Order("departure_time").
		Find(&flights)
	if result.Error != nil {
		return nil, result.Error
	}

	out := make([]*entity.Flight, 0, len(flights))
	for i := range flights {
		out = append(out, flights[i].toEntity())
	}
	return out, nil
}
