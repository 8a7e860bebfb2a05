package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pizza-nz/hotel-service/internal/db/repository"
	"github.com/pizza-nz/hotel-service/internal/models"
)

// ErrRoomMismatch is returned when the selected reservation has a different
// room number than the one the guest supplied.
var ErrRoomMismatch = errors.New("room number does not match the selected reservation")

// ReservationStore is the slice of the reservation repository the matcher
// reads.
type ReservationStore interface {
	ListByLastName(ctx context.Context, lastName string) ([]models.Reservation, error)
}

// Chooser picks one of the same-surname candidates and returns its 1-based
// ordinal.
type Chooser interface {
	Choose(ctx context.Context, candidates []models.Reservation) (int, error)
}

// ChooserFunc adapts a function to Chooser.
type ChooserFunc func(ctx context.Context, candidates []models.Reservation) (int, error)

func (f ChooserFunc) Choose(ctx context.Context, candidates []models.Reservation) (int, error) {
	return f(ctx, candidates)
}

// ReservationMatcher confirms a guest by last name and room number.
type ReservationMatcher struct {
	reservations ReservationStore
}

// NewReservationMatcher creates a new reservation matcher
func NewReservationMatcher(reservations ReservationStore) *ReservationMatcher {
	return &ReservationMatcher{reservations: reservations}
}

// Match lists the reservations under lastName, asks chooser for one of them
// and succeeds only if its room number equals roomNumber exactly. Any failure
// means the caller restarts with a fresh name and room pair.
func (m *ReservationMatcher) Match(ctx context.Context, lastName, roomNumber string, chooser Chooser) (*models.Reservation, error) {
	candidates, err := m.reservations.ListByLastName(ctx, lastName)
	if err != nil {
		return nil, storeErr("match reservation", err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no reservations for %q: %w", lastName, ErrNotFound)
	}

	choice, err := chooser.Choose(ctx, candidates)
	if err != nil {
		return nil, err
	}
	if choice < 1 || choice > len(candidates) {
		return nil, invalid("selection", fmt.Sprintf("must be between 1 and %d", len(candidates)))
	}

	selected := candidates[choice-1]
	if selected.RoomNumber != roomNumber {
		return nil, ErrRoomMismatch
	}

	return &selected, nil
}

// ReservationService handles reservation administration
type ReservationService struct {
	repos *repository.Repositories
}

// NewReservationService creates a new reservation service
func NewReservationService(repos *repository.Repositories) *ReservationService {
	return &ReservationService{
		repos: repos,
	}
}

// GetReservations retrieves all reservations
func (s *ReservationService) GetReservations(ctx context.Context) ([]models.Reservation, error) {
	reservations, err := s.repos.Reservation.List(ctx)
	return reservations, storeErr("list reservations", err)
}

// CreateReservation adds a reservation. The floor is derived from the room
// number.
func (s *ReservationService) CreateReservation(ctx context.Context, req models.ReservationRequest) (*models.Reservation, error) {
	room := strings.TrimSpace(req.RoomNumber)
	floor, err := models.FloorOf(room)
	if err != nil {
		return nil, invalid("room number", err.Error())
	}

	lastName := strings.TrimSpace(req.LastName)
	if lastName == "" {
		return nil, invalid("last name", "must not be empty")
	}

	reservation := models.Reservation{
		RoomNumber: room,
		Floor:      floor,
		LastName:   lastName,
		FirstName:  strings.TrimSpace(req.FirstName),
	}

	if err := s.repos.Reservation.Create(ctx, reservation); err != nil {
		return nil, storeErr("create reservation", err)
	}

	return &reservation, nil
}

// UpdateReservation edits the reservation in roomNumber. Blank fields keep
// the current value and the floor follows the room number.
func (s *ReservationService) UpdateReservation(ctx context.Context, roomNumber string, req models.ReservationUpdateRequest) (*models.Reservation, error) {
	roomNumber = strings.TrimSpace(roomNumber)

	current, err := s.repos.Reservation.GetByRoom(ctx, roomNumber)
	if err != nil {
		return nil, storeErr("get reservation", err)
	}

	updated := *current
	if room := strings.TrimSpace(req.RoomNumber); room != "" {
		floor, err := models.FloorOf(room)
		if err != nil {
			return nil, invalid("room number", err.Error())
		}
		updated.RoomNumber = room
		updated.Floor = floor
	}
	if lastName := strings.TrimSpace(req.LastName); lastName != "" {
		updated.LastName = lastName
	}
	if firstName := strings.TrimSpace(req.FirstName); firstName != "" {
		updated.FirstName = firstName
	}

	if err := s.repos.Reservation.Update(ctx, roomNumber, updated); err != nil {
		return nil, storeErr("update reservation", err)
	}

	return &updated, nil
}

// DeleteReservation deletes the reservation in roomNumber
func (s *ReservationService) DeleteReservation(ctx context.Context, roomNumber string) error {
	return storeErr("delete reservation", s.repos.Reservation.Delete(ctx, strings.TrimSpace(roomNumber)))
}

// SearchByRoom returns the reservation in roomNumber, if any
func (s *ReservationService) SearchByRoom(ctx context.Context, roomNumber string) ([]models.Reservation, error) {
	reservation, err := s.repos.Reservation.GetByRoom(ctx, strings.TrimSpace(roomNumber))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("search reservations", err)
	}
	return []models.Reservation{*reservation}, nil
}

// SearchByLastName returns every reservation under lastName
func (s *ReservationService) SearchByLastName(ctx context.Context, lastName string) ([]models.Reservation, error) {
	reservations, err := s.repos.Reservation.ListByLastName(ctx, strings.TrimSpace(lastName))
	return reservations, storeErr("search reservations", err)
}

// CheckOut confirms the guest by last name and room number without an
// ordinal selection. The reservation stays in place.
func (s *ReservationService) CheckOut(ctx context.Context, lastName, roomNumber string) (*models.Reservation, error) {
	candidates, err := s.repos.Reservation.ListByLastName(ctx, lastName)
	if err != nil {
		return nil, storeErr("check out", err)
	}

	for _, candidate := range candidates {
		if candidate.RoomNumber == roomNumber {
			return &candidate, nil
		}
	}

	return nil, fmt.Errorf("check out room %s: %w", roomNumber, ErrNotFound)
}
