package models

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidRoomNumber is returned for room numbers that are not a floor
// followed by a 3-digit code.
var ErrInvalidRoomNumber = errors.New("room number must be a floor followed by a 3-digit code")

type Reservation struct {
	RoomNumber string `db:"room_number" json:"room_number"`
	Floor      int    `db:"floor" json:"floor"`
	LastName   string `db:"last_name" json:"last_name"`
	FirstName  string `db:"first_name" json:"first_name"`
}

// FloorOf derives the floor from a room number by dropping its trailing
// 3-digit code, so "2101" is on floor 2 and "12005" on floor 12.
func FloorOf(roomNumber string) (int, error) {
	room := strings.TrimSpace(roomNumber)
	if len(room) <= 3 {
		return 0, ErrInvalidRoomNumber
	}

	for _, r := range room {
		if r < '0' || r > '9' {
			return 0, ErrInvalidRoomNumber
		}
	}

	floor, err := strconv.Atoi(room[:len(room)-3])
	if err != nil {
		return 0, ErrInvalidRoomNumber
	}

	return floor, nil
}

// ReservationRequest is used for reservation creation.
type ReservationRequest struct {
	RoomNumber string
	LastName   string
	FirstName  string
}

// ReservationUpdateRequest carries an edit; empty fields keep the current
// value.
type ReservationUpdateRequest struct {
	RoomNumber string
	LastName   string
	FirstName  string
}
