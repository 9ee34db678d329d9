package models

import "time"

// RoomType enumerates the supported room categories.
type RoomType string

const (
	RoomTypeRoom        RoomType = "Room"
	RoomTypeLaboratory  RoomType = "Laboratory"
	RoomTypeSeminarRoom RoomType = "Seminar Room"
	RoomTypeComputerLab RoomType = "Computer Lab"
)

// RoomLocation enumerates campus locations.
type RoomLocation string

const (
	LocationMainCampus RoomLocation = "Main Campus"
	LocationSubCampus  RoomLocation = "Sub Campus"
)

// RoomEquipment tags the kind of teaching a room is equipped for.
type RoomEquipment string

const (
	EquipmentLecture RoomEquipment = "Lecture"
	EquipmentLab     RoomEquipment = "Lab"
)

// Room represents a bookable room with weekly availability.
type Room struct {
	ID           string             `db:"id" json:"id"`
	RoomNumber   string             `db:"room_number" json:"roomNumber"`
	RoomType     RoomType           `db:"room_type" json:"roomType"`
	Capacity     int                `db:"capacity" json:"capacity"`
	Availability WeeklyAvailability `db:"availability" json:"availability"`
	Location     RoomLocation       `db:"location" json:"location"`
	Equipment    RoomEquipment      `db:"equipment" json:"equipment"`
	IsActive     bool               `db:"is_active" json:"isActive"`
	CreatedAt    time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `db:"updated_at" json:"updated_at"`
}

// RoomFilter captures filtering options for listing rooms.
type RoomFilter struct {
	Active   *bool
	Search   string
	Page     int
	PageSize int
}
