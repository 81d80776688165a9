package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "PENDING"
	BookingAccepted   BookingStatus = "ACCEPTED"
	BookingRejected   BookingStatus = "REJECTED"
	BookingConfirmed  BookingStatus = "CONFIRMED"
	BookingInProgress BookingStatus = "IN_PROGRESS"
	BookingCompleted  BookingStatus = "COMPLETED"
	BookingCancelled  BookingStatus = "CANCELLED"
)

// bookingTransitions lists, per status, the statuses a booking may move to next.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:    {BookingAccepted, BookingRejected, BookingCancelled},
	BookingAccepted:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed:  {BookingInProgress, BookingCancelled},
	BookingInProgress: {BookingCompleted, BookingCancelled},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingAccepted, BookingRejected, BookingConfirmed,
		BookingInProgress, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

type Booking struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"clientId"`
	Client         *User            `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty"`
	ProviderID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"providerId"`
	Provider       *ProviderProfile `gorm:"foreignKey:ProviderID;constraint:OnDelete:CASCADE" json:"provider,omitempty"`
	ServiceDate    time.Time        `gorm:"not null" json:"serviceDate"`
	ServiceTime    string           `json:"serviceTime,omitempty"`
	Description    string           `gorm:"type:text;not null" json:"description"`
	Address        string           `gorm:"not null" json:"address"`
	Status         BookingStatus    `gorm:"type:varchar(16);not null;index" json:"status"`
	TotalPrice     *float64         `json:"totalPrice"`
	EstimatedHours *float64         `json:"estimatedHours,omitempty"`
	ClientNotes    string           `gorm:"type:text" json:"clientNotes,omitempty"`
	ProviderNotes  string           `gorm:"type:text" json:"providerNotes,omitempty"`
	Images         []BookingImage   `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE" json:"-"`
	ProblemImages  []string         `gorm:"-" json:"problemImages"`
	Review         *Review          `gorm:"foreignKey:BookingID" json:"review"`
	CompletedAt    *time.Time       `json:"completedAt,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

type BookingImage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID uuid.UUID `gorm:"type:uuid;not null;index" json:"bookingId"`
	URL       string    `gorm:"not null" json:"url"`
	Position  int       `gorm:"not null" json:"position"`
}

type BookingFilter struct {
	ClientID   *uuid.UUID
	ProviderID *uuid.UUID
	Status     BookingStatus
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Status == "" {
		b.Status = BookingPending
	}
	if len(b.Images) == 0 {
		for i, url := range b.ProblemImages {
			b.Images = append(b.Images, BookingImage{URL: url, Position: i})
		}
	}
	return nil
}

func (b *Booking) AfterFind(tx *gorm.DB) error {
	if b.Images == nil {
		return nil
	}
	b.ProblemImages = make([]string, 0, len(b.Images))
	for _, img := range b.Images {
		b.ProblemImages = append(b.ProblemImages, img.URL)
	}
	return nil
}

func (i *BookingImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
