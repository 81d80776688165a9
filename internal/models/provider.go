package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category string

const (
	CategoryPlomeria     Category = "PLOMERIA"
	CategoryElectricidad Category = "ELECTRICIDAD"
	CategoryCarpinteria  Category = "CARPINTERIA"
	CategoryPintura      Category = "PINTURA"
	CategoryLimpieza     Category = "LIMPIEZA"
	CategoryJardineria   Category = "JARDINERIA"
	CategoryCerrajeria   Category = "CERRAJERIA"
	CategoryAlbanileria  Category = "ALBANILERIA"
	CategoryMecanica     Category = "MECANICA"
	CategoryTecnologia   Category = "TECNOLOGIA"
	CategoryMudanzas     Category = "MUDANZAS"
	CategoryOtros        Category = "OTROS"
)

var Categories = []Category{
	CategoryPlomeria, CategoryElectricidad, CategoryCarpinteria, CategoryPintura,
	CategoryLimpieza, CategoryJardineria, CategoryCerrajeria, CategoryAlbanileria,
	CategoryMecanica, CategoryTecnologia, CategoryMudanzas, CategoryOtros,
}

type AttachmentKind string

const (
	AttachmentSpecialty     AttachmentKind = "specialty"
	AttachmentCertification AttachmentKind = "certification"
	AttachmentPortfolio     AttachmentKind = "portfolio"
)

type ProviderProfile struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	User            *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ServiceCategory Category  `gorm:"type:varchar(32);not null;index" json:"serviceCategory"`
	Description     string    `gorm:"type:text" json:"description"`
	Experience      int       `gorm:"not null" json:"experience"`
	PricePerHour    float64   `gorm:"not null" json:"pricePerHour"`
	Location        string    `gorm:"index" json:"location"`
	Available       bool      `gorm:"not null" json:"available"`
	Rating          float64   `gorm:"not null" json:"rating"`
	TotalReviews    int       `gorm:"not null" json:"totalReviews"`

	ProfilePhoto string `json:"profilePhoto,omitempty"`
	DNIFront     string `json:"dniFront,omitempty"`
	DNIBack      string `json:"dniBack,omitempty"`

	WhatsApp  string `json:"whatsapp,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Website   string `json:"website,omitempty"`

	Attachments []ProviderAttachment `gorm:"foreignKey:ProviderID;constraint:OnDelete:CASCADE" json:"-"`
	References  []ProviderReference  `gorm:"foreignKey:ProviderID;constraint:OnDelete:CASCADE" json:"references,omitempty"`

	Specialties     []string `gorm:"-" json:"specialties"`
	Certifications  []string `gorm:"-" json:"certifications"`
	PortfolioImages []string `gorm:"-" json:"portfolioImages"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProviderAttachment holds one element of a provider's list-valued fields.
type ProviderAttachment struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProviderID uuid.UUID      `gorm:"type:uuid;not null;index:idx_attachment_provider_kind" json:"providerId"`
	Kind       AttachmentKind `gorm:"type:varchar(16);not null;index:idx_attachment_provider_kind" json:"kind"`
	Value      string         `gorm:"not null" json:"value"`
	Position   int            `gorm:"not null" json:"position"`
}

type ProviderReference struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProviderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"providerId"`
	Name         string    `gorm:"not null" json:"name" validate:"required"`
	Phone        string    `json:"phone"`
	Relationship string    `json:"relationship"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CategoryCount struct {
	Category Category `json:"category"`
	Count    int64    `json:"count"`
}

func (p *ProviderProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// AfterFind rebuilds the list fields from preloaded attachments.
func (p *ProviderProfile) AfterFind(tx *gorm.DB) error {
	if p.Attachments == nil {
		return nil
	}
	p.Specialties, p.Certifications, p.PortfolioImages = []string{}, []string{}, []string{}
	for _, a := range p.Attachments {
		switch a.Kind {
		case AttachmentSpecialty:
			p.Specialties = append(p.Specialties, a.Value)
		case AttachmentCertification:
			p.Certifications = append(p.Certifications, a.Value)
		case AttachmentPortfolio:
			p.PortfolioImages = append(p.PortfolioImages, a.Value)
		}
	}
	return nil
}

// BuildAttachments converts the list fields into attachment rows, replacing any already present.
func (p *ProviderProfile) BuildAttachments() {
	p.Attachments = p.Attachments[:0]
	add := func(kind AttachmentKind, values []string) {
		for i, v := range values {
			p.Attachments = append(p.Attachments, ProviderAttachment{Kind: kind, Value: v, Position: i})
		}
	}
	add(AttachmentSpecialty, p.Specialties)
	add(AttachmentCertification, p.Certifications)
	add(AttachmentPortfolio, p.PortfolioImages)
}

func (a *ProviderAttachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (r *ProviderReference) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
