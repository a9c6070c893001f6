package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names inside each tenant database.
const (
	CollectionPages        = "pages"
	CollectionSettings     = "settings"
	CollectionClients      = "clients"
	CollectionProducts     = "products"
	CollectionTeamMembers  = "teammembers"
	CollectionCertificates = "certificates"
	CollectionTestimonials = "testimonials"
	CollectionContacts     = "contacts"
	CollectionUsers        = "users"
)

// Meta carries the fields shared by every tenant-scoped document.
// created_at and _id use omitempty so updates never overwrite them with
// zero values (mongo-driver honours time.Time.IsZero for omitempty).
type Meta struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at,omitempty" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// SetID records the document id after insert.
func (m *Meta) SetID(id primitive.ObjectID) { m.ID = id }

// Stamp sets the document timestamps. created_at is only set for new
// documents; updates keep the stored value.
func (m *Meta) Stamp(now time.Time, isNew bool) {
	if isNew {
		m.CreatedAt = now
	} else {
		m.CreatedAt = time.Time{}
	}
	m.UpdatedAt = now
}

// Entity is implemented (via Meta) by every tenant-scoped content document.
type Entity interface {
	SetID(primitive.ObjectID)
	Stamp(now time.Time, isNew bool)
}

// Page is a CMS page of the tenant site.
type Page struct {
	Meta            `bson:",inline"`
	Title           string `bson:"title" json:"title" binding:"required"`
	Slug            string `bson:"slug" json:"slug" binding:"required"`
	Content         string `bson:"content" json:"content"`
	MetaDescription string `bson:"meta_description" json:"meta_description"`
	Order           int    `bson:"order" json:"order"`
	IsActive        bool   `bson:"is_active" json:"is_active"`
}

// Settings holds the tenant site's global configuration document.
type Settings struct {
	Meta         `bson:",inline"`
	SiteName     string            `bson:"site_name" json:"site_name" binding:"required"`
	LogoURL      string            `bson:"logo_url" json:"logo_url"`
	ContactEmail string            `bson:"contact_email" json:"contact_email" binding:"omitempty,email"`
	ContactPhone string            `bson:"contact_phone" json:"contact_phone"`
	Address      string            `bson:"address" json:"address"`
	SocialLinks  map[string]string `bson:"social_links" json:"social_links"`
	IsActive     bool              `bson:"is_active" json:"is_active"`
}

// Testimonial is a customer quote shown on the tenant site.
type Testimonial struct {
	Meta     `bson:",inline"`
	Name     string `bson:"name" json:"name" binding:"required"`
	Company  string `bson:"company" json:"company"`
	Quote    string `bson:"quote" json:"quote" binding:"required"`
	Rating   int    `bson:"rating" json:"rating" binding:"omitempty,min=1,max=5"`
	Order    int    `bson:"order" json:"order"`
	IsActive bool   `bson:"is_active" json:"is_active"`
}

// Client is a reference logo entry.
type Client struct {
	Meta     `bson:",inline"`
	Name     string `bson:"name" json:"name" binding:"required"`
	LogoURL  string `bson:"logo_url" json:"logo_url"`
	Website  string `bson:"website" json:"website"`
	Order    int    `bson:"order" json:"order"`
	IsActive bool   `bson:"is_active" json:"is_active"`
}

// Product is a catalog entry on the tenant site.
type Product struct {
	Meta        `bson:",inline"`
	Name        string  `bson:"name" json:"name" binding:"required"`
	Description string  `bson:"description" json:"description"`
	ImageURL    string  `bson:"image_url" json:"image_url"`
	Price       float64 `bson:"price" json:"price"`
	Order       int     `bson:"order" json:"order"`
	IsActive    bool    `bson:"is_active" json:"is_active"`
}

// TeamMember is a staff profile on the tenant site.
type TeamMember struct {
	Meta     `bson:",inline"`
	Name     string `bson:"name" json:"name" binding:"required"`
	Position string `bson:"position" json:"position"`
	PhotoURL string `bson:"photo_url" json:"photo_url"`
	Bio      string `bson:"bio" json:"bio"`
	Order    int    `bson:"order" json:"order"`
	IsActive bool   `bson:"is_active" json:"is_active"`
}

// Certificate is an accreditation shown on the tenant site.
type Certificate struct {
	Meta     `bson:",inline"`
	Title    string     `bson:"title" json:"title" binding:"required"`
	ImageURL string     `bson:"image_url" json:"image_url"`
	IssuedBy string     `bson:"issued_by" json:"issued_by"`
	IssuedAt *time.Time `bson:"issued_at,omitempty" json:"issued_at,omitempty"`
	Order    int        `bson:"order" json:"order"`
	IsActive bool       `bson:"is_active" json:"is_active"`
}

// Contact statuses
const (
	ContactStatusNew     = "new"
	ContactStatusRead    = "read"
	ContactStatusReplied = "replied"
)

// Contact is an inbound contact-form submission.
type Contact struct {
	Meta    `bson:",inline"`
	Name    string `bson:"name" json:"name" binding:"required"`
	Email   string `bson:"email" json:"email" binding:"required,email"`
	Phone   string `bson:"phone" json:"phone"`
	Subject string `bson:"subject" json:"subject"`
	Message string `bson:"message" json:"message" binding:"required"`
	Status  string `bson:"status" json:"status" binding:"omitempty,oneof=new read replied"`
}

// TenantUser is an account stored in a tenant's own users collection, used
// by the generated site's login.
type TenantUser struct {
	Meta         `bson:",inline"`
	Email        string `bson:"email" json:"email" binding:"required,email"`
	Name         string `bson:"name" json:"name"`
	PasswordHash string `bson:"password_hash" json:"-"`
	Role         string `bson:"role" json:"role"`
	IsActive     bool   `bson:"is_active" json:"is_active"`
}
