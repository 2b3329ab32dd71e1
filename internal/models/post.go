// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NeutralFeelingEmoji is stored when a post is created without an emoji.
const NeutralFeelingEmoji = "💭"

// Post is a short text post. IsDeleted only ever moves from false to true.
type Post struct {
	ID           string                  `gorm:"type:varchar(36);primaryKey" json:"id"`
	Content      string                  `gorm:"type:text;not null" json:"content"`
	FeelingEmoji string                  `gorm:"not null" json:"feelingEmoji"`
	OwnerID      string                  `gorm:"type:varchar(36);not null;index" json:"-"`
	OwnerUser    *User                   `gorm:"foreignKey:OwnerID" json:"-"`
	Owner        Reference[UserSnapshot] `gorm:"-" json:"owner"`
	IsDeleted    bool                    `gorm:"not null;default:false;index" json:"isDeleted"`
	CreatedAt    time.Time               `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time               `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when none was set.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// AfterFind fills Owner from the preloaded user, if any.
func (p *Post) AfterFind(_ *gorm.DB) error {
	p.ResolveOwner()
	return nil
}

// ResolveOwner sets Owner to a resolved snapshot when OwnerUser is loaded,
// and to a bare ID otherwise.
func (p *Post) ResolveOwner() {
	if p.OwnerUser != nil {
		p.Owner = Resolved(p.OwnerUser.ID, p.OwnerUser.Snapshot())
		return
	}
	p.Owner = Unresolved[UserSnapshot](p.OwnerID)
}

// OwnerName is the owner's username, or fallback when the owner is unresolved.
func (p *Post) OwnerName(fallback string) string {
	return ReferenceField(p.Owner, func(u UserSnapshot) string { return u.Username }, fallback)
}

// Edited reports whether the post changed after creation.
func (p *Post) Edited() bool {
	return !p.UpdatedAt.Equal(p.CreatedAt)
}
