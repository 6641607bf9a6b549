package course

import "time"

// Course represents a learning course owned by the teacher who created it
type Course struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"size:255;uniqueIndex;not null"`
	Description string    `json:"description"`
	CreatorID   uint      `json:"creator_id" gorm:"index;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
