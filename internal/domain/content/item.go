package content

import (
	"time"

	"gorm.io/datatypes"
)

// Item is a row of one of the static question tables. It has no TableName:
// repositories always address it through Category.Table.
type Item struct {
	ID          int                         `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title       string                      `gorm:"not null;column:title" json:"title"`
	Prompt      string                      `gorm:"not null;column:prompt" json:"prompt"`
	Answer      string                      `gorm:"column:answer" json:"answer,omitempty"`
	Explanation string                      `gorm:"column:explanation" json:"explanation,omitempty"`
	Difficulty  string                      `gorm:"column:difficulty" json:"difficulty,omitempty"`
	Tags        datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	CreatedAt   time.Time                   `json:"created_at"`
}
