package models

// DailyInspiration is the rotated quote/verse/message shown on the student
// dashboard. One row exists per calendar date.
type DailyInspiration struct {
	ID        string  `db:"id" json:"id"`
	Date      string  `db:"date" json:"date"`
	Quote     *string `db:"quote" json:"quote,omitempty"`
	Author    *string `db:"author" json:"author,omitempty"`
	Verse     *string `db:"verse_text" json:"verse_text,omitempty"`
	Reference *string `db:"reference" json:"reference,omitempty"`
	Message   *string `db:"message" json:"message,omitempty"`
	Theme     *string `db:"theme" json:"theme,omitempty"`
}
