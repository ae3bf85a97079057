package models

import "time"

// Trip is a single dated travel record. Mileage arrives pre-computed from the
// external geocoding collaborator; zero is a valid placeholder until the
// lookup completes.
type Trip struct {
	TripID          int        `gorm:"primaryKey;column:trip_id" json:"trip_id"`
	OwnerID         int        `gorm:"column:owner_id" json:"owner_id"`
	TripDate        time.Time  `gorm:"column:trip_date" json:"trip_date"`
	MilesCalculated float64    `gorm:"column:miles_calculated" json:"miles_calculated"`
	LodgingExpense  float64    `gorm:"column:lodging_expense" json:"lodging_expense"`
	MealsExpense    float64    `gorm:"column:meals_expense" json:"meals_expense"`
	OtherExpense    float64    `gorm:"column:other_expense" json:"other_expense"`
	Description     *string    `gorm:"column:description" json:"description,omitempty"`
	CreateAt        time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt        time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt        *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Owner *User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

func (Trip) TableName() string {
	return "trips"
}

// ExpenseTotal sums the trip's incidental expenses (lodging, meals, other).
func (t Trip) ExpenseTotal() float64 {
	return t.LodgingExpense + t.MealsExpense + t.OtherExpense
}

// Period returns the calendar period the trip belongs to, which decides the
// voucher it aggregates into.
func (t Trip) Period() (month, year int) {
	return int(t.TripDate.Month()), t.TripDate.Year()
}
