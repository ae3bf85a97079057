package controllers

import (
	"net/http"
	"strconv"
	"time"

	"travel-voucher-api/services"

	"github.com/gin-gonic/gin"
)

type TripRequest struct {
	TripDate    string  `json:"trip_date" binding:"required"` // YYYY-MM-DD
	Miles       float64 `json:"miles_calculated"`
	Lodging     float64 `json:"lodging_expense"`
	Meals       float64 `json:"meals_expense"`
	Other       float64 `json:"other_expense"`
	Description string  `json:"description"`
}

func (req TripRequest) toInput() (services.TripInput, error) {
	date, err := time.ParseInLocation("2006-01-02", req.TripDate, time.Local)
	if err != nil {
		return services.TripInput{}, err
	}
	return services.TripInput{
		TripDate:    date,
		Miles:       req.Miles,
		Lodging:     req.Lodging,
		Meals:       req.Meals,
		Other:       req.Other,
		Description: req.Description,
	}, nil
}

// CreateTrip logs a new trip for the authenticated inspector.
func CreateTrip(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}

	var req TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "trip_date must be formatted YYYY-MM-DD"})
		return
	}

	trip, err := services.NewTripService(nil).AddTrip(actor, input, requestMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Trip recorded successfully",
		"trip":    trip,
	})
}

// UpdateTrip edits a trip while its period is still open.
func UpdateTrip(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}

	tripID, err := strconv.Atoi(c.Param("id"))
	if err != nil || tripID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trip ID"})
		return
	}

	var req TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "trip_date must be formatted YYYY-MM-DD"})
		return
	}

	trip, err := services.NewTripService(nil).UpdateTrip(actor, tripID, input, requestMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Trip updated successfully",
		"trip":    trip,
	})
}

// DeleteTrip removes a trip while its period is still open.
func DeleteTrip(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}

	tripID, err := strconv.Atoi(c.Param("id"))
	if err != nil || tripID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trip ID"})
		return
	}

	if err := services.NewTripService(nil).DeleteTrip(actor, tripID, requestMeta(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Trip deleted successfully",
	})
}

// GetTrips lists the actor's trips for a period (?month=&year=).
func GetTrips(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}

	month, _ := strconv.Atoi(c.Query("month"))
	year, _ := strconv.Atoi(c.Query("year"))
	if month == 0 {
		month = int(time.Now().Month())
	}
	if year == 0 {
		year = time.Now().Year()
	}

	trips, err := services.NewTripService(nil).ListTrips(actor, month, year)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"trips":   trips,
		"total":   len(trips),
	})
}
