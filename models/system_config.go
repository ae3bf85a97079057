package models

import (
	"strconv"

	"gorm.io/gorm"
)

// DefaultMileageRate is used when no mileage_rate row exists in system_config.
const DefaultMileageRate = 0.67

// SystemConfig represents key-value configuration settings
// such as the current reimbursement mileage rate.
type SystemConfig struct {
	Key   string `gorm:"primaryKey;column:key" json:"key"`
	Value string `gorm:"column:value" json:"value"`
}

// TableName specifies the table name for GORM
func (SystemConfig) TableName() string {
	return "system_config"
}

// GetMileageRate fetches the dollars-per-mile rate from system_config,
// falling back to the statutory default when unset or malformed.
func GetMileageRate(db *gorm.DB) float64 {
	var cfg SystemConfig
	if err := db.Where("`key` = ?", "mileage_rate").First(&cfg).Error; err != nil {
		return DefaultMileageRate
	}
	rate, err := strconv.ParseFloat(cfg.Value, 64)
	if err != nil || rate <= 0 {
		return DefaultMileageRate
	}
	return rate
}
