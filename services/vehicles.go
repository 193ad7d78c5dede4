package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"line-dealer-bot/models"
)

const vehiclesCollection = "vehicles"

// VehicleStore queries the hosted vehicle inventory.
type VehicleStore struct {
	collection *mongo.Collection
}

func NewVehicleStore(db *mongo.Database) *VehicleStore {
	return &VehicleStore{collection: db.Collection(vehiclesCollection)}
}

// Search finds vehicles whose descriptive fields contain the keyword.
func (s *VehicleStore) Search(ctx context.Context, keyword string, limit int64) ([]models.Vehicle, error) {
	pattern := regexp.QuoteMeta(strings.TrimSpace(keyword))

	filter := bson.M{
		"$or": []bson.M{
			{"brand": bson.M{"$regex": pattern, "$options": "i"}},
			{"model": bson.M{"$regex": pattern, "$options": "i"}},
			{"color": bson.M{"$regex": pattern, "$options": "i"}},
			{"title": bson.M{"$regex": pattern, "$options": "i"}},
			{"description": bson.M{"$regex": pattern, "$options": "i"}},
		},
	}

	findOptions := options.Find().SetLimit(limit)

	cursor, err := s.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}

	return vehicles, nil
}

// FormatVehicleDetails renders one vehicle as the line-per-field block fed to
// the completion prompt. Fields without data are omitted.
func FormatVehicleDetails(v models.Vehicle) string {
	var details []string

	if v.Brand != "" || v.Model != "" {
		details = append(details, fmt.Sprintf("廠牌/車種: %s / %s", v.Brand, v.Model))
	}
	if v.Year > 0 {
		details = append(details, fmt.Sprintf("年份/月份: %d年 %d月", v.Year, v.Month))
	}
	if v.Price > 0 {
		details = append(details, fmt.Sprintf("價格: %g 萬元", v.Price))
	}
	if v.Color != "" {
		details = append(details, fmt.Sprintf("顏色: %s", v.Color))
	}
	if v.Displacement > 0 {
		details = append(details, fmt.Sprintf("排氣量: %d c.c.", v.Displacement))
	}
	if v.Transmission != "" {
		details = append(details, fmt.Sprintf("排檔: %s", v.Transmission))
	}
	if v.Fuel != "" {
		details = append(details, fmt.Sprintf("燃料: %s", v.Fuel))
	}
	if v.Title != "" {
		details = append(details, fmt.Sprintf("車輛標題: %s", v.Title))
	}
	if v.Description != "" {
		details = append(details, fmt.Sprintf("車輛介紹: %s", v.Description))
	}

	return strings.Join(details, "\n")
}
