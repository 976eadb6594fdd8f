package main

import (
	"context"
	"log"
	"os"
	"time"

	"salonbook/internal/auth"
	"salonbook/internal/config"
	"salonbook/internal/db"
	"salonbook/internal/directory"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		log.Fatal(err)
	}

	weekdays := func(start, end string, days ...string) map[string]directory.WorkingDay {
		hours := make(map[string]directory.WorkingDay, len(days))
		for _, d := range days {
			hours[d] = directory.WorkingDay{Active: true, StartTime: start, EndTime: end}
		}
		return hours
	}

	staff := []directory.Staff{
		{
			Name:         "Camille",
			Status:       directory.StaffStatusActive,
			WorkingHours: weekdays("09:00", "18:00", "tue", "wed", "thu", "fri", "sat"),
		},
		{
			Name:         "Nadia",
			Status:       directory.StaffStatusActive,
			WorkingHours: weekdays("10:00", "19:00", "mon", "tue", "thu", "fri"),
		},
		{
			Name:         "Sofia",
			Status:       directory.StaffStatusActive,
			WorkingHours: weekdays("09:00", "14:00", "wed", "sat"),
		},
	}

	for _, st := range staff {
		filter := bson.M{"name": st.Name}
		update := bson.M{
			"$setOnInsert": bson.M{
				"_id":          primitive.NewObjectID().Hex(),
				"name":         st.Name,
				"status":       st.Status,
				"workingHours": st.WorkingHours,
				"createdAt":    time.Now().In(cfg.Timezone),
			},
		}
		if _, err := cols.Staff.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
			log.Fatalf("seed staff error for %s: %v", st.Name, err)
		}
	}

	services := []directory.Service{
		{Name: "Coupe femme", Duration: 45, Price: 4500},
		{Name: "Coupe homme", Duration: 30, Price: 2800},
		{Name: "Couleur", Duration: 90, Price: 7500, EarliestBookingTime: "09:00", LatestBookingTime: "16:00"},
		{Name: "Balayage", Duration: 120, Price: 11000, EarliestBookingTime: "09:00", LatestBookingTime: "15:00"},
		{Name: "Brushing", Duration: 30, Price: 3000},
		{Name: "Soin profond", Duration: 45, Price: 4000, AvailableDays: []string{"tue", "wed", "thu"}},
	}

	for _, svc := range services {
		filter := bson.M{"name": svc.Name}
		update := bson.M{
			"$setOnInsert": bson.M{
				"_id":       primitive.NewObjectID().Hex(),
				"name":      svc.Name,
				"duration":  svc.Duration,
				"price":     svc.Price,
				"createdAt": time.Now().In(cfg.Timezone),
			},
		}
		set := update["$setOnInsert"].(bson.M)
		if svc.AvailableDays != nil {
			set["availableDays"] = svc.AvailableDays
		}
		if svc.EarliestBookingTime != "" {
			set["earliestBookingTime"] = svc.EarliestBookingTime
		}
		if svc.LatestBookingTime != "" {
			set["latestBookingTime"] = svc.LatestBookingTime
		}
		if _, err := cols.Services.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
			log.Fatalf("seed service error for %s: %v", svc.Name, err)
		}
	}

	if password := os.Getenv("ADMIN_PASSWORD"); password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			log.Fatalf("seed admin hash error: %v", err)
		}
		log.Printf("seed admin: set ADMIN_PASSWORD_HASH=%s", hash)
	}

	log.Println("seed completed")
}
