package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createIndexes() {
	createTrainEventIndexes()
	createCarTravelIndexes()
}

func createTrainEventIndexes() {
	trainEventsCollection := GetCollection("train_events")

	// The unique compound index is what makes re-collection an overwrite
	// instead of a duplicate: one event per (service date, route, train).
	naturalKeyIndexName := "TrainEventNaturalKey"
	trainEventsIndex := []mongo.IndexModel{
		{
			Options: options.Index().SetName(naturalKeyIndexName).SetUnique(true),
			Keys: bson.D{
				{Key: "servicedate", Value: 1},
				{Key: "route", Value: 1},
				{Key: "trainid", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "route", Value: 1},
				{Key: "servicedate", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "planneddeparture", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := trainEventsCollection.Indexes().CreateMany(context.Background(), trainEventsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createCarTravelIndexes() {
	carTravelCollection := GetCollection("car_travel")
	carTravelIndex := []mongo.IndexModel{
		{
			Options: options.Index().SetUnique(true),
			Keys: bson.D{
				{Key: "servicedate", Value: 1},
				{Key: "route", Value: 1},
				{Key: "targetdeparture", Value: 1},
			},
		},
	}

	opts := options.CreateIndexes()
	_, err := carTravelCollection.Indexes().CreateMany(context.Background(), carTravelIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
