package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/puenktlich/puenktlich/pkg/database"
	"github.com/puenktlich/puenktlich/pkg/observation"
)

const trainEventsCollectionName = "train_events"
const carTravelCollectionName = "car_travel"

func trainEventFilter(event observation.TrainEvent) bson.M {
	return bson.M{
		"servicedate": event.ServiceDate,
		"route":       event.Route,
		"trainid":     event.TrainID,
	}
}

// UpsertTrainEvents writes events keyed by their natural key. Re-collecting
// the same window overwrites instead of duplicating; arrival information a
// previous run captured survives via MergeTrainEvent.
func UpsertTrainEvents(events []observation.TrainEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	collection := database.GetCollection(trainEventsCollectionName)

	for _, event := range events {
		filter := trainEventFilter(event)

		var existing observation.TrainEvent
		err := collection.FindOne(context.Background(), filter).Decode(&existing)
		if err == nil {
			event = MergeTrainEvent(existing, event)
		} else if !errors.Is(err, mongo.ErrNoDocuments) {
			return 0, err
		}

		_, err = collection.ReplaceOne(context.Background(), filter, event, options.Replace().SetUpsert(true))
		if err != nil {
			return 0, err
		}
	}

	return len(events), nil
}

// TrainEvents returns all events for a route on or after sinceDate (no upper
// bound), ordered by service date then planned departure.
func TrainEvents(route string, sinceDate string) ([]observation.TrainEvent, error) {
	collection := database.GetCollection(trainEventsCollectionName)

	query := bson.M{"route": route}
	if sinceDate != "" {
		query["servicedate"] = bson.M{"$gte": sinceDate}
	}

	findOptions := options.Find().SetSort(bson.D{
		{Key: "servicedate", Value: 1},
		{Key: "planneddeparture", Value: 1},
	})

	cursor, err := collection.Find(context.Background(), query, findOptions)
	if err != nil {
		return nil, err
	}

	events := []observation.TrainEvent{}
	if err := cursor.All(context.Background(), &events); err != nil {
		return nil, err
	}

	return events, nil
}

// Routes returns the distinct route labels present in the store.
func Routes() ([]string, error) {
	collection := database.GetCollection(trainEventsCollectionName)

	values, err := collection.Distinct(context.Background(), "route", bson.M{})
	if err != nil {
		return nil, err
	}

	routes := []string{}
	for _, value := range values {
		if route, ok := value.(string); ok {
			routes = append(routes, route)
		}
	}

	return routes, nil
}

func UpsertCarObservations(observations []observation.CarTravelObservation) (int, error) {
	if len(observations) == 0 {
		return 0, nil
	}

	collection := database.GetCollection(carTravelCollectionName)

	for _, carObservation := range observations {
		filter := bson.M{
			"servicedate":     carObservation.ServiceDate,
			"route":           carObservation.Route,
			"targetdeparture": carObservation.TargetDeparture,
		}

		_, err := collection.ReplaceOne(context.Background(), filter, carObservation, options.Replace().SetUpsert(true))
		if err != nil {
			return 0, err
		}
	}

	return len(observations), nil
}

func CarObservations(sinceDate string) ([]observation.CarTravelObservation, error) {
	collection := database.GetCollection(carTravelCollectionName)

	query := bson.M{}
	if sinceDate != "" {
		query["servicedate"] = bson.M{"$gte": sinceDate}
	}

	findOptions := options.Find().SetSort(bson.D{
		{Key: "servicedate", Value: 1},
		{Key: "route", Value: 1},
	})

	cursor, err := collection.Find(context.Background(), query, findOptions)
	if err != nil {
		return nil, err
	}

	observations := []observation.CarTravelObservation{}
	if err := cursor.All(context.Background(), &observations); err != nil {
		return nil, err
	}

	return observations, nil
}
