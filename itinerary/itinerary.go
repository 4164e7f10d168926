package itinerary

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"dorax/db"
	"dorax/models"
	"dorax/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var validDifficulties = map[string]bool{"Easy": true, "Moderate": true, "Hard": true}

// List handles GET /api/itineraries with an optional ?difficulty= filter.
func List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if d := r.URL.Query().Get("difficulty"); d != "" {
		if !validDifficulties[d] {
			utils.RespondWithError(w, http.StatusBadRequest, "difficulty must be Easy, Moderate or Hard")
			return
		}
		filter["difficulty"] = d
	}

	cur, err := db.ItineraryCollection.Find(ctx, filter, options.Find().SetSort(bson.M{"createdat": -1}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var items []models.Itinerary
	if err := cur.All(ctx, &items); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if items == nil {
		items = []models.Itinerary{}
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

// Get handles GET /api/itinerary/:id.
func Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var it models.Itinerary
	if err := db.ItineraryCollection.FindOne(ctx, bson.M{"itineraryid": ps.ByName("id")}).Decode(&it); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Itinerary not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, it)
}

// Create handles POST /api/itineraries.
func Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var it models.Itinerary
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if it.Title == "" || it.Days <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "title and days required")
		return
	}
	if it.Difficulty != "" && !validDifficulties[it.Difficulty] {
		utils.RespondWithError(w, http.StatusBadRequest, "difficulty must be Easy, Moderate or Hard")
		return
	}
	for _, stop := range it.Stops {
		if stop.Day < 1 || stop.Day > it.Days {
			utils.RespondWithError(w, http.StatusBadRequest, "stop day outside itinerary range")
			return
		}
	}

	it.ItineraryID = utils.GetUUID()
	it.CreatedAt = time.Now()
	it.UpdatedAt = it.CreatedAt

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := db.ItineraryCollection.InsertOne(ctx, it); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db insert failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, it)
}

// Update handles PUT /api/itinerary/:id.
func Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	delete(patch, "itineraryid")
	if d, ok := patch["difficulty"].(string); ok && d != "" && !validDifficulties[d] {
		utils.RespondWithError(w, http.StatusBadRequest, "difficulty must be Easy, Moderate or Hard")
		return
	}
	patch["updatedat"] = time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res := db.ItineraryCollection.FindOneAndUpdate(ctx,
		bson.M{"itineraryid": ps.ByName("id")},
		bson.M{"$set": patch},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Itinerary
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Itinerary not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/itinerary/:id.
func Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.ItineraryCollection.DeleteOne(ctx, bson.M{"itineraryid": ps.ByName("id")})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Itinerary not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Itinerary deleted"})
}
