package feedback

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"dorax/db"
	"dorax/models"
	"dorax/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Submit handles POST /api/feedback. Feedback is accepted once per booking
// and only after the experience has been paid for.
func Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		BookingID string `json:"bookingId"`
		Rating    int    `json:"rating"`
		Comment   string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.BookingID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "bookingId required")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		utils.RespondWithError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var b models.Booking
	if err := db.BookingsCollection.FindOne(ctx, bson.M{"bookingid": req.BookingID}).Decode(&b); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Booking not found")
		return
	}
	if b.Status != models.BookingPaid && b.Status != models.BookingCompleted {
		utils.RespondWithError(w, http.StatusBadRequest, "Feedback accepted after payment")
		return
	}
	if b.Rating != 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Feedback already submitted for this booking")
		return
	}

	if _, err := db.BookingsCollection.UpdateOne(ctx,
		bson.M{"bookingid": req.BookingID},
		bson.M{"$set": bson.M{"rating": req.Rating, "feedback": req.Comment}},
	); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	fb := models.Feedback{
		FeedbackID:   utils.GetUUID(),
		BookingID:    b.BookingID,
		ExperienceID: b.ExperienceID,
		MerchantID:   b.MerchantID,
		UserID:       b.UserID,
		Rating:       req.Rating,
		Comment:      req.Comment,
		CreatedAt:    time.Now(),
	}
	if _, err := db.FeedbackCollection.InsertOne(ctx, fb); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	// the aggregate catches up on the next submit if this fails
	if err := recomputeExperienceRating(ctx, b.ExperienceID); err != nil {
		log.Printf("feedback: rating recompute for %s: %v", b.ExperienceID, err)
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"message": "Feedback recorded", "feedbackId": fb.FeedbackID})
}

// ListForExperience handles GET /api/feedback/experience/:experienceId.
func ListForExperience(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cur, err := db.FeedbackCollection.Find(ctx,
		bson.M{"experienceid": ps.ByName("experienceId")},
		options.Find().SetSort(bson.M{"createdat": -1}).SetLimit(100),
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var items []models.Feedback
	if err := cur.All(ctx, &items); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if items == nil {
		items = []models.Feedback{}
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

func recomputeExperienceRating(ctx context.Context, experienceID string) error {
	pipeline := []bson.M{
		{"$match": bson.M{"experienceid": experienceID}},
		{"$group": bson.M{
			"_id":   "$experienceid",
			"avg":   bson.M{"$avg": "$rating"},
			"count": bson.M{"$sum": 1},
		}},
	}
	cur, err := db.FeedbackCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	var agg []struct {
		Avg   float64 `bson:"avg"`
		Count int     `bson:"count"`
	}
	if err := cur.All(ctx, &agg); err != nil {
		return err
	}
	if len(agg) == 0 {
		return nil
	}

	_, err = db.ExperiencesCollection.UpdateOne(ctx,
		bson.M{"experienceid": experienceID},
		bson.M{"$set": bson.M{"rating": agg[0].Avg, "reviewcount": agg[0].Count}},
	)
	return err
}
