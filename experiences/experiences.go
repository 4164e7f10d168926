package experiences

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"dorax/db"
	"dorax/filemgr"
	"dorax/models"
	"dorax/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Discover handles GET /api/experiences.
func Discover(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	filter := bson.M{"isactive": true}
	if category := r.URL.Query().Get("category"); category != "" {
		filter["category"] = category
	}
	if area := r.URL.Query().Get("area"); area != "" {
		filter["area"] = area
	}
	opts := utils.ParseQueryOptions(r)
	if opts.Search != "" {
		filter["title"] = bson.M{"$regex": opts.Search, "$options": "i"}
	}

	cur, err := db.ExperiencesCollection.Find(ctx, filter, options.Find().
		SetSort(bson.M{"createdat": -1}).
		SetSkip(int64((opts.Page-1)*opts.Limit)).
		SetLimit(int64(opts.Limit)))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var experiences []models.Experience
	if err := cur.All(ctx, &experiences); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if experiences == nil {
		experiences = []models.Experience{}
	}
	utils.RespondWithJSON(w, http.StatusOK, experiences)
}

// GetExperience handles GET /api/experience/:id.
func GetExperience(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var exp models.Experience
	if err := db.ExperiencesCollection.FindOne(ctx, bson.M{"experienceid": ps.ByName("id")}).Decode(&exp); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Experience not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, exp)
}

// CreateExperience handles POST /api/experiences.
func CreateExperience(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var exp models.Experience
	if err := json.NewDecoder(r.Body).Decode(&exp); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if exp.Title == "" || exp.Area == "" || exp.MeetingPoint == "" || exp.MerchantID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing required fields")
		return
	}
	if exp.Price <= 0 || exp.Duration <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "price and duration must be positive")
		return
	}
	if !slices.Contains(models.ExperienceCategories, exp.Category) {
		utils.RespondWithError(w, http.StatusBadRequest, "unknown category")
		return
	}

	exp.ExperienceID = utils.GetUUID()
	if exp.MinParticipants == 0 {
		exp.MinParticipants = 1
	}
	if exp.MaxParticipants == 0 {
		exp.MaxParticipants = 10
	}
	if exp.Rating == 0 {
		exp.Rating = 4.5
	}
	exp.IsActive = true
	exp.CreatedAt = time.Now()
	exp.UpdatedAt = exp.CreatedAt

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := db.ExperiencesCollection.InsertOne(ctx, exp); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db insert failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, exp)
}

// UpdateExperience handles PUT /api/experience/:id.
func UpdateExperience(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	// identifiers and rating aggregates are not client-writable
	delete(patch, "experienceid")
	delete(patch, "merchantid")
	delete(patch, "rating")
	delete(patch, "reviewcount")
	patch["updatedat"] = time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res := db.ExperiencesCollection.FindOneAndUpdate(ctx,
		bson.M{"experienceid": ps.ByName("id")},
		bson.M{"$set": patch},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Experience
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Experience not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, updated)
}

// DeleteExperience handles DELETE /api/experience/:id (soft delete).
func DeleteExperience(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.ExperiencesCollection.UpdateOne(ctx,
		bson.M{"experienceid": ps.ByName("id")},
		bson.M{"$set": bson.M{"isactive": false, "updatedat": time.Now()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Experience not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Experience deactivated"})
}

// Stats handles GET /api/experiences/stats: per-category duration totals.
func Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	pipeline := []bson.M{
		{"$match": bson.M{"isactive": true}},
		{"$group": bson.M{
			"_id":   "$category",
			"total": bson.M{"$sum": "$duration"},
			"count": bson.M{"$sum": 1},
		}},
	}
	cur, err := db.ExperiencesCollection.Aggregate(ctx, pipeline)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var stats []bson.M
	if err := cur.All(ctx, &stats); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stats)
}

// UploadImage handles POST /api/experience/:id/image (multipart form, field
// "image").
func UploadImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	imagePath, thumbPath, err := filemgr.SaveExperienceImage(file, header)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	res, err := db.ExperiencesCollection.UpdateOne(ctx,
		bson.M{"experienceid": ps.ByName("id")},
		bson.M{"$set": bson.M{"image": imagePath, "thumbnail": thumbPath, "updatedat": time.Now()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Experience not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"image": imagePath, "thumbnail": thumbPath})
}
