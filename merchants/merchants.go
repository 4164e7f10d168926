package merchants

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"dorax/db"
	"dorax/globals"
	"dorax/models"
	"dorax/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultCommissionRate = 0.10

// Onboard handles POST /api/merchant/onboard.
func Onboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var m models.Merchant
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if m.BusinessName == "" || m.OwnerName == "" || m.Email == "" || m.Phone == "" || m.BusinessType == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	count, err := db.MerchantsCollection.CountDocuments(ctx, bson.M{"email": m.Email})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if count > 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Merchant with this email already exists")
		return
	}

	m.MerchantID = utils.GetUUID()
	m.Status = "pending"
	m.IsVerified = false
	m.CommissionRate = defaultCommissionRate
	m.CreatedAt = time.Now()

	if _, err := db.MerchantsCollection.InsertOne(ctx, m); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db insert failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"message":    "Onboarding form submitted successfully",
		"merchantId": m.MerchantID,
		"status":     m.Status,
		"nextStep":   "Your application is under review. You will be notified once approved.",
	})
}

// GetMerchant handles GET /api/merchant/:id. Non-admin callers get the
// public view with contact and payout details stripped.
func GetMerchant(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var m models.Merchant
	if err := db.MerchantsCollection.FindOne(ctx, bson.M{"merchantid": ps.ByName("id")}).Decode(&m); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Merchant not found")
		return
	}

	if !isAdmin(r) {
		utils.RespondWithJSON(w, http.StatusOK, m.PublicView())
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, m)
}

// ListMerchants handles GET /api/merchants (admin).
func ListMerchants(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	cur, err := db.MerchantsCollection.Find(ctx, filter, options.Find().SetSort(bson.M{"createdat": -1}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var merchants []models.Merchant
	if err := cur.All(ctx, &merchants); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if merchants == nil {
		merchants = []models.Merchant{}
	}
	utils.RespondWithJSON(w, http.StatusOK, merchants)
}

// Approve handles PUT /api/merchant/:id/approve (admin).
func Approve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	now := time.Now()
	res := db.MerchantsCollection.FindOneAndUpdate(ctx,
		bson.M{"merchantid": ps.ByName("id")},
		bson.M{"$set": bson.M{"status": "approved", "isverified": true, "approvedat": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var m models.Merchant
	if err := res.Decode(&m); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Merchant not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":  "Merchant approved successfully",
		"merchant": m,
	})
}

// Reject handles PUT /api/merchant/:id/reject (admin).
func Reject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Reason string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.Reason == "" {
		body.Reason = "Documents do not meet requirements"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	now := time.Now()
	res := db.MerchantsCollection.FindOneAndUpdate(ctx,
		bson.M{"merchantid": ps.ByName("id")},
		bson.M{"$set": bson.M{"status": "rejected", "isverified": false, "rejectionreason": body.Reason, "rejectedat": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var m models.Merchant
	if err := res.Decode(&m); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Merchant not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":  "Merchant rejected",
		"merchant": m,
	})
}

// Update handles PUT /api/merchant/:id (profile edits).
func Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	// review fields only change through approve/reject
	delete(patch, "merchantid")
	delete(patch, "status")
	delete(patch, "isverified")
	delete(patch, "commissionrate")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res := db.MerchantsCollection.FindOneAndUpdate(ctx,
		bson.M{"merchantid": ps.ByName("id")},
		bson.M{"$set": patch},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var m models.Merchant
	if err := res.Decode(&m); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Merchant not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Merchant updated", "merchant": m})
}

func isAdmin(r *http.Request) bool {
	roles, _ := r.Context().Value(globals.RoleKey).([]string)
	for _, role := range roles {
		if role == "admin" {
			return true
		}
	}
	return false
}
