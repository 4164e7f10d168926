package experiences

import (
	"context"
	"errors"

	"dorax/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound marks a lookup for an experience that does not exist, as
// opposed to a database failure.
var ErrNotFound = errors.New("experience not found")

// Directory is the read-only lookup the booking core consumes.
type Directory struct {
	col *mongo.Collection
}

func NewDirectory(col *mongo.Collection) *Directory {
	return &Directory{col: col}
}

func (d *Directory) GetExperience(ctx context.Context, id string) (models.Experience, error) {
	var exp models.Experience
	err := d.col.FindOne(ctx, bson.M{"experienceid": id}).Decode(&exp)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Experience{}, ErrNotFound
	}
	return exp, err
}
