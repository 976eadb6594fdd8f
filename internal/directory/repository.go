package directory

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrStaffNotFound    = errors.New("staff not found")
	ErrServiceNotFound  = errors.New("service not found")
	ErrNoStaffAvailable = errors.New("no staff available")
)

// Repository is the read-only boundary the booking core consults for staff
// and services. The Mongo implementation below is the only writer, and only
// through the admin surface.
type Repository interface {
	StaffByID(ctx context.Context, id string) (Staff, error)
	ListStaff(ctx context.Context) ([]Staff, error)
	FirstAvailableStaff(ctx context.Context, dayKey string) (Staff, error)
	ServiceByID(ctx context.Context, id string) (Service, error)
	ListServices(ctx context.Context) ([]Service, error)
	UpsertStaff(ctx context.Context, st Staff) error
	UpsertService(ctx context.Context, svc Service) error
}

type MongoRepository struct {
	staff    *mongo.Collection
	services *mongo.Collection
}

func NewRepository(staff, services *mongo.Collection) *MongoRepository {
	return &MongoRepository{staff: staff, services: services}
}

func (r *MongoRepository) StaffByID(ctx context.Context, id string) (Staff, error) {
	var st Staff
	if err := r.staff.FindOne(ctx, bson.M{"_id": id}).Decode(&st); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Staff{}, ErrStaffNotFound
		}
		return Staff{}, err
	}
	return st, nil
}

func (r *MongoRepository) ListStaff(ctx context.Context) ([]Staff, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.staff.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]Staff, 0)
	for cursor.Next(ctx) {
		var st Staff
		if err := cursor.Decode(&st); err != nil {
			return nil, err
		}
		items = append(items, st)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// FirstAvailableStaff is the default-staff rule at commit time: the first
// active staff member, in name order, who works the anchor date's weekday.
func (r *MongoRepository) FirstAvailableStaff(ctx context.Context, dayKey string) (Staff, error) {
	items, err := r.ListStaff(ctx)
	if err != nil {
		return Staff{}, err
	}
	for _, st := range items {
		if st.Status == StaffStatusActive && st.WorksOn(dayKey) {
			return st, nil
		}
	}
	return Staff{}, ErrNoStaffAvailable
}

func (r *MongoRepository) ServiceByID(ctx context.Context, id string) (Service, error) {
	var svc Service
	if err := r.services.FindOne(ctx, bson.M{"_id": id}).Decode(&svc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Service{}, ErrServiceNotFound
		}
		return Service{}, err
	}
	return svc, nil
}

func (r *MongoRepository) ListServices(ctx context.Context) ([]Service, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.services.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]Service, 0)
	for cursor.Next(ctx) {
		var svc Service
		if err := cursor.Decode(&svc); err != nil {
			return nil, err
		}
		items = append(items, svc)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoRepository) UpsertStaff(ctx context.Context, st Staff) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.staff.ReplaceOne(ctx, bson.M{"_id": st.ID}, st, opts)
	return err
}

func (r *MongoRepository) UpsertService(ctx context.Context, svc Service) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.services.ReplaceOne(ctx, bson.M{"_id": svc.ID}, svc, opts)
	return err
}
