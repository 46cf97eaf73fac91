package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/qubehealth/appointments-api/internal/core/domain"
)

// meetingDoc stores appointment_at as a BSON datetime (millisecond precision).
type meetingDoc struct {
	ID            int64     `bson:"_id"`
	DoctorID      int64     `bson:"doctor_id"`
	PatientID     int64     `bson:"patient_id"`
	AppointmentAt time.Time `bson:"appointment_at"`
}

func (d meetingDoc) toDomain() *domain.Meeting {
	return &domain.Meeting{
		ID:            d.ID,
		DoctorID:      d.DoctorID,
		PatientID:     d.PatientID,
		AppointmentAt: d.AppointmentAt.UTC(),
	}
}

// MeetingRepository relies on the doctor_slot_unique index created by
// EnsureIndexes; a duplicate key error means the slot is taken.
type MeetingRepository struct {
	col *mongo.Collection
	seq sequence
}

func NewMeetingRepository(db *mongo.Database) *MeetingRepository {
	return &MeetingRepository{
		col: db.Collection(collectionMeetings),
		seq: newSequence(db, collectionMeetings),
	}
}

func (r *MeetingRepository) Create(ctx context.Context, m *domain.Meeting) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.next(ctx)
	if err != nil {
		return err
	}
	doc := meetingDoc{ID: id, DoctorID: m.DoctorID, PatientID: m.PatientID, AppointmentAt: m.AppointmentAt.UTC()}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrSlotTaken
		}
		return fmt.Errorf("insert meeting: %w", err)
	}
	m.ID = id
	return nil
}

func (r *MeetingRepository) findOne(ctx context.Context, filter bson.M) (*domain.Meeting, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc meetingDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("find meeting: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MeetingRepository) FindByID(ctx context.Context, id int64) (*domain.Meeting, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MeetingRepository) FindByDoctorAndTime(ctx context.Context, doctorID int64, at time.Time) (*domain.Meeting, error) {
	return r.findOne(ctx, bson.M{"doctor_id": doctorID, "appointment_at": at.UTC()})
}

func (r *MeetingRepository) List(ctx context.Context) ([]*domain.Meeting, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	var docs []meetingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode meetings: %w", err)
	}

	out := make([]*domain.Meeting, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (r *MeetingRepository) Update(ctx context.Context, m *domain.Meeting) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": m.ID},
		bson.M{"$set": bson.M{
			"doctor_id":      m.DoctorID,
			"patient_id":     m.PatientID,
			"appointment_at": m.AppointmentAt.UTC(),
		}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrSlotTaken
		}
		return fmt.Errorf("update meeting: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrMeetingNotFound
	}
	return nil
}

func (r *MeetingRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete meeting: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrMeetingNotFound
	}
	return nil
}
