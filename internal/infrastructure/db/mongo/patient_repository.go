package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/qubehealth/appointments-api/internal/core/domain"
)

type patientDoc struct {
	ID    int64  `bson:"_id"`
	Name  string `bson:"name"`
	Email string `bson:"email"`
	Phone string `bson:"phone"`
}

func (d patientDoc) toDomain() *domain.Patient {
	return &domain.Patient{ID: d.ID, Name: d.Name, Email: d.Email, Phone: d.Phone}
}

type PatientRepository struct {
	col      *mongo.Collection
	meetings *mongo.Collection
	seq      sequence
}

func NewPatientRepository(db *mongo.Database) *PatientRepository {
	return &PatientRepository{
		col:      db.Collection(collectionPatients),
		meetings: db.Collection(collectionMeetings),
		seq:      newSequence(db, collectionPatients),
	}
}

func (r *PatientRepository) Create(ctx context.Context, p *domain.Patient) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.next(ctx)
	if err != nil {
		return err
	}
	doc := patientDoc{ID: id, Name: p.Name, Email: p.Email, Phone: p.Phone}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	p.ID = id
	return nil
}

func (r *PatientRepository) FindByID(ctx context.Context, id int64) (*domain.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc patientDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPatientNotFound
		}
		return nil, fmt.Errorf("find patient: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PatientRepository) List(ctx context.Context) ([]*domain.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	var docs []patientDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode patients: %w", err)
	}

	out := make([]*domain.Patient, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (r *PatientRepository) Update(ctx context.Context, p *domain.Patient) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": p.ID},
		bson.M{"$set": bson.M{"name": p.Name, "email": p.Email, "phone": p.Phone}},
	)
	if err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPatientNotFound
	}
	return nil
}

// Delete removes every meeting booked for the patient, then the patient.
func (r *PatientRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return deleteWithMeetings(ctx, r.col, r.meetings, id, "patient_id", domain.ErrPatientNotFound)
}
