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

type staffDoc struct {
	ID             int64  `bson:"_id"`
	Name           string `bson:"name"`
	Specialization string `bson:"specialization"`
	Email          string `bson:"email"`
	Phone          string `bson:"phone"`
}

func (d staffDoc) toDomain() *domain.Staff {
	return &domain.Staff{
		ID:             d.ID,
		Name:           d.Name,
		Specialization: d.Specialization,
		Email:          d.Email,
		Phone:          d.Phone,
	}
}

type StaffRepository struct {
	col      *mongo.Collection
	meetings *mongo.Collection
	seq      sequence
}

func NewStaffRepository(db *mongo.Database) *StaffRepository {
	return &StaffRepository{
		col:      db.Collection(collectionStaff),
		meetings: db.Collection(collectionMeetings),
		seq:      newSequence(db, collectionStaff),
	}
}

func (r *StaffRepository) Create(ctx context.Context, s *domain.Staff) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.next(ctx)
	if err != nil {
		return err
	}
	doc := staffDoc{ID: id, Name: s.Name, Specialization: s.Specialization, Email: s.Email, Phone: s.Phone}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert staff: %w", err)
	}
	s.ID = id
	return nil
}

func (r *StaffRepository) FindByID(ctx context.Context, id int64) (*domain.Staff, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc staffDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrStaffNotFound
		}
		return nil, fmt.Errorf("find staff: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *StaffRepository) List(ctx context.Context) ([]*domain.Staff, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	var docs []staffDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode staff: %w", err)
	}

	out := make([]*domain.Staff, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (r *StaffRepository) Update(ctx context.Context, s *domain.Staff) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": s.ID},
		bson.M{"$set": bson.M{
			"name":           s.Name,
			"specialization": s.Specialization,
			"email":          s.Email,
			"phone":          s.Phone,
		}},
	)
	if err != nil {
		return fmt.Errorf("update staff: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrStaffNotFound
	}
	return nil
}

// Delete removes every meeting assigned to the staff member, then the member.
func (r *StaffRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return deleteWithMeetings(ctx, r.col, r.meetings, id, "doctor_id", domain.ErrStaffNotFound)
}
