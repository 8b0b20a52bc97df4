package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/khushalb002/MMSpace-sub000/internal/apperr"
	"github.com/khushalb002/MMSpace-sub000/internal/domain"
)

// ProfileRepository reads the academic-domain collections the messaging core
// depends on for authorization and sender identity. It never writes to them.
type ProfileRepository struct {
	groups    *mongo.Collection
	mentors   *mongo.Collection
	mentees   *mongo.Collection
	guardians *mongo.Collection
	users     *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{
		groups:    db.Collection("groups"),
		mentors:   db.Collection("mentors"),
		mentees:   db.Collection("mentees"),
		guardians: db.Collection("guardians"),
		users:     db.Collection("users"),
	}
}

func (r *ProfileRepository) GroupByID(ctx context.Context, id string) (*domain.Group, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var g domain.Group
	if err := r.groups.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("group")
		}
		return nil, apperr.Dependency("get group", err)
	}
	return &g, nil
}

func (r *ProfileRepository) MenteeByID(ctx context.Context, id string) (*domain.Mentee, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var m domain.Mentee
	if err := r.mentees.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("mentee")
		}
		return nil, apperr.Dependency("get mentee", err)
	}
	return &m, nil
}

func (r *ProfileRepository) GuardianByID(ctx context.Context, id string) (*domain.Guardian, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var g domain.Guardian
	if err := r.guardians.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("guardian")
		}
		return nil, apperr.Dependency("get guardian", err)
	}
	return &g, nil
}

func (r *ProfileRepository) MentorByUserID(ctx context.Context, userID string) (*domain.Mentor, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var m domain.Mentor
	if err := r.mentors.FindOne(ctx, bson.M{"user_id": userID}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("mentor profile")
		}
		return nil, apperr.Dependency("get mentor profile", err)
	}
	return &m, nil
}

func (r *ProfileRepository) MenteeByUserID(ctx context.Context, userID string) (*domain.Mentee, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var m domain.Mentee
	if err := r.mentees.FindOne(ctx, bson.M{"user_id": userID}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("mentee profile")
		}
		return nil, apperr.Dependency("get mentee profile", err)
	}
	return &m, nil
}

func (r *ProfileRepository) GuardianByUserID(ctx context.Context, userID string) (*domain.Guardian, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var g domain.Guardian
	if err := r.guardians.FindOne(ctx, bson.M{"user_id": userID}).Decode(&g); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("guardian profile")
		}
		return nil, apperr.Dependency("get guardian profile", err)
	}
	return &g, nil
}

func (r *ProfileRepository) MenteesByIDs(ctx context.Context, ids []string) ([]domain.Mentee, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cur, err := r.mentees.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, apperr.Dependency("list mentees", err)
	}
	defer cur.Close(ctx)

	out := []domain.Mentee{}
	for cur.Next(ctx) {
		var m domain.Mentee
		if err := cur.Decode(&m); err != nil {
			return nil, apperr.Dependency("decode mentee", err)
		}
		out = append(out, m)
	}
	if err := cur.Err(); err != nil {
		return nil, apperr.Dependency("list mentees", err)
	}
	return out, nil
}

func (r *ProfileRepository) MentorNamesByUserIDs(ctx context.Context, userIDs []string) (map[string]string, error) {
	return r.namesByField(ctx, r.mentors, "user_id", userIDs)
}

func (r *ProfileRepository) GuardianNamesByUserIDs(ctx context.Context, userIDs []string) (map[string]string, error) {
	return r.namesByField(ctx, r.guardians, "user_id", userIDs)
}

func (r *ProfileRepository) UserNamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	return r.namesByField(ctx, r.users, "_id", ids)
}

func (r *ProfileRepository) namesByField(ctx context.Context, coll *mongo.Collection, field string, keys []string) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cur, err := coll.Find(ctx, bson.M{field: bson.M{"$in": keys}})
	if err != nil {
		return nil, apperr.Dependency("batch name lookup", err)
	}
	defer cur.Close(ctx)

	out := map[string]string{}
	for cur.Next(ctx) {
		var doc struct {
			ID     string `bson:"_id"`
			UserID string `bson:"user_id"`
			Name   string `bson:"name"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, apperr.Dependency("decode name lookup", err)
		}
		key := doc.ID
		if field == "user_id" {
			key = doc.UserID
		}
		out[key] = doc.Name
	}
	if err := cur.Err(); err != nil {
		return nil, apperr.Dependency("batch name lookup", err)
	}
	return out, nil
}
