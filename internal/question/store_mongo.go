package question

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps the question bank in a MongoDB collection, using the
// camelCase document shape the admin importer produces.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{coll: client.Database(database).Collection("questions")}
}

func (s *MongoStore) Put(ctx context.Context, q Question) (Question, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt == 0 {
		q.CreatedAt = time.Now().Unix()
	}
	if _, err := s.coll.InsertOne(ctx, q); err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *MongoStore) PutBatch(ctx context.Context, qs []Question) ([]Question, error) {
	if len(qs) == 0 {
		return nil, nil
	}
	docs := make([]any, len(qs))
	out := make([]Question, len(qs))
	for i, q := range qs {
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if q.CreatedAt == 0 {
			q.CreatedAt = time.Now().Unix()
		}
		docs[i] = q
		out[i] = q
	}
	if _, err := s.coll.InsertMany(ctx, docs); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (Question, error) {
	var q Question
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&q)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Question{}, ErrNotFound
	}
	return q, err
}

func (s *MongoStore) Update(ctx context.Context, q Question) (Question, error) {
	// createdAt is never part of the update, so the stored value survives.
	set := bson.M{
		"exam":                q.Exam,
		"year":                q.Year,
		"subject":             q.Subject,
		"topic":               q.Topic,
		"paperQuestionNumber": q.PaperQuestionNumber,
		"questionText":        q.QuestionText,
		"optionA":             q.OptionA,
		"optionB":             q.OptionB,
		"optionC":             q.OptionC,
		"optionD":             q.OptionD,
		"correctOption":       q.CorrectOption,
		"difficulty":          q.Difficulty,
		"explanationText":     q.ExplanationText,
		"explanationPDF":      q.ExplanationPDF,
		"image":               q.Image,
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": q.ID}, bson.M{"$set": set})
	if err != nil {
		return Question{}, err
	}
	if res.MatchedCount == 0 {
		return Question{}, ErrNotFound
	}
	return s.Get(ctx, q.ID)
}

func (s *MongoStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}

func (s *MongoStore) List(ctx context.Context, f Filter) ([]Question, error) {
	filter := bson.M{}
	if f.Exam != "" {
		filter["exam"] = f.Exam
	}
	if f.Year != 0 {
		filter["year"] = f.Year
	}
	if f.Subject != "" {
		filter["subject"] = f.Subject
	}
	if f.Topic != "" {
		filter["topic"] = f.Topic
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "year", Value: -1},
		{Key: "paperQuestionNumber", Value: 1},
	})
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Question
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) Exams(ctx context.Context) ([]YearExams, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"year": bson.M{"$nin": bson.A{0, nil}},
			"exam": bson.M{"$nin": bson.A{"", nil}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"year": "$year", "exam": "$exam"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "_id.year", Value: -1},
			{Key: "_id.exam", Value: 1},
		}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []YearExams
	for cur.Next(ctx) {
		var doc struct {
			Key struct {
				Year int    `bson:"year"`
				Exam string `bson:"exam"`
			} `bson:"_id"`
			Count int `bson:"count"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		if len(out) == 0 || out[len(out)-1].Year != doc.Key.Year {
			out = append(out, YearExams{Year: doc.Key.Year})
		}
		last := &out[len(out)-1]
		last.Exams = append(last.Exams, ExamCount{Name: doc.Key.Exam, Count: doc.Count})
	}
	return out, cur.Err()
}

func (s *MongoStore) Topics(ctx context.Context) ([]SubjectTopics, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"subject": bson.M{"$nin": bson.A{"", nil}}}}},
		{{Key: "$group", Value: bson.M{"_id": "$subject", "topics": bson.M{"$addToSet": "$topic"}}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []SubjectTopics
	for cur.Next(ctx) {
		var doc struct {
			Subject string   `bson:"_id"`
			Topics  []string `bson:"topics"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		topics := make([]string, 0, len(doc.Topics))
		for _, t := range doc.Topics {
			if t != "" {
				topics = append(topics, t)
			}
		}
		sort.Strings(topics)
		out = append(out, SubjectTopics{Subject: doc.Subject, Topics: topics})
	}
	return out, cur.Err()
}
