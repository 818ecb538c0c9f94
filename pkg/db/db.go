package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JanSetu/JanSetu/pkg/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UpsertResult tells whether an upsert created or merged into a document.
type UpsertResult string

const (
	Inserted UpsertResult = "inserted"
	Updated  UpsertResult = "updated"
)

// Client wraps the MongoDB client and the two recording collections: raw
// holds normalized uploads, processed holds corrected transcripts.
type Client struct {
	mongoClient *mongo.Client
	database    *mongo.Database
	raw         *mongo.Collection
	processed   *mongo.Collection
}

// NewClient creates a new database client
func NewClient(connectionString, databaseName, rawCollection, processedCollection string) *Client {
	clientOptions := options.Client().ApplyURI(connectionString)
	mongoClient, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		// Return client with nil - error will be caught during Connect()
		return &Client{}
	}
	return NewClientFromMongo(mongoClient, databaseName, rawCollection, processedCollection)
}

// NewClientFromMongo wraps an already connected mongo client.
func NewClientFromMongo(mongoClient *mongo.Client, databaseName, rawCollection, processedCollection string) *Client {
	database := mongoClient.Database(databaseName)
	return &Client{
		mongoClient: mongoClient,
		database:    database,
		raw:         database.Collection(rawCollection),
		processed:   database.Collection(processedCollection),
	}
}

// Connect establishes connection to MongoDB
func (c *Client) Connect(ctx context.Context) error {
	if c.mongoClient == nil {
		return fmt.Errorf("mongo client not initialized")
	}
	return c.mongoClient.Ping(ctx, nil)
}

// Close closes the MongoDB connection
func (c *Client) Close(ctx context.Context) error {
	if c.mongoClient == nil {
		return nil
	}
	return c.mongoClient.Disconnect(ctx)
}

// UpsertRecording merges doc into the raw collection keyed by canonical URL.
func (c *Client) UpsertRecording(ctx context.Context, doc *domain.RecordingDocument) (UpsertResult, error) {
	return upsert(ctx, c.raw, doc)
}

// SaveProcessedTranscript merges a corrected recording into the processed
// collection keyed by canonical URL.
func (c *Client) SaveProcessedTranscript(ctx context.Context, doc *domain.RecordingDocument) (UpsertResult, error) {
	return upsert(ctx, c.processed, doc)
}

func upsert(ctx context.Context, coll *mongo.Collection, doc *domain.RecordingDocument) (UpsertResult, error) {
	if coll == nil {
		return "", fmt.Errorf("collection not initialized")
	}
	if doc.CanonicalURL == "" {
		return "", fmt.Errorf("recording %q has no canonical URL", doc.ExternalID)
	}

	// Canonical URL is the identity key; $set leaves unrelated fields alone.
	filter := bson.M{"VideoURL": doc.CanonicalURL}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)

	res, err := coll.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return "", fmt.Errorf("upsert %s: %w", doc.CanonicalURL, err)
	}
	if res.UpsertedCount > 0 {
		return Inserted, nil
	}
	return Updated, nil
}

// RecordingExists reports whether the raw collection holds url.
func (c *Client) RecordingExists(ctx context.Context, url string) (bool, error) {
	if c.raw == nil {
		return false, fmt.Errorf("collection not initialized")
	}
	n, err := c.raw.CountDocuments(ctx, bson.M{"VideoURL": url}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", url, err)
	}
	return n > 0, nil
}

// IsProcessed reports whether a corrected transcript has been saved for url.
func (c *Client) IsProcessed(ctx context.Context, url string) (bool, error) {
	if c.processed == nil {
		return false, fmt.Errorf("collection not initialized")
	}
	filter := bson.M{"VideoURL": url, "transcript.format": domain.FormatSentences}
	n, err := c.processed.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check processed %s: %w", url, err)
	}
	return n > 0, nil
}

// FindRawWithTranscripts returns raw records flagged as having a transcript.
// limit <= 0 means no limit.
func (c *Client) FindRawWithTranscripts(ctx context.Context, limit int64) ([]domain.RawRecord, error) {
	if c.raw == nil {
		return nil, fmt.Errorf("collection not initialized")
	}
	opts := options.Find().SetSort(bson.D{{Key: "published_datetime", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := c.raw.Find(ctx, bson.M{"hasTranscript": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query raw recordings: %w", err)
	}
	return decodeRawRecords(ctx, cursor)
}

// FindUnprocessed returns raw records with a transcript that have no
// corrected counterpart in the processed collection.
func (c *Client) FindUnprocessed(ctx context.Context, limit int64) ([]domain.RawRecord, error) {
	if c.raw == nil || c.processed == nil {
		return nil, fmt.Errorf("collection not initialized")
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"hasTranscript": true}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         c.processed.Name(),
			"localField":   "VideoURL",
			"foreignField": "VideoURL",
			"as":           "_processed",
		}}},
		{{Key: "$match", Value: bson.M{"_processed.transcript.format": bson.M{"$ne": domain.FormatSentences}}}},
		{{Key: "$project", Value: bson.M{"_processed": 0}}},
		{{Key: "$sort", Value: bson.M{"published_datetime": 1}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}

	cursor, err := c.raw.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to query unprocessed recordings: %w", err)
	}
	return decodeRawRecords(ctx, cursor)
}

// FindByChannel returns recordings of channelID published in [from, to],
// newest first. A zero bound leaves that side open.
func (c *Client) FindByChannel(ctx context.Context, channelID string, from, to time.Time) ([]domain.RecordingDocument, error) {
	if c.raw == nil {
		return nil, fmt.Errorf("collection not initialized")
	}
	filter := bson.M{"Channel_Id": channelID}
	published := bson.M{}
	if !from.IsZero() {
		published["$gte"] = from
	}
	if !to.IsZero() {
		published["$lte"] = to
	}
	if len(published) > 0 {
		filter["published_datetime"] = published
	}

	opts := options.Find().SetSort(bson.D{{Key: "published_datetime", Value: -1}})
	cursor, err := c.raw.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query channel %s: %w", channelID, err)
	}
	return decodeRecordings(ctx, cursor)
}

// AllRecordings fetches every normalized recording from the raw collection.
func (c *Client) AllRecordings(ctx context.Context) ([]domain.RecordingDocument, error) {
	if c.raw == nil {
		return nil, fmt.Errorf("collection not initialized")
	}
	cursor, err := c.raw.Find(ctx, bson.M{"VideoURL": bson.M{"$exists": true}})
	if err != nil {
		return nil, fmt.Errorf("failed to query recordings: %w", err)
	}
	return decodeRecordings(ctx, cursor)
}

func decodeRecordings(ctx context.Context, cursor *mongo.Cursor) ([]domain.RecordingDocument, error) {
	defer cursor.Close(ctx)

	var out []domain.RecordingDocument
	for cursor.Next(ctx) {
		var doc domain.RecordingDocument
		if err := cursor.Decode(&doc); err != nil {
			continue // Skip invalid documents
		}
		out = append(out, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return out, nil
}

func decodeRawRecords(ctx context.Context, cursor *mongo.Cursor) ([]domain.RawRecord, error) {
	defer cursor.Close(ctx)

	var out []domain.RawRecord
	for cursor.Next(ctx) {
		rec, err := ToRawRecord(cursor.Current)
		if err != nil {
			continue // Skip invalid documents
		}
		out = append(out, rec)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return out, nil
}

// ToRawRecord converts a stored document into the plain JSON value shape the
// rest of the pipeline works with (maps, slices, float64 numbers, strings).
func ToRawRecord(doc bson.Raw) (domain.RawRecord, error) {
	data, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to convert document: %w", err)
	}
	var rec domain.RawRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to convert document: %w", err)
	}
	return rec, nil
}

// RecordingFromRaw reverses ToRawRecord: it decodes a record in stored
// shape back into a RecordingDocument, including extended JSON dates.
func RecordingFromRaw(rec domain.RawRecord) (*domain.RecordingDocument, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to convert record: %w", err)
	}
	var doc domain.RecordingDocument
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode stored record: %w", err)
	}
	return &doc, nil
}

// IsStoredShape reports whether rec was written by the normalizer, as
// opposed to a source record that still needs normalizing.
func IsStoredShape(rec domain.RawRecord) bool {
	prov, ok := rec["provenance"].(map[string]any)
	if !ok {
		return false
	}
	_, ok = prov["external_id"]
	return ok
}

// isIndexConflict reports whether err means an equivalent index is already
// in place.
func isIndexConflict(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		// IndexOptionsConflict, IndexKeySpecsConflict
		return cmdErr.Code == 85 || cmdErr.Code == 86
	}
	return false
}
