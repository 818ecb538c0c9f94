package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// recordingIndexes are the secondary indexes that back the lookup queries:
// unprocessed records, channel by date, views and full-text search.
func recordingIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "VideoURL", Value: 1}},
			Options: options.Index().SetName("video_url_unique").SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "Channel_Id", Value: 1}},
			Options: options.Index().SetName("channel_id_idx"),
		},
		{
			Keys:    bson.D{{Key: "published_datetime", Value: -1}},
			Options: options.Index().SetName("published_date_idx"),
		},
		{
			Keys:    bson.D{{Key: "views_numeric", Value: -1}},
			Options: options.Index().SetName("views_numeric_idx"),
		},
		{
			Keys: bson.D{
				{Key: "Video_title", Value: "text"},
				{Key: "Description", Value: "text"},
				{Key: "Channel_Name", Value: "text"},
			},
			Options: options.Index().SetName("text_search_idx"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index().SetName("category_idx"),
		},
		{
			Keys:    bson.D{{Key: "hasTranscript", Value: 1}},
			Options: options.Index().SetName("transcript_idx"),
		},
		{
			Keys:    bson.D{{Key: "Channel_Id", Value: 1}, {Key: "published_datetime", Value: -1}},
			Options: options.Index().SetName("channel_date_idx"),
		},
	}
}

// EnsureIndexes creates the recording indexes on the raw collection and the
// identity index on the processed collection. Indexes are created one at a
// time so a conflicting one does not block the rest; conflicts with an
// existing equivalent index are ignored.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	if c.raw == nil || c.processed == nil {
		return fmt.Errorf("collection not initialized")
	}

	var errs []error
	for _, model := range recordingIndexes() {
		if _, err := c.raw.Indexes().CreateOne(ctx, model); err != nil && !isIndexConflict(err) {
			errs = append(errs, fmt.Errorf("create index on %s: %w", c.raw.Name(), err))
		}
	}

	processedKey := recordingIndexes()[0]
	if _, err := c.processed.Indexes().CreateOne(ctx, processedKey); err != nil && !isIndexConflict(err) {
		errs = append(errs, fmt.Errorf("create index on %s: %w", c.processed.Name(), err))
	}

	return errors.Join(errs...)
}
