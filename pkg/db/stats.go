package db

import (
	"context"
	"fmt"
	"time"

	"github.com/JanSetu/JanSetu/pkg/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChannelCount is one row of the top channels report.
type ChannelCount struct {
	ChannelName string `bson:"_id" json:"channel_name"`
	Count       int64  `bson:"count" json:"count"`
}

// CollectionStats summarizes the raw recordings collection.
type CollectionStats struct {
	Total             int64          `json:"total"`
	WithTranscript    int64          `json:"with_transcript"`
	TranscriptPercent float64        `json:"transcript_percent"`
	TopChannels       []ChannelCount `json:"top_channels"`
	Earliest          time.Time      `json:"earliest,omitempty"`
	Latest            time.Time      `json:"latest,omitempty"`
}

// ProcessingStats compares the raw and processed collections.
type ProcessingStats struct {
	RawTotal          int64   `json:"raw_total"`
	RawWithTranscript int64   `json:"raw_with_transcript"`
	Processed         int64   `json:"processed"`
	Remaining         int64   `json:"remaining"`
	ProcessedPercent  float64 `json:"processed_percent"`
}

const topChannelsLimit = 10

// CollectionStats counts recordings, transcript coverage, the busiest
// channels and the published date range.
func (c *Client) CollectionStats(ctx context.Context) (CollectionStats, error) {
	var stats CollectionStats
	if c.raw == nil {
		return stats, fmt.Errorf("collection not initialized")
	}

	total, err := c.raw.CountDocuments(ctx, bson.M{})
	if err != nil {
		return stats, fmt.Errorf("count recordings: %w", err)
	}
	withTranscript, err := c.raw.CountDocuments(ctx, bson.M{"hasTranscript": true})
	if err != nil {
		return stats, fmt.Errorf("count transcripts: %w", err)
	}
	stats.Total = total
	stats.WithTranscript = withTranscript
	stats.TranscriptPercent = percent(withTranscript, total)

	top, err := c.topChannels(ctx)
	if err != nil {
		return stats, err
	}
	stats.TopChannels = top

	stats.Earliest, err = c.publishedBound(ctx, 1)
	if err != nil {
		return stats, err
	}
	stats.Latest, err = c.publishedBound(ctx, -1)
	if err != nil {
		return stats, err
	}
	return stats, nil
}

func (c *Client) topChannels(ctx context.Context) ([]ChannelCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$Channel_Name", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: topChannelsLimit}},
	}
	cursor, err := c.raw.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate channels: %w", err)
	}
	defer cursor.Close(ctx)

	var out []ChannelCount
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode channels: %w", err)
	}
	return out, nil
}

// publishedBound returns the earliest (order 1) or latest (order -1)
// published date, or the zero time for an empty collection.
func (c *Client) publishedBound(ctx context.Context, order int) (time.Time, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "published_datetime", Value: order}}).
		SetProjection(bson.M{"published_datetime": 1})

	var doc struct {
		PublishedAt time.Time `bson:"published_datetime"`
	}
	err := c.raw.FindOne(ctx, bson.M{"published_datetime": bson.M{"$exists": true}}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("find published bound: %w", err)
	}
	return doc.PublishedAt.UTC(), nil
}

// ProcessingStats reports how far the correction run has progressed.
func (c *Client) ProcessingStats(ctx context.Context) (ProcessingStats, error) {
	var stats ProcessingStats
	if c.raw == nil || c.processed == nil {
		return stats, fmt.Errorf("collection not initialized")
	}

	rawTotal, err := c.raw.CountDocuments(ctx, bson.M{})
	if err != nil {
		return stats, fmt.Errorf("count raw: %w", err)
	}
	withTranscript, err := c.raw.CountDocuments(ctx, bson.M{"hasTranscript": true})
	if err != nil {
		return stats, fmt.Errorf("count raw transcripts: %w", err)
	}
	processed, err := c.processed.CountDocuments(ctx, bson.M{"transcript.format": domain.FormatSentences})
	if err != nil {
		return stats, fmt.Errorf("count processed: %w", err)
	}

	stats.RawTotal = rawTotal
	stats.RawWithTranscript = withTranscript
	stats.Processed = processed
	stats.Remaining = max(withTranscript-processed, 0)
	stats.ProcessedPercent = percent(processed, withTranscript)
	return stats, nil
}

func percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
